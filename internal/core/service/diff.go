package service

import "math"

const numericEpsilon = 1e-6

// CapabilityDiff tracks the last value published per capability so a
// steady status document produces zero writes. Type-aware: numbers
// compare within an epsilon, everything else by equality.
type CapabilityDiff struct {
	last map[string]any
}

func NewCapabilityDiff() *CapabilityDiff {
	return &CapabilityDiff{
		last: make(map[string]any),
	}
}

// Changed records the value and reports whether it differs from the
// last published one.
func (d *CapabilityDiff) Changed(id string, value any) bool {
	previous, seen := d.last[id]
	d.last[id] = value
	if !seen {
		return true
	}
	return !ValuesEqual(previous, value)
}

// Peek returns the last published value without recording anything.
func (d *CapabilityDiff) Peek(id string) (any, bool) {
	v, ok := d.last[id]
	return v, ok
}

// ValuesEqual compares two capability values with numeric tolerance.
func ValuesEqual(a, b any) bool {
	fa, aIsNum := asFloat(a)
	fb, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		return math.Abs(fa-fb) < numericEpsilon
	}
	return a == b
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	}
	return 0, false
}
