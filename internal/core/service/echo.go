package service

import (
	"time"
)

// DefaultEchoWindow bounds how long a sent command is held for
// read-back confirmation against fresh polls.
const DefaultEchoWindow = 30 * time.Second

// CommandEcho is a pending command payload awaiting confirmation. The
// next polls' flattened status is compared field by field; after the
// window expires the echo is discarded whether or not it matched.
type CommandEcho struct {
	payload  map[string]any
	issuedAt time.Time
	window   time.Duration
}

// EchoOutcome reports a finished confirmation check. Mismatches are
// diagnostic only, never a command failure.
type EchoOutcome struct {
	Confirmed  bool
	Expired    bool
	Mismatched []string
}

func NewCommandEcho(payload map[string]any, issuedAt time.Time, window time.Duration) *CommandEcho {
	return &CommandEcho{
		payload:  payload,
		issuedAt: issuedAt,
		window:   window,
	}
}

// Check compares the pending payload against a flattened status.
// Returns (outcome, true) when the echo is finished (all fields
// confirmed, or the window expired) and the caller should discard it;
// (zero, false) while confirmation is still pending within the window.
func (e *CommandEcho) Check(flat map[string]any, now time.Time) (EchoOutcome, bool) {
	expired := now.Sub(e.issuedAt) > e.window

	var mismatched []string
	for field, sent := range e.payload {
		reported, ok := flat[field]
		if !ok || !ValuesEqual(normalizeEchoValue(sent), normalizeEchoValue(reported)) {
			mismatched = append(mismatched, field)
		}
	}

	if len(mismatched) == 0 {
		return EchoOutcome{Confirmed: true}, true
	}
	if expired {
		return EchoOutcome{Expired: true, Mismatched: mismatched}, true
	}
	return EchoOutcome{}, false
}

func normalizeEchoValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case float32:
		return float64(n)
	case bool:
		return n
	}
	return v
}
