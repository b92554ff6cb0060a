package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/berfenger/embernews2mqtt/internal/core/domain"
)

var truthyStrings = map[string]bool{"1": true, "true": true, "yes": true, "on": true}
var falsyStrings = map[string]bool{"0": true, "false": true, "no": true, "off": true}

// Coerce converts a raw flattened status value into the capability's
// declared type. A value that does not coerce cleanly is dropped
// (ok = false): no partial or garbage write ever reaches the platform.
func Coerce(cap domain.Capability, raw any) (any, bool) {
	switch cap.Type {
	case domain.CapabilityBool:
		return coerceBool(raw)
	case domain.CapabilityNumber:
		return coerceNumber(raw)
	case domain.CapabilityString:
		return coerceString(raw)
	}
	return nil, false
}

func coerceBool(raw any) (any, bool) {
	switch v := raw.(type) {
	case bool:
		return v, true
	case float64:
		return v != 0, true
	case int:
		return v != 0, true
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		if truthyStrings[lower] {
			return true, true
		}
		if falsyStrings[lower] {
			return false, true
		}
	}
	return nil, false
}

func coerceNumber(raw any) (any, bool) {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, false
		}
		return v, true
	case int:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
			return nil, false
		}
		return parsed, true
	}
	return nil, false
}

func coerceString(raw any) (any, bool) {
	switch v := raw.(type) {
	case string:
		return v, true
	case bool, float64, int:
		return fmt.Sprintf("%v", v), true
	case nil:
		return nil, false
	default:
		encoded, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return string(encoded), true
	}
}
