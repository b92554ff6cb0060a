package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/berfenger/embernews2mqtt/internal/core/domain"
)

func TestCoerceBool(t *testing.T) {
	cap := domain.Capability{Id: domain.CAP_WEEKLY_PROGRAM, Type: domain.CapabilityBool}

	for _, raw := range []any{true, 1, float64(2), "1", "true", "YES", " on "} {
		v, ok := Coerce(cap, raw)
		assert.True(t, ok, "raw %v", raw)
		assert.Equal(t, true, v, "raw %v", raw)
	}
	for _, raw := range []any{false, 0, float64(0), "0", "false", "No", "off"} {
		v, ok := Coerce(cap, raw)
		assert.True(t, ok, "raw %v", raw)
		assert.Equal(t, false, v, "raw %v", raw)
	}
	for _, raw := range []any{"maybe", "", nil, []any{true}} {
		_, ok := Coerce(cap, raw)
		assert.False(t, ok, "raw %v", raw)
	}
}

func TestCoerceNumber(t *testing.T) {
	cap := domain.Capability{Id: domain.CAP_TARGET_TEMPERATURE, Type: domain.CapabilityNumber}

	v, ok := Coerce(cap, float64(21.5))
	assert.True(t, ok)
	assert.Equal(t, 21.5, v)

	v, ok = Coerce(cap, 12)
	assert.True(t, ok)
	assert.Equal(t, 12.0, v)

	v, ok = Coerce(cap, " 19.5 ")
	assert.True(t, ok)
	assert.Equal(t, 19.5, v)

	for _, raw := range []any{"abc", "", nil, true, math.NaN(), math.Inf(1)} {
		_, ok := Coerce(cap, raw)
		assert.False(t, ok, "raw %v", raw)
	}
}

func TestCoerceString(t *testing.T) {
	cap := domain.Capability{Id: domain.CAP_OPERATING_MODE, Type: domain.CapabilityString}

	v, ok := Coerce(cap, "heating")
	assert.True(t, ok)
	assert.Equal(t, "heating", v)

	v, ok = Coerce(cap, float64(3))
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	v, ok = Coerce(cap, true)
	assert.True(t, ok)
	assert.Equal(t, "true", v)

	// composite values get a stable JSON rendering
	v, ok = Coerce(cap, []any{true, false})
	assert.True(t, ok)
	assert.Equal(t, "[true,false]", v)

	_, ok = Coerce(cap, nil)
	assert.False(t, ok)
}
