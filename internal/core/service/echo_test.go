package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoConfirmedWithinWindow(t *testing.T) {
	now := time.Now()
	echo := NewCommandEcho(map[string]any{"sp_temp": 21}, now, DefaultEchoWindow)

	outcome, done := echo.Check(map[string]any{"sp_temp": 21.0, "is_temp": 19.0}, now.Add(3*time.Second))
	require.True(t, done)
	assert.True(t, outcome.Confirmed)
	assert.Empty(t, outcome.Mismatched)
}

func TestEchoPendingWhileMismatchedInsideWindow(t *testing.T) {
	now := time.Now()
	echo := NewCommandEcho(map[string]any{"sp_temp": 21}, now, DefaultEchoWindow)

	// stove still reports the old setpoint, keep waiting
	_, done := echo.Check(map[string]any{"sp_temp": 20.0}, now.Add(3*time.Second))
	assert.False(t, done)
}

func TestEchoDiscardedAfterWindowWithMismatch(t *testing.T) {
	now := time.Now()
	echo := NewCommandEcho(map[string]any{"sp_temp": 21}, now, DefaultEchoWindow)

	outcome, done := echo.Check(map[string]any{"sp_temp": 20.0}, now.Add(31*time.Second))
	require.True(t, done)
	assert.True(t, outcome.Expired)
	assert.Equal(t, []string{"sp_temp"}, outcome.Mismatched)
}

func TestEchoBooleanAndMultiFieldMatching(t *testing.T) {
	now := time.Now()
	echo := NewCommandEcho(map[string]any{"prg": true, "eco_mode": false}, now, DefaultEchoWindow)

	_, done := echo.Check(map[string]any{"prg": true, "eco_mode": true}, now.Add(time.Second))
	assert.False(t, done, "partial match keeps the echo pending")

	outcome, done := echo.Check(map[string]any{"prg": true, "eco_mode": false}, now.Add(2*time.Second))
	require.True(t, done)
	assert.True(t, outcome.Confirmed)
}

func TestEchoMissingFieldCountsAsMismatch(t *testing.T) {
	now := time.Now()
	echo := NewCommandEcho(map[string]any{"wprg": true}, now, DefaultEchoWindow)

	outcome, done := echo.Check(map[string]any{"prg": true}, now.Add(40*time.Second))
	require.True(t, done)
	assert.True(t, outcome.Expired)
	assert.Equal(t, []string{"wprg"}, outcome.Mismatched)
}
