package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func flatWithError(code any) map[string]any {
	return map[string]any{
		"prg":      true,
		"error.nr": code,
	}
}

func TestFormatFaultCode(t *testing.T) {
	assert.Equal(t, "F002", FormatFaultCode(2))
	assert.Equal(t, "F021", FormatFaultCode(21))
	assert.Equal(t, "F999", FormatFaultCode(999))
	assert.Equal(t, "F1000", FormatFaultCode(1000))
	assert.Equal(t, "F1234", FormatFaultCode(1234))
}

func TestUnknownCauseFallback(t *testing.T) {
	msg := FaultMessage(777)
	assert.Equal(t, "F777: unknown cause", msg)
}

func TestKnownCausesJoined(t *testing.T) {
	msg := FaultMessage(4)
	assert.Equal(t, "F004: ignition failed / burn pot dirty", msg)
}

func TestEnterFaultExactlyOnce(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	effects := tracker.Reconcile(flatWithError(4.0))
	assert.True(t, effects.Entered)
	assert.Equal(t, "F004", effects.Code)

	// same code again: steady state, no repeated effects
	effects = tracker.Reconcile(flatWithError(4.0))
	assert.False(t, effects.Entered)
	assert.False(t, effects.MessageChanged)
	assert.False(t, effects.Cleared)
}

func TestFaultCodeChange(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	tracker.Reconcile(flatWithError(4.0))
	effects := tracker.Reconcile(flatWithError(5.0))
	assert.True(t, effects.Entered)
	assert.Equal(t, "F005", effects.Code)
}

func TestFaultClears(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	tracker.Reconcile(flatWithError(4.0))
	effects := tracker.Reconcile(flatWithError(0.0))
	assert.True(t, effects.Cleared)
	assert.False(t, tracker.Active())

	// clearing twice owes nothing
	effects = tracker.Reconcile(map[string]any{"prg": true})
	assert.False(t, effects.Cleared)
}

func TestMessageOnlyRefresh(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	tracker.Reconcile(flatWithError(4.0))

	// simulate a localization swap: same code, new text
	tracker.SetMessageRenderer(func(code int) string {
		return fmt.Sprintf("%s: Zündung fehlgeschlagen", FormatFaultCode(code))
	})
	effects := tracker.Reconcile(flatWithError(4.0))
	assert.False(t, effects.Entered)
	assert.True(t, effects.MessageChanged)
	assert.Equal(t, "F004: Zündung fehlgeschlagen", effects.Message)
}

func TestHopperFaultForcesPelletsEmpty(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	effects := tracker.Reconcile(flatWithError(21.0))
	assert.True(t, effects.Entered)
	assert.True(t, effects.ForcePelletsEmpty)

	effects = tracker.Reconcile(flatWithError(0.0))
	assert.True(t, effects.Cleared)
	assert.True(t, effects.ReleaseHold)
}

func TestHopperFaultReplacedByOtherFaultReleasesHold(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	effects := tracker.Reconcile(flatWithError(21.0))
	assert.True(t, effects.ForcePelletsEmpty)

	// replaced by an unrelated fault: the hopper condition is over and
	// the hold must not leak past it
	effects = tracker.Reconcile(flatWithError(5.0))
	assert.True(t, effects.Entered)
	assert.True(t, effects.ReleaseHold)
	assert.False(t, effects.ForcePelletsEmpty)

	effects = tracker.Reconcile(flatWithError(0.0))
	assert.True(t, effects.Cleared)
	assert.False(t, effects.ReleaseHold)
}

func TestAutoResetResumesAfterHopperFaultReplaced(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())
	est := NewPelletEstimator(5, 30, AutoResetRefill15, zap.NewNop())
	est.Restore(100)

	apply := func(effects FaultEffects) {
		if effects.ForcePelletsEmpty {
			est.ForceEmpty()
		}
		if effects.ReleaseHold {
			est.ReleaseHold()
		}
	}

	apply(tracker.Reconcile(flatWithError(21.0)))
	assert.Equal(t, 0.0, est.RemainingKg())
	assert.True(t, est.HoldAutoReset())

	apply(tracker.Reconcile(flatWithError(5.0)))
	assert.False(t, est.HoldAutoReset())

	apply(tracker.Reconcile(flatWithError(0.0)))

	// remaining hits exactly 0 with the hold gone: the refill snap
	// applies again
	est.OnConsumptionReport(103)
	assert.Equal(t, AutoResetRefill15, est.RemainingKg())
}

func TestFaultFieldPriority(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	effects := tracker.Reconcile(map[string]any{
		"err": 7.0,
	})
	assert.True(t, effects.Entered)
	assert.Equal(t, "F007", effects.Code)
}

func TestStringEncodedFaultCode(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	effects := tracker.Reconcile(flatWithError("E-012"))
	assert.True(t, effects.Entered)
	assert.Equal(t, "F012", effects.Code)
}

func TestNonNumericErrorFieldIgnored(t *testing.T) {
	tracker := NewFaultTracker(zap.NewNop())

	// the stove reports an empty error array when healthy, which
	// flattens to a string without digits
	effects := tracker.Reconcile(map[string]any{"error": "[]"})
	assert.False(t, effects.Entered)
	assert.False(t, tracker.Active())
}
