package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newEstimator(remaining, max, autoReset float64) *PelletEstimator {
	return NewPelletEstimator(remaining, max, autoReset, zap.NewNop())
}

func TestFirstReportOnlyBaselines(t *testing.T) {
	est := newEstimator(10, 30, AutoResetOff)

	changed := est.OnConsumptionReport(1500)
	assert.False(t, changed)
	assert.Equal(t, 10.0, est.RemainingKg())
	assert.Equal(t, 1500.0, est.LastConsumptionKg())
}

func TestConsumptionDeltaDepletesRemaining(t *testing.T) {
	est := newEstimator(10, 30, AutoResetOff)
	est.OnConsumptionReport(1500)

	changed := est.OnConsumptionReport(1502.5)
	assert.True(t, changed)
	assert.Equal(t, 7.5, est.RemainingKg())
}

func TestNegativeDeltaFlooredToZero(t *testing.T) {
	// counter reset/rollover must never bump inventory back up
	est := newEstimator(10, 30, AutoResetOff)
	est.OnConsumptionReport(1500)

	changed := est.OnConsumptionReport(20)
	assert.False(t, changed)
	assert.Equal(t, 10.0, est.RemainingKg())

	// next delta is computed from the new, lower baseline
	changed = est.OnConsumptionReport(21)
	assert.True(t, changed)
	assert.Equal(t, 9.0, est.RemainingKg())
}

func TestEqualReportIsNoChange(t *testing.T) {
	est := newEstimator(10, 30, AutoResetOff)
	est.OnConsumptionReport(1500)

	assert.False(t, est.OnConsumptionReport(1500))
	assert.Equal(t, 10.0, est.RemainingKg())
}

func TestRemainingNeverLeavesBounds(t *testing.T) {
	require := require.New(t)

	est := newEstimator(5, 30, AutoResetOff)
	est.OnConsumptionReport(100)

	reports := []float64{100.5, 103, 102, 140, 141.2, 90, 95, 300}
	for _, r := range reports {
		est.OnConsumptionReport(r)
		require.GreaterOrEqual(est.RemainingKg(), 0.0)
		require.LessOrEqual(est.RemainingKg(), 30.0)
	}
	assert.Equal(t, 0.0, est.RemainingKg())
}

func TestAutoResetSnapsOnExactZero(t *testing.T) {
	est := newEstimator(2, 30, AutoResetRefill15)
	est.OnConsumptionReport(100)

	changed := est.OnConsumptionReport(102)
	assert.True(t, changed)
	assert.Equal(t, 15.0, est.RemainingKg())
}

func TestAutoResetSuppressedByHold(t *testing.T) {
	est := newEstimator(2, 30, AutoResetRefill30)
	est.OnConsumptionReport(100)

	est.ForceEmpty()
	assert.Equal(t, 0.0, est.RemainingKg())
	assert.True(t, est.HoldAutoReset())

	est.OnConsumptionReport(105)
	assert.Equal(t, 0.0, est.RemainingKg(), "hold must suppress the refill snap")
}

func TestManualOverrideClampsAndClearsHold(t *testing.T) {
	est := newEstimator(2, 30, AutoResetRefill15)
	est.ForceEmpty()

	changed := est.OnManualOverride(45)
	assert.True(t, changed)
	assert.Equal(t, 30.0, est.RemainingKg())
	assert.False(t, est.HoldAutoReset())
}

func TestSetMaxReclampsImmediately(t *testing.T) {
	est := newEstimator(25, 30, AutoResetOff)

	changed := est.SetMaxKg(20)
	assert.True(t, changed)
	assert.Equal(t, 20.0, est.RemainingKg())

	// growing the hopper never changes the current estimate
	changed = est.SetMaxKg(40)
	assert.False(t, changed)
	assert.Equal(t, 20.0, est.RemainingKg())
}

func TestRestoreSkipsRebaseline(t *testing.T) {
	est := newEstimator(10, 30, AutoResetOff)
	est.Restore(1500)

	changed := est.OnConsumptionReport(1501)
	assert.True(t, changed)
	assert.Equal(t, 9.0, est.RemainingKg())
}

func TestSetAutoResetChangesRefillSize(t *testing.T) {
	est := newEstimator(2, 30, AutoResetOff)
	est.Restore(100)

	est.OnConsumptionReport(105)
	assert.Equal(t, 0.0, est.RemainingKg())

	// the operator enables refill-to-30 at runtime, next depletion to
	// zero snaps
	est.SetAutoReset(AutoResetRefill30)
	est.OnConsumptionReport(108)
	assert.Equal(t, AutoResetRefill30, est.RemainingKg())
}

func TestAutoResetFromSetting(t *testing.T) {
	assert.Equal(t, AutoResetRefill15, AutoResetFromSetting("15"))
	assert.Equal(t, AutoResetRefill30, AutoResetFromSetting("30"))
	assert.Equal(t, AutoResetOff, AutoResetFromSetting("off"))
	assert.Equal(t, AutoResetOff, AutoResetFromSetting(""))
}
