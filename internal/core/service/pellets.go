package service

import (
	"math"

	"go.uber.org/zap"
)

// Auto-reset refill sizes in kg. When remaining hits exactly zero the
// estimator snaps back to the configured refill size, simulating the
// hopper being topped up with a standard bag load.
const (
	AutoResetOff      = 0.0
	AutoResetRefill15 = 15.0
	AutoResetRefill30 = 30.0
)

// PelletEstimator derives a remaining-pellets estimate from the
// stove's cumulative lifetime consumption counter. The stove never
// reports remaining inventory itself.
//
// remainingKg is clamped to [0, maxKg] at all times.
type PelletEstimator struct {
	remainingKg       float64
	lastConsumptionKg float64
	baselined         bool
	maxKg             float64
	autoResetKg       float64
	holdAutoReset     bool

	logger *zap.Logger
}

func NewPelletEstimator(remainingKg, maxKg, autoResetKg float64, logger *zap.Logger) *PelletEstimator {
	est := &PelletEstimator{
		maxKg:       maxKg,
		autoResetKg: autoResetKg,
		logger:      logger,
	}
	est.remainingKg = est.clamp(remainingKg)
	return est
}

// Restore reinstates the persisted consumption baseline after a
// restart so the first poll does not re-baseline.
func (est *PelletEstimator) Restore(lastConsumptionKg float64) {
	est.lastConsumptionKg = lastConsumptionKg
	est.baselined = true
}

// OnConsumptionReport feeds a cumulative consumption reading into the
// estimate. Returns true when the remaining value actually changed.
//
// The first report only baselines the counter. Decreasing or equal
// reports (counter reset, rollover) are floored to a zero delta and
// never bump the inventory back up.
func (est *PelletEstimator) OnConsumptionReport(cumulativeKg float64) bool {
	if !est.baselined {
		est.baselined = true
		est.lastConsumptionKg = cumulativeKg
		return false
	}

	delta := math.Max(0, cumulativeKg-est.lastConsumptionKg)
	est.lastConsumptionKg = cumulativeKg
	if delta == 0 {
		return false
	}

	previous := est.remainingKg
	est.remainingKg = est.clamp(est.remainingKg - delta)

	if est.remainingKg == 0 && est.autoResetKg > 0 && !est.holdAutoReset {
		est.logger.Info("pellets depleted, auto-reset refill",
			zap.Float64("refill_kg", est.autoResetKg))
		est.remainingKg = est.clamp(est.autoResetKg)
	}

	return est.remainingKg != previous
}

// OnManualOverride sets the remaining value directly (flow action or
// settings edit) and releases the auto-reset hold.
func (est *PelletEstimator) OnManualOverride(kg float64) bool {
	est.holdAutoReset = false
	previous := est.remainingKg
	est.remainingKg = est.clamp(kg)
	return est.remainingKg != previous
}

// SetMaxKg changes the hopper size and re-clamps the current estimate
// immediately.
func (est *PelletEstimator) SetMaxKg(kg float64) bool {
	est.maxKg = kg
	previous := est.remainingKg
	est.remainingKg = est.clamp(est.remainingKg)
	return est.remainingKg != previous
}

func (est *PelletEstimator) SetAutoReset(kg float64) {
	est.autoResetKg = kg
}

// ForceEmpty zeroes the estimate and holds off auto-reset. Used by the
// fault tracker for hopper-depletion faults: a refill snap would mask
// the unresolved fault.
func (est *PelletEstimator) ForceEmpty() bool {
	est.holdAutoReset = true
	previous := est.remainingKg
	est.remainingKg = 0
	return previous != 0
}

// ReleaseHold re-enables auto-reset once the hopper fault clears.
func (est *PelletEstimator) ReleaseHold() {
	est.holdAutoReset = false
}

func (est *PelletEstimator) RemainingKg() float64 {
	return est.remainingKg
}

func (est *PelletEstimator) LastConsumptionKg() float64 {
	return est.lastConsumptionKg
}

func (est *PelletEstimator) MaxKg() float64 {
	return est.maxKg
}

func (est *PelletEstimator) HoldAutoReset() bool {
	return est.holdAutoReset
}

func (est *PelletEstimator) clamp(kg float64) float64 {
	return math.Min(math.Max(kg, 0), est.maxKg)
}

// AutoResetFromSetting maps the operator setting to a refill size.
func AutoResetFromSetting(setting string) float64 {
	switch setting {
	case "15":
		return AutoResetRefill15
	case "30":
		return AutoResetRefill30
	default:
		return AutoResetOff
	}
}
