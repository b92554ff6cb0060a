package service

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Status fields probed for the fault number, in priority order.
var faultFields = []string{"error.nr", "error", "err.nr", "err"}

var digitRun = regexp.MustCompile(`\d+`)

// Fault numbers that imply the pellet hopper ran dry. These force the
// pellet estimate to zero and hold off auto-reset while active.
var hopperEmptyFaults = map[int]bool{
	21: true,
	26: true,
}

var faultCauses = map[int][]string{
	2:  {"combustion blower failure"},
	3:  {"exhaust temperature sensor failure"},
	4:  {"ignition failed", "burn pot dirty"},
	5:  {"room temperature sensor failure"},
	6:  {"overtemperature protection tripped"},
	7:  {"door or hopper lid open"},
	12: {"flame lost during heating"},
	21: {"pellet hopper empty", "pellet feed starved"},
	26: {"pellet feed blocked", "hopper empty"},
	31: {"exhaust blower speed out of range"},
}

// FaultEffects describes the side effects owed for one reconciliation
// pass. Each flag is raised at most once per transition, never per
// poll while the state is steady.
type FaultEffects struct {
	// Entered is true when a new fault code became active: raise the
	// warning, create a notification, fire the error trigger.
	Entered bool
	// MessageChanged is true when the code is unchanged but its text
	// differs (e.g. localization change): refresh the warning only.
	MessageChanged bool
	// Cleared is true when the fault went away: drop the warning.
	Cleared bool
	// ForcePelletsEmpty / ReleaseHold drive the estimator's hold flag
	// for hopper-depletion faults.
	ForcePelletsEmpty bool
	ReleaseHold       bool

	Code    string
	Message string
}

// FaultTracker is the per-device error state machine: Clear, or
// Faulted with the last seen code and message.
type FaultTracker struct {
	lastCode    *int
	lastMessage string

	// renderMessage maps a fault number to display text. Swappable so
	// a localized cause table refreshes the warning without
	// re-notifying.
	renderMessage func(int) string

	logger *zap.Logger
}

func NewFaultTracker(logger *zap.Logger) *FaultTracker {
	return &FaultTracker{
		renderMessage: FaultMessage,
		logger:        logger,
	}
}

func (t *FaultTracker) SetMessageRenderer(render func(int) string) {
	t.renderMessage = render
}

// Reconcile inspects a flattened status document and returns the
// effects owed for this pass.
func (t *FaultTracker) Reconcile(flat map[string]any) FaultEffects {
	code, active := extractFaultNumber(flat)

	if !active || code == 0 {
		if t.lastCode == nil {
			return FaultEffects{}
		}
		hopper := hopperEmptyFaults[*t.lastCode]
		t.logger.Info("stove fault cleared", zap.Int("code", *t.lastCode))
		t.lastCode = nil
		t.lastMessage = ""
		return FaultEffects{
			Cleared:     true,
			ReleaseHold: hopper,
		}
	}

	message := t.renderMessage(code)
	effects := FaultEffects{
		Code:              FormatFaultCode(code),
		Message:           message,
		ForcePelletsEmpty: hopperEmptyFaults[code],
	}

	switch {
	case t.lastCode == nil || *t.lastCode != code:
		// a hopper fault replaced by an unrelated code means the
		// hopper condition itself is over
		if t.lastCode != nil && hopperEmptyFaults[*t.lastCode] && !hopperEmptyFaults[code] {
			effects.ReleaseHold = true
		}
		t.logger.Warn("stove fault active", zap.String("code", effects.Code), zap.String("message", message))
		effects.Entered = true
	case t.lastMessage != message:
		effects.MessageChanged = true
	default:
		// steady state, no effects owed
		effects.ForcePelletsEmpty = false
		return effects
	}

	c := code
	t.lastCode = &c
	t.lastMessage = message
	return effects
}

func (t *FaultTracker) Active() bool {
	return t.lastCode != nil
}

func (t *FaultTracker) LastCode() *int {
	return t.lastCode
}

// extractFaultNumber probes the known fault fields and takes the first
// candidate that parses as a number. String-encoded codes fall back to
// the first run of digits.
func extractFaultNumber(flat map[string]any) (int, bool) {
	for _, field := range faultFields {
		raw, ok := flat[field]
		if !ok || raw == nil {
			continue
		}
		if n, ok := parseFaultNumber(raw); ok {
			return n, true
		}
	}
	return 0, false
}

func parseFaultNumber(raw any) (int, bool) {
	switch v := raw.(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case string:
		trimmed := strings.TrimSpace(v)
		if n, err := strconv.Atoi(trimmed); err == nil {
			return n, true
		}
		if match := digitRun.FindString(trimmed); match != "" {
			n, err := strconv.Atoi(match)
			if err == nil {
				return n, true
			}
		}
	}
	return 0, false
}

// FormatFaultCode renders a fault number the way the stove display
// does: F + zero-padded to 3 digits, unpadded from 1000 up.
func FormatFaultCode(code int) string {
	if code >= 1000 {
		return fmt.Sprintf("F%d", code)
	}
	return fmt.Sprintf("F%03d", code)
}

// FaultMessage renders the human-readable causes for a code, joined
// with " / ", falling back to an unknown-cause message.
func FaultMessage(code int) string {
	formatted := FormatFaultCode(code)
	causes, ok := faultCauses[code]
	if !ok {
		return fmt.Sprintf("%s: unknown cause", formatted)
	}
	return fmt.Sprintf("%s: %s", formatted, strings.Join(causes, " / "))
}
