package domain

import "fmt"

// ConfigurationError marks a command or poll attempted before the
// device is usable (no address, no PIN).
type ConfigurationError struct {
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("device not configured: missing %s", e.Missing)
}

// ValidationError marks a command carrying an invalid value.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Field, e.Reason)
}

// GuardViolation marks a command rejected by device state, e.g. a
// target temperature write while the weekly program drives the
// setpoint. No command is sent to the stove.
type GuardViolation struct {
	Guard  string
	Reason string
}

func (e *GuardViolation) Error() string {
	return fmt.Sprintf("%s: %s", e.Guard, e.Reason)
}
