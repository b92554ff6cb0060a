package domain

import "fmt"

type CapabilityUpdateEventMixIn struct {
	Id string
}

type CapabilityUpdateEvent interface {
	CapabilityUpdateEvent() string
	CapabilityId() string
}

func (e CapabilityUpdateEventMixIn) CapabilityUpdateEvent() string {
	return fmt.Sprintf("%T", e)
}

func (e CapabilityUpdateEventMixIn) CapabilityId() string {
	return e.Id
}

type FloatCapabilityUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Value    float64
	Decimals uint
}

type BinaryCapabilityUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Value bool
}

type SwitchCapabilityUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Value bool
}

type TextCapabilityUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Value string
}

type InputNumberCapabilityUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Value    float64
	Decimals uint
}

type BridgeStateUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Value bool
}

// DeviceAvailabilityUpdateEvent marks the stove online/offline on the
// platform, driven by poll success and failure.
type DeviceAvailabilityUpdateEvent struct {
	CapabilityUpdateEventMixIn
	Available bool
}

// Flow trigger events. Fired at most once per real state change and
// published as JSON payloads on the event topics.

const (
	TRIGGER_ERROR_OCCURRED         = "error_occurred"
	TRIGGER_WEEKLY_PROGRAM_CHANGED = "weekly_program_changed"
	TRIGGER_ECO_MODE_CHANGED       = "eco_mode_changed"
	TRIGGER_PELLETS_CHANGED        = "pellets_changed"
	TRIGGER_CLEANING_DUE_CHANGED   = "cleaning_due_changed"
	TRIGGER_ASH_LIMIT_CHANGED      = "ash_limit_changed"
)

type TriggerEvent struct {
	Name    string
	Payload map[string]any
}

// NotificationEvent is a human-readable message for the platform's
// notification feed (e.g. an active fault description).
type NotificationEvent struct {
	Message string
}

func ErrorOccurredTrigger(code string, message string) TriggerEvent {
	return TriggerEvent{
		Name: TRIGGER_ERROR_OCCURRED,
		Payload: map[string]any{
			"error_code":    code,
			"error_message": message,
		},
	}
}

func WeeklyProgramChangedTrigger(enabled bool) TriggerEvent {
	return TriggerEvent{
		Name: TRIGGER_WEEKLY_PROGRAM_CHANGED,
		Payload: map[string]any{
			"enabled": enabled,
		},
	}
}

func EcoModeChangedTrigger(enabled bool) TriggerEvent {
	return TriggerEvent{
		Name: TRIGGER_ECO_MODE_CHANGED,
		Payload: map[string]any{
			"mode": enabled,
		},
	}
}

func PelletsChangedTrigger(kg float64) TriggerEvent {
	return TriggerEvent{
		Name: TRIGGER_PELLETS_CHANGED,
		Payload: map[string]any{
			"pellets_kg": kg,
		},
	}
}

func CleaningDueChangedTrigger(hours float64) TriggerEvent {
	return TriggerEvent{
		Name: TRIGGER_CLEANING_DUE_CHANGED,
		Payload: map[string]any{
			"cleaning_hours": hours,
		},
	}
}

func AshLimitChangedTrigger(percent float64) TriggerEvent {
	return TriggerEvent{
		Name: TRIGGER_ASH_LIMIT_CHANGED,
		Payload: map[string]any{
			"ash_limit_percent": percent,
		},
	}
}
