package events

import (
	. "github.com/berfenger/embernews2mqtt/internal/core/domain"
	"github.com/berfenger/embernews2mqtt/internal/core/service"
)

// capabilities surfaced as platform switches rather than sensors
var switchCapabilities = map[string]bool{
	CAP_ONOFF:          true,
	CAP_WEEKLY_PROGRAM: true,
	CAP_ECO_MODE:       true,
}

// capabilities surfaced as writable numbers rather than sensors
var inputNumberCapabilities = map[string]bool{
	CAP_TARGET_TEMPERATURE: true,
}

// StatusToCapabilityUpdateEvents converts a flattened status document
// into update events for every mapped capability whose value coerces
// cleanly. Values that fail coercion are skipped, never published.
func StatusToCapabilityUpdateEvents(flat map[string]any) []any {
	var events []any

	for _, cap := range MappedCapabilities() {
		raw, ok := flat[cap.StatusKey]
		if !ok {
			continue
		}
		value, ok := service.Coerce(cap, raw)
		if !ok {
			continue
		}
		events = append(events, capabilityUpdateEvent(cap, value))
	}

	return events
}

func capabilityUpdateEvent(cap Capability, value any) any {
	mixIn := CapabilityUpdateEventMixIn{Id: cap.Id}

	switch cap.Type {
	case CapabilityBool:
		if switchCapabilities[cap.Id] {
			return SwitchCapabilityUpdateEvent{
				CapabilityUpdateEventMixIn: mixIn,
				Value:                      value.(bool),
			}
		}
		return BinaryCapabilityUpdateEvent{
			CapabilityUpdateEventMixIn: mixIn,
			Value:                      value.(bool),
		}
	case CapabilityNumber:
		if inputNumberCapabilities[cap.Id] {
			return InputNumberCapabilityUpdateEvent{
				CapabilityUpdateEventMixIn: mixIn,
				Value:                      value.(float64),
				Decimals:                   cap.Decimals,
			}
		}
		return FloatCapabilityUpdateEvent{
			CapabilityUpdateEventMixIn: mixIn,
			Value:                      value.(float64),
			Decimals:                   cap.Decimals,
		}
	default:
		return TextCapabilityUpdateEvent{
			CapabilityUpdateEventMixIn: mixIn,
			Value:                      value.(string),
		}
	}
}

// PelletsUpdateEvents reports the estimated remaining pellet mass,
// both as the sensorized capability and as the writable override slot.
func PelletsUpdateEvents(kg float64) []any {
	return []any{
		InputNumberCapabilityUpdateEvent{
			CapabilityUpdateEventMixIn: CapabilityUpdateEventMixIn{
				Id: CAP_PELLETS,
			},
			Value:    kg,
			Decimals: 2,
		},
	}
}

// FaultUpdateEvents reports the fault binary sensor plus the rendered
// fault text. An inactive fault clears the text.
func FaultUpdateEvents(active bool, message string) []any {
	return []any{
		BinaryCapabilityUpdateEvent{
			CapabilityUpdateEventMixIn: CapabilityUpdateEventMixIn{
				Id: CAP_FAULT_ACTIVE,
			},
			Value: active,
		},
		TextCapabilityUpdateEvent{
			CapabilityUpdateEventMixIn: CapabilityUpdateEventMixIn{
				Id: CAP_FAULT_TEXT,
			},
			Value: message,
		},
	}
}

func DeviceAvailabilityEvent(available bool) any {
	return DeviceAvailabilityUpdateEvent{
		Available: available,
	}
}

func BridgeStateEvent(online bool) any {
	return BridgeStateUpdateEvent{
		CapabilityUpdateEventMixIn: CapabilityUpdateEventMixIn{
			Id: SENSOR_ID_BRIDGE_STATE,
		},
		Value: online,
	}
}
