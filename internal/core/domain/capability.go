package domain

type CapabilityType int

const (
	CapabilityBool CapabilityType = iota
	CapabilityNumber
	CapabilityString
)

const (
	CAP_ONOFF               = "onoff"
	CAP_TARGET_TEMPERATURE  = "target_temperature"
	CAP_MEASURE_TEMPERATURE = "measure_temperature"
	CAP_OPERATING_MODE      = "operating_mode"
	CAP_WEEKLY_PROGRAM      = "weekly_program"
	CAP_ECO_MODE            = "eco_mode"
	CAP_ECO_EDITABLE        = "eco_editable"
	CAP_CLEANING_HOURS      = "cleaning_hours"
	CAP_MAINTENANCE_HOURS   = "maintenance_hours"
	CAP_CONSUMPTION_TOTAL   = "consumption_total"
	CAP_IGNITION_COUNT      = "ignition_count"
	CAP_BURN_HOURS          = "burn_hours"
	CAP_ZONE_STATES         = "zone_states"
	CAP_SW_VERSION          = "sw_version"
	CAP_PELLETS             = "pellets_kg"
	CAP_FAULT_ACTIVE        = "fault_active"
	CAP_FAULT_TEXT          = "fault_text"
)

// Capability is a typed, named device property published to the
// platform. StatusKey is the flattened status field it is sourced
// from; derived capabilities (pellets, fault) have no StatusKey and
// are produced by the reconciliation pass itself.
type Capability struct {
	Id        string
	Type      CapabilityType
	StatusKey string
	Decimals  uint
}

// MappedCapabilities lists every capability sourced directly from the
// flattened status document, in publish order.
func MappedCapabilities() []Capability {
	return []Capability{
		{Id: CAP_ONOFF, Type: CapabilityBool, StatusKey: "prg"},
		{Id: CAP_TARGET_TEMPERATURE, Type: CapabilityNumber, StatusKey: "sp_temp", Decimals: 1},
		{Id: CAP_MEASURE_TEMPERATURE, Type: CapabilityNumber, StatusKey: "is_temp", Decimals: 1},
		{Id: CAP_OPERATING_MODE, Type: CapabilityString, StatusKey: "mode"},
		{Id: CAP_WEEKLY_PROGRAM, Type: CapabilityBool, StatusKey: "wprg"},
		{Id: CAP_ECO_MODE, Type: CapabilityBool, StatusKey: "eco_mode"},
		{Id: CAP_ECO_EDITABLE, Type: CapabilityBool, StatusKey: "eco_editable"},
		{Id: CAP_CLEANING_HOURS, Type: CapabilityNumber, StatusKey: "cleaning_in"},
		{Id: CAP_MAINTENANCE_HOURS, Type: CapabilityNumber, StatusKey: "maintenance_in"},
		{Id: CAP_CONSUMPTION_TOTAL, Type: CapabilityNumber, StatusKey: "consumption", Decimals: 1},
		{Id: CAP_IGNITION_COUNT, Type: CapabilityNumber, StatusKey: "ignitions"},
		{Id: CAP_BURN_HOURS, Type: CapabilityNumber, StatusKey: "on_time"},
		{Id: CAP_ZONE_STATES, Type: CapabilityString, StatusKey: "zone"},
		{Id: CAP_SW_VERSION, Type: CapabilityString, StatusKey: "meta.sw_version"},
	}
}

// CapabilityMigrations maps legacy capability ids to their current
// names. Applied once at discovery time: the old retained slot is
// republished under the new id and the old one is cleared.
func CapabilityMigrations() map[string]string {
	return map[string]string{
		"pellets":     CAP_PELLETS,
		"weekprog":    CAP_WEEKLY_PROGRAM,
		"temperature": CAP_MEASURE_TEMPERATURE,
	}
}
