package domain

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"

	"github.com/berfenger/embernews2mqtt/pkg/pellet_stove"

	"github.com/carlmjohnson/versioninfo"
)

const (
	SENSOR_ID_BRIDGE_STATE = "bridge"

	STATE_CLASS_DURATION         = "duration"
	STATE_CLASS_MEASUREMENT      = "measurement"
	STATE_CLASS_TOTAL_INCREASING = "total_increasing"
	DEVICE_CLASS_TEMPERATURE     = "temperature"
	DEVICE_CLASS_WEIGHT          = "weight"
	DEVICE_CLASS_DURATION        = "duration"
	DEVICE_CLASS_PROBLEM         = "problem"
	DEVICE_CLASS_CONNECTIVITY    = "connectivity"
	ENTITY_CLASS_DIAGNOSTIC      = "diagnostic"
	ENTITY_CLASS_CONFIG          = "config"
	SENSOR_TYPE_SENSOR           = "sensor"
	SENSOR_TYPE_BINARY           = "binary_sensor"
	INPUT_NUMBER_MODE_BOX        = "box"
	INPUT_NUMBER_MODE_SLIDER     = "slider"
)

func BridgeDevice(baseTopic string) Device {
	return Device{
		Id:           fmt.Sprintf("embernews_bridge_%s", md5HashShort(baseTopic)),
		Manufacturer: "ACasal",
		Model:        "Embernews",
		Version:      versioninfo.Short(),
		Name:         fmt.Sprintf("Embernews %s", md5HashShort(baseTopic)),
	}
}

func StoveDevice(info *pellet_stove.StoveInfo) Device {
	return Device{
		Id:           fmt.Sprintf("hs_stove_%s", md5HashShort(info.Serial)),
		Version:      info.Version,
		Manufacturer: info.Manufacturer,
		Model:        info.Model,
		Name:         fmt.Sprintf("%s %s %s", info.Manufacturer, info.Model, md5HashShort(info.Serial)),
	}
}

func IdDevice(device Device) Device {
	return Device{
		Id:   device.Id,
		Name: device.Name,
	}
}

func StoveBaseSensors(stoveDevice Device) []GenericSensor {

	var sensors []GenericSensor

	// Room temperature
	sensors = append(sensors, GenericSensor{
		Device:            stoveDevice,
		Id:                CAP_MEASURE_TEMPERATURE,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Room temperature",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_TEMPERATURE,
		UnitOfMeasurement: "°C",
		UniqueId:          uniqueId(stoveDevice.Id, CAP_MEASURE_TEMPERATURE),
	})

	// Operating mode
	sensors = append(sensors, GenericSensor{
		Device:     stoveDevice,
		Id:         CAP_OPERATING_MODE,
		SensorType: SENSOR_TYPE_SENSOR,
		Name:       "Operating mode",
		UniqueId:   uniqueId(stoveDevice.Id, CAP_OPERATING_MODE),
	})

	// Remaining pellets
	sensors = append(sensors, GenericSensor{
		Device:            stoveDevice,
		Id:                CAP_PELLETS,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Remaining pellets",
		StateClass:        STATE_CLASS_MEASUREMENT,
		DeviceClass:       DEVICE_CLASS_WEIGHT,
		UnitOfMeasurement: "kg",
		Icon:              "mdi:grain",
		UniqueId:          uniqueId(stoveDevice.Id, CAP_PELLETS),
	})

	// Hours until cleaning
	sensors = append(sensors, GenericSensor{
		Device:            stoveDevice,
		Id:                CAP_CLEANING_HOURS,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Hours until cleaning",
		StateClass:        STATE_CLASS_MEASUREMENT,
		UnitOfMeasurement: "h",
		Icon:              "mdi:broom",
		UniqueId:          uniqueId(stoveDevice.Id, CAP_CLEANING_HOURS),
	})

	// Hours until maintenance
	sensors = append(sensors, GenericSensor{
		Device:            stoveDevice,
		Id:                CAP_MAINTENANCE_HOURS,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Hours until maintenance",
		StateClass:        STATE_CLASS_MEASUREMENT,
		UnitOfMeasurement: "h",
		Icon:              "mdi:wrench-clock",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:          uniqueId(stoveDevice.Id, CAP_MAINTENANCE_HOURS),
	})

	// Total pellet consumption
	sensors = append(sensors, GenericSensor{
		Device:            stoveDevice,
		Id:                CAP_CONSUMPTION_TOTAL,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Total pellet consumption",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		DeviceClass:       DEVICE_CLASS_WEIGHT,
		UnitOfMeasurement: "kg",
		UniqueId:          uniqueId(stoveDevice.Id, CAP_CONSUMPTION_TOTAL),
	})

	// Ignition count
	sensors = append(sensors, GenericSensor{
		Device:           stoveDevice,
		Id:               CAP_IGNITION_COUNT,
		SensorType:       SENSOR_TYPE_SENSOR,
		Name:             "Ignition count",
		StateClass:       STATE_CLASS_TOTAL_INCREASING,
		EntityCategory:   ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault: optionalBool(false),
		UniqueId:         uniqueId(stoveDevice.Id, CAP_IGNITION_COUNT),
	})

	// Burn hours
	sensors = append(sensors, GenericSensor{
		Device:            stoveDevice,
		Id:                CAP_BURN_HOURS,
		SensorType:        SENSOR_TYPE_SENSOR,
		Name:              "Burn hours",
		StateClass:        STATE_CLASS_TOTAL_INCREASING,
		UnitOfMeasurement: "h",
		EntityCategory:    ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault:  optionalBool(false),
		UniqueId:          uniqueId(stoveDevice.Id, CAP_BURN_HOURS),
	})

	// Zone states
	sensors = append(sensors, GenericSensor{
		Device:           stoveDevice,
		Id:               CAP_ZONE_STATES,
		SensorType:       SENSOR_TYPE_SENSOR,
		Name:             "Zone states",
		EntityCategory:   ENTITY_CLASS_DIAGNOSTIC,
		EnabledByDefault: optionalBool(false),
		UniqueId:         uniqueId(stoveDevice.Id, CAP_ZONE_STATES),
	})

	// Controller software version
	sensors = append(sensors, GenericSensor{
		Device:         stoveDevice,
		Id:             CAP_SW_VERSION,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Controller software version",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(stoveDevice.Id, CAP_SW_VERSION),
	})

	// Active fault
	sensors = append(sensors, GenericSensor{
		Device:         stoveDevice,
		Id:             CAP_FAULT_ACTIVE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Fault",
		DeviceClass:    DEVICE_CLASS_PROBLEM,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(stoveDevice.Id, CAP_FAULT_ACTIVE),
	})

	// Fault description
	sensors = append(sensors, GenericSensor{
		Device:         stoveDevice,
		Id:             CAP_FAULT_TEXT,
		SensorType:     SENSOR_TYPE_SENSOR,
		Name:           "Fault description",
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(stoveDevice.Id, CAP_FAULT_TEXT),
	})

	return sensors
}

func StoveSwitches(stoveDevice Device) []GenericSwitch {

	var switches []GenericSwitch

	// Power
	switches = append(switches, GenericSwitch{
		Device:   stoveDevice,
		Id:       CAP_ONOFF,
		Name:     "Power",
		UniqueId: uniqueId(stoveDevice.Id, CAP_ONOFF),
		Icon:     "mdi:fire",
	})
	// Weekly program
	switches = append(switches, GenericSwitch{
		Device:   stoveDevice,
		Id:       CAP_WEEKLY_PROGRAM,
		Name:     "Weekly program",
		UniqueId: uniqueId(stoveDevice.Id, CAP_WEEKLY_PROGRAM),
		Icon:     "mdi:calendar-clock",
	})
	// Eco mode
	switches = append(switches, GenericSwitch{
		Device:   stoveDevice,
		Id:       CAP_ECO_MODE,
		Name:     "Eco mode",
		UniqueId: uniqueId(stoveDevice.Id, CAP_ECO_MODE),
		Icon:     "mdi:leaf",
	})

	return switches
}

func StoveInputNumbers(stoveDevice Device, pelletsMaxKg float64) []GenericInputNumber {

	var inputNumbers []GenericInputNumber

	// Target temperature
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:       stoveDevice,
		Id:           CAP_TARGET_TEMPERATURE,
		Name:         "Target temperature",
		UniqueId:     uniqueId(stoveDevice.Id, CAP_TARGET_TEMPERATURE),
		Icon:         "mdi:thermometer",
		Max:          40,
		Min:          0,
		Step:         0.5,
		Mode:         INPUT_NUMBER_MODE_BOX,
		InitialValue: 20,
	})

	// Remaining pellets override
	inputNumbers = append(inputNumbers, GenericInputNumber{
		Device:       stoveDevice,
		Id:           CAP_PELLETS,
		Name:         "Set remaining pellets",
		UniqueId:     uniqueId(stoveDevice.Id, CAP_PELLETS+"_set"),
		Icon:         "mdi:grain",
		Max:          pelletsMaxKg,
		Min:          0,
		Step:         0.5,
		Mode:         INPUT_NUMBER_MODE_BOX,
		InitialValue: pelletsMaxKg,
	})

	return inputNumbers
}

func BridgeSensors(bridgeDevice Device) []GenericSensor {

	var sensors []GenericSensor

	sensors = append(sensors, GenericSensor{
		Device:         bridgeDevice,
		Id:             SENSOR_ID_BRIDGE_STATE,
		SensorType:     SENSOR_TYPE_BINARY,
		Name:           "Connection state",
		DeviceClass:    DEVICE_CLASS_CONNECTIVITY,
		EntityCategory: ENTITY_CLASS_DIAGNOSTIC,
		UniqueId:       uniqueId(bridgeDevice.Id, SENSOR_ID_BRIDGE_STATE),
	})

	return sensors
}

func uniqueId(baseId, id string) string {
	return fmt.Sprintf("uid_%s_%s", baseId, id)
}

func md5Hash(text string) string {
	hash := md5.Sum([]byte(text))
	return hex.EncodeToString(hash[:])
}

func md5HashShort(text string) string {
	hash := md5Hash(text)
	return hash[0:8]
}

func optionalBool(value bool) *bool {
	return &value
}
