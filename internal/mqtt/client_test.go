package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/berfenger/embernews2mqtt/internal/config"
)

func TestSwitchCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/my_device/command"
	r := switchCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "my_device", "device extract")
}

func TestSwitchCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/my_device/state"
	r := switchCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestInputNumberCommandParse(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/number/number_name/set"
	r := inputNumberCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(matches[0][1], "number_name", "number_id extract")
}

func TestInputNumberCommandParseFail(t *testing.T) {

	assert := assert.New(t)

	baseTopic := "loremTopic"
	topic := "loremTopic/switch/number_name/command"
	r := inputNumberCommandExtractor(baseTopic)
	matches := r.FindAllStringSubmatch(topic, 1)

	assert.Equal(len(matches), 0, "no matches")
}

func TestTopics(t *testing.T) {

	assert := assert.New(t)

	cfg := config.Config{
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "embernews",
		},
	}
	client := CreateMQTTClient(&cfg, OptsFromConfig(&cfg), nil, nil)

	assert.Equal("embernews/bridge/state", client.BridgeStateTopic())
	assert.Equal("embernews/device/availability", client.DeviceAvailabilityTopic())
	assert.Equal("embernews/sensor/measure_temperature/state", client.SensorStateTopic("measure_temperature"))
	assert.Equal("embernews/binary_sensor/fault_active/state", client.BinarySensorStateTopic("fault_active"))
	assert.Equal("embernews/switch/onoff/command", client.SwitchCommandTopic("onoff"))
	assert.Equal("embernews/number/target_temperature/set", client.InputNumberCommandTopic("target_temperature"))
	assert.Equal("embernews/event/error_occurred", client.TriggerTopic("error_occurred"))
	assert.Equal("embernews/notify", client.NotifyTopic())
}
