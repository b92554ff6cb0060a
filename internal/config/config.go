package config

import (
	"errors"
	"regexp"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Config struct {
	LogLevel zapcore.Level
	Stove    StoveConfig `mapstructure:"stove"`
	MQTT     MQTTConfig  `mapstructure:"mqtt"`

	PelletsConfig PelletsConfig `mapstructure:"pellets"`
	MonitorConfig MonitorConfig `mapstructure:"monitor"`
	StorePath     string        `mapstructure:"store_path"`
	Port          uint          `mapstructure:"port"`
	HttpLog       bool          `mapstructure:"http_log"`
}

type StoveConfig struct {
	Host                 string
	Port                 uint
	Pin                  string
	RequestTimeoutMillis uint32 `mapstructure:"request_timeout_millis"`
}

type MonitorConfig struct {
	PollIntervalMillis      uint32 `mapstructure:"poll_interval_millis"`
	CommandEchoWindowMillis uint32 `mapstructure:"command_echo_window_millis"`
}

type PelletsConfig struct {
	MaxKg     float64 `mapstructure:"max_kg"`
	AutoReset string  `mapstructure:"auto_reset"`
}

type MQTTConfig struct {
	Host              string
	Port              int
	Username          string
	Password          string
	BaseTopic         string `mapstructure:"base_topic"`
	HADiscoveryEnable bool   `mapstructure:"ha_discovery_enable"`
	HADiscoveryTopic  string `mapstructure:"ha_discovery_topic"`
}

func CheckMQTTTopic(baseTopic string) (string, error) {
	// check and fix base topic
	lowerBaseTopic := strings.ToLower(baseTopic)
	baseTopicRegexp := regexp.MustCompile("^[a-z0-9_]+$")
	matches := baseTopicRegexp.FindAllStringSubmatch(lowerBaseTopic, 1)
	if len(matches) <= 0 {
		return "", errors.New("invalid topic. can only contain letters, numbers and underscores")
	}
	return lowerBaseTopic, nil
}
