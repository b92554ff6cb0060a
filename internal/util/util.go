package util

import (
	"github.com/berfenger/embernews2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Stove: config.StoveConfig{
			Host:                 "-.-.-.-",
			Port:                 80,
			Pin:                  "1234",
			RequestTimeoutMillis: 5000,
		},
		MQTT: config.MQTTConfig{
			Host: "localhost",
			Port: 1883,
		},
		PelletsConfig: config.PelletsConfig{
			MaxKg:     30,
			AutoReset: "15",
		},
		MonitorConfig: config.MonitorConfig{
			PollIntervalMillis:      5000,
			CommandEchoWindowMillis: 30000,
		},
		Port: 8080,
	}
}
