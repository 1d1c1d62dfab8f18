package util

import (
	"pergola2mqtt/internal/config"

	"go.uber.org/zap"
)

func LoadTestConfig() config.Config {
	return config.Config{
		LogLevel: zap.DebugLevel,
		Pergola: config.PergolaConfig{
			Host:               "-.-.-.-",
			Port:               443,
			UserType:           "user",
			Password:           "changeme",
			PollIntervalMillis: 5000,
			TimeoutMillis:      5000,
		},
		MQTT: config.MQTTConfig{
			Host:      "localhost",
			Port:      1883,
			BaseTopic: "pergola2mqtt",
		},
		Port: 8080,
	}
}
