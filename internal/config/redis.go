package config

import (
	"github.com/mediconnect/assistant/pkg/logger"
)

func GetRedisURL() string {
	logger.Debug(logger.CONFIG, "Attempting to retrieve Redis URL from configuration")
	value := GetEnvOrDefault("redis.url", "")
	if value == "" {
		logger.Warn(logger.CONFIG, "Redis URL not set - falling back to in-memory rate limiting")
	} else {
		logger.Info(logger.CONFIG, "Redis URL successfully loaded")
	}
	return value
}

func GetRedisPassword() string {
	return GetEnvOrDefault("redis.password", "")
}
