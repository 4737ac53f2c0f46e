package config

import (
	"time"

	"github.com/mediconnect/assistant/pkg/logger"
	"github.com/spf13/viper"
)

type RateLimitConfig struct {
	Enabled bool
	MaxHits int
	Window  time.Duration
}

func GetRateLimitConfig(key string) RateLimitConfig {
	enabled := viper.GetBool("ratelimit.enabled")

	configs := map[string]RateLimitConfig{
		"global": {
			Enabled: enabled,
			MaxHits: parseInt("ratelimit.global", 1000), // 1000 requests per minute globally
			Window:  time.Minute,
		},
		"chat_stream": {
			Enabled: enabled,
			MaxHits: parseInt("ratelimit.chat_stream", 30), // 30 conversations per minute
			Window:  time.Minute,
		},
	}

	if config, exists := configs[key]; exists {
		return config
	}

	logger.Warn(logger.CONFIG, "No rate limit config found for key: %s", key)
	return RateLimitConfig{Enabled: false}
}

func parseInt(key string, defaultValue int) int {
	if !viper.IsSet(key) {
		return defaultValue
	}

	parsed := viper.GetInt(key)
	if parsed <= 0 {
		logger.Warn(logger.CONFIG, "Invalid value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}

	return parsed
}
