package config

import (
	"time"

	"github.com/spf13/viper"
)

// GatewayConfig describes how to reach the platform's domain query gateway.
type GatewayConfig struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

func GetGatewayConfig() GatewayConfig {
	timeout := viper.GetDuration("gateway.timeout")
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return GatewayConfig{
		URL:     GetEnvOrDefault("gateway.url", ""),
		APIKey:  GetEnvOrDefault("gateway.api_key", ""),
		Timeout: timeout,
	}
}
