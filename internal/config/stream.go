package config

import (
	"time"

	"github.com/spf13/viper"
)

// StreamConfig holds the liveness settings of the response relay
type StreamConfig struct {
	PingPeriod time.Duration
	WriteWait  time.Duration
	PingMarker string
}

func GetStreamConfig() StreamConfig {
	cfg := StreamConfig{
		PingPeriod: viper.GetDuration("stream.ping_period"),
		WriteWait:  viper.GetDuration("stream.write_wait"),
		PingMarker: viper.GetString("stream.ping_marker"),
	}
	if cfg.PingPeriod <= 0 {
		cfg.PingPeriod = 15 * time.Second
	}
	if cfg.WriteWait <= 0 {
		cfg.WriteWait = 10 * time.Second
	}
	return cfg
}

func GetServerAddr() string {
	return GetEnvOrDefault("server.addr", ":8080")
}

func GetLogLevel() string {
	return GetEnvOrDefault("log.level", "info")
}

func GetLogFormat() string {
	return GetEnvOrDefault("log.format", "json")
}
