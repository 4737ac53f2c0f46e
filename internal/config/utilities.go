package config

import (
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

var loadMu sync.Mutex

func init() {
	setDefaults()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load reads an optional config file. Environment variables still take precedence, so a
// key such as "openai.key" can always be overridden by OPENAI_KEY.
func Load(path string) error {
	loadMu.Lock()
	defer loadMu.Unlock()

	if path == "" {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && path == "" {
			log.Debug().Msg("No config file found, using environment and defaults")
			return nil
		}
		return err
	}

	log.Info().Str("file", viper.ConfigFileUsed()).Msg("Configuration file loaded")
	return nil
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("openai.model", "gpt-4o-mini")
	viper.SetDefault("openai.temperature", 0.7)
	viper.SetDefault("openai.max_tokens", 1024)
	viper.SetDefault("openai.top_p", 0.9)
	viper.SetDefault("gateway.timeout", "10s")
	viper.SetDefault("stream.ping_period", "15s")
	viper.SetDefault("stream.write_wait", "10s")
	viper.SetDefault("stream.ping_marker", "\u200b")
	viper.SetDefault("ratelimit.enabled", false)
	viper.SetDefault("ratelimit.global", 1000)
	viper.SetDefault("ratelimit.chat_stream", 30)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")
}

// GetEnvOrDefault returns the value of a config key or a default value
func GetEnvOrDefault(key, defaultValue string) string {
	value := viper.GetString(key)
	if value == "" && defaultValue == "" {
		log.Trace().Str("key", key).Msg("Empty value and default for configuration key")
	}
	if value == "" {
		return defaultValue
	}
	return value
}
