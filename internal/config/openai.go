package config

import (
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

// GenerationConfig holds the fixed sampling parameters sent with every model request.
type GenerationConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
	TopP        float32
}

// GetOpenAIKey returns the current OpenAI key
func GetOpenAIKey() string {
	value := GetEnvOrDefault("openai.key", "")
	if value == "" {
		log.Warn().Msg("OPENAI_KEY not set")
	}
	return value
}

// GetOpenAIBaseURL returns an override for the OpenAI API base URL, or empty for the default.
func GetOpenAIBaseURL() string {
	return GetEnvOrDefault("openai.base_url", "")
}

func GetGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Model:       GetEnvOrDefault("openai.model", "gpt-4o-mini"),
		Temperature: float32(viper.GetFloat64("openai.temperature")),
		MaxTokens:   viper.GetInt("openai.max_tokens"),
		TopP:        float32(viper.GetFloat64("openai.top_p")),
	}
}
