package openai

import (
	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Service owns the provider client. It is created once at startup and only read afterwards.
type Service struct {
	client     *openai.Client
	generation config.GenerationConfig
}

func NewService() *Service {
	logger.Info(logger.SERVICE, "Initialising OpenAI service")
	key := config.GetOpenAIKey()

	if key == "" {
		logger.Warn(logger.SERVICE, "OpenAI service not configured - OPENAI_KEY missing")
		return nil
	}

	clientConfig := openai.DefaultConfig(key)
	if baseURL := config.GetOpenAIBaseURL(); baseURL != "" {
		logger.Info(logger.SERVICE, "Using OpenAI base URL override: %s", baseURL)
		clientConfig.BaseURL = baseURL
	}

	return NewServiceWithConfig(clientConfig, config.GetGenerationConfig())
}

// NewServiceWithConfig builds a service from an explicit client configuration
func NewServiceWithConfig(clientConfig openai.ClientConfig, generation config.GenerationConfig) *Service {
	return &Service{
		client:     openai.NewClientWithConfig(clientConfig),
		generation: generation,
	}
}

func (s *Service) GetClient() *openai.Client {
	return s.client
}

// GetGenerationConfig returns the fixed sampling parameters for every request
func (s *Service) GetGenerationConfig() config.GenerationConfig {
	return s.generation
}
