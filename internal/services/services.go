package services

import (
	"fmt"
	"sync"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/connections"
	"github.com/mediconnect/assistant/internal/infrastructure/openai"
	"github.com/mediconnect/assistant/internal/infrastructure/platform"
	"github.com/mediconnect/assistant/internal/infrastructure/redis"
	"github.com/mediconnect/assistant/internal/services/chat"
	"github.com/mediconnect/assistant/internal/services/relay"
	"github.com/rs/zerolog/log"
)

var (
	// Mutex for thread-safe initialization
	servicesMu sync.RWMutex
)

type Services struct {
	chatService     *chat.Implementation
	connections     *connections.Manager
	openAIService   *openai.Service
	platformService *platform.Service
	redisService    *redis.Service
	streamConfig    config.StreamConfig
}

// InitializeServices initializes all required services
func InitializeServices() (*Services, error) {
	servicesMu.Lock()
	defer servicesMu.Unlock()

	log.Info().Msg("Initializing core services")

	// Initialize Redis service (optional)
	redisService := redis.NewService()
	log.Info().Bool("available", redisService != nil).Msg("Initializing Redis service")

	// Initialize domain query gateway (optional)
	platformService := platform.NewService()
	var gateway chat.QueryGateway
	if platformService != nil {
		gateway = platformService
	}
	log.Info().Bool("available", platformService != nil).Msg("Initializing domain query gateway")

	// Initialize OpenAI service (required)
	openAIService := openai.NewService()
	if openAIService == nil {
		return nil, fmt.Errorf("failed to initialize OpenAI service - OPENAI_KEY is required")
	}

	streamConfig := config.GetStreamConfig()
	manager := connections.NewManager(connections.TimeoutConfig{
		PingPeriod: streamConfig.PingPeriod,
		WriteWait:  streamConfig.WriteWait,
	})

	client := chat.NewOpenAIStreamClient(openAIService.GetClient(), openAIService.GetGenerationConfig())

	// Initialize chat service (required)
	chatService, err := chat.NewService(client, gateway, chat.NewComposer(nil), relay.New(manager))
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize chat service - required for message processing")
		return nil, fmt.Errorf("failed to initialize chat service: %w", err)
	}
	log.Info().Msg("Initializing chat service")

	log.Info().Msg("All services initialized successfully")

	return &Services{
		chatService:     chatService,
		connections:     manager,
		openAIService:   openAIService,
		platformService: platformService,
		redisService:    redisService,
		streamConfig:    streamConfig,
	}, nil
}

// GetChatService returns the chat service
func (s *Services) GetChatService() chat.Service {
	return s.chatService
}

// GetConnectionManager returns the registry of open streams
func (s *Services) GetConnectionManager() *connections.Manager {
	return s.connections
}

// GetRedisService returns the Redis service, or nil when Redis is not configured
func (s *Services) GetRedisService() *redis.Service {
	return s.redisService
}

// GetStreamConfig returns the liveness settings for response streams
func (s *Services) GetStreamConfig() config.StreamConfig {
	return s.streamConfig
}

// Close releases external connections
func (s *Services) Close() error {
	if s.redisService != nil {
		return s.redisService.Close()
	}
	return nil
}
