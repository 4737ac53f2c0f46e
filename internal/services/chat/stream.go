package chat

import (
	"context"
	"fmt"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/mediconnect/assistant/internal/services/relay"
	"github.com/mediconnect/assistant/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// OpenAIStreamClient streams chat completions with fixed generation parameters.
type OpenAIStreamClient struct {
	client     *openai.Client
	generation config.GenerationConfig
}

func NewOpenAIStreamClient(client *openai.Client, generation config.GenerationConfig) *OpenAIStreamClient {
	return &OpenAIStreamClient{
		client:     client,
		generation: generation,
	}
}

// Stream submits req and returns its fragments. The returned stream is finite and cannot
// be restarted; a retry needs a new call.
func (c *OpenAIStreamClient) Stream(ctx context.Context, req models.ModelRequest) (relay.TokenStream, error) {
	logger.Debug(logger.CHAT, "Submitting model request with %d turns", len(req.Turns))

	stream, err := c.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:       c.generation.Model,
		Messages:    toOpenAIMessages(req),
		Temperature: c.generation.Temperature,
		MaxTokens:   c.generation.MaxTokens,
		TopP:        c.generation.TopP,
		Stream:      true,
	})
	if err != nil {
		logger.Error(logger.CHAT, "Failed to open model stream: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrModelUnavailable, err)
	}

	return &openAITokenStream{stream: stream}, nil
}

func toOpenAIMessages(req models.ModelRequest) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Turns)+1)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: req.System,
	})

	for _, turn := range req.Turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == models.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: turn.Content,
		})
	}
	return messages
}

type openAITokenStream struct {
	stream *openai.ChatCompletionStream
}

// Recv returns the next delta. Chunks without choices yield an empty fragment; io.EOF
// from the provider passes through unchanged.
func (s *openAITokenStream) Recv() (string, error) {
	resp, err := s.stream.Recv()
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Delta.Content, nil
}

func (s *openAITokenStream) Close() error {
	s.stream.Close()
	return nil
}
