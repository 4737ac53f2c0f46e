package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGeneration = config.GenerationConfig{
	Model:       "gpt-4o-mini",
	Temperature: 0.7,
	MaxTokens:   256,
	TopP:        0.9,
}

func newTestOpenAIClient(serverURL string) *openai.Client {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = serverURL + "/v1"
	return openai.NewClientWithConfig(cfg)
}

func sseServer(t *testing.T, captured *openai.ChatCompletionRequest, parts ...string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			assert.NoError(t, json.NewDecoder(r.Body).Decode(captured))
		}

		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range parts {
			chunk := openai.ChatCompletionStreamResponse{
				ID:     "chatcmpl-1",
				Object: "chat.completion.chunk",
				Choices: []openai.ChatCompletionStreamChoice{{
					Index: 0,
					Delta: openai.ChatCompletionStreamChoiceDelta{Content: part},
				}},
			}
			data, err := json.Marshal(chunk)
			assert.NoError(t, err)
			fmt.Fprintf(w, "data: %s\n\n", data)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func drain(t *testing.T, recv func() (string, error)) ([]string, error) {
	t.Helper()

	var parts []string
	for {
		part, err := recv()
		if err != nil {
			return parts, err
		}
		parts = append(parts, part)
	}
}

func TestOpenAIStreamClientStreamsFragments(t *testing.T) {
	var captured openai.ChatCompletionRequest
	server := sseServer(t, &captured, "Hel", "", "lo")
	defer server.Close()

	client := NewOpenAIStreamClient(newTestOpenAIClient(server.URL), testGeneration)
	stream, err := client.Stream(context.Background(), models.ModelRequest{
		System: "system prompt",
		Turns: []models.ChatTurn{
			{Role: models.RoleUser, Content: "hi"},
			{Role: models.RoleAssistant, Content: "hello"},
			{Role: models.RoleUser, Content: "What are your hours?"},
		},
	})
	require.NoError(t, err)
	defer stream.Close()

	parts, err := drain(t, stream.Recv)
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, []string{"Hel", "", "lo"}, parts)

	assert.Equal(t, "gpt-4o-mini", captured.Model)
	assert.True(t, captured.Stream)
	assert.Equal(t, 256, captured.MaxTokens)
	assert.InDelta(t, 0.7, captured.Temperature, 0.001)
	assert.InDelta(t, 0.9, captured.TopP, 0.001)

	require.Len(t, captured.Messages, 4)
	assert.Equal(t, openai.ChatMessageRoleSystem, captured.Messages[0].Role)
	assert.Equal(t, "system prompt", captured.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, captured.Messages[1].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, captured.Messages[2].Role)
	assert.Equal(t, "What are your hours?", captured.Messages[3].Content)
}

func TestOpenAIStreamClientSubmissionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"quota exceeded","type":"rate_limit"}}`)
	}))
	defer server.Close()

	client := NewOpenAIStreamClient(newTestOpenAIClient(server.URL), testGeneration)
	stream, err := client.Stream(context.Background(), models.ModelRequest{System: "s"})

	assert.Nil(t, stream)
	assert.True(t, errors.Is(err, ErrModelUnavailable))
}

func TestToOpenAIMessages(t *testing.T) {
	messages := toOpenAIMessages(models.ModelRequest{
		System: "rules",
		Turns:  []models.ChatTurn{{Role: models.RoleAssistant, Content: "earlier answer"}},
	})

	require.Len(t, messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, messages[0].Role)
	assert.Equal(t, openai.ChatMessageRoleAssistant, messages[1].Role)
	assert.Equal(t, "earlier answer", messages[1].Content)
}
