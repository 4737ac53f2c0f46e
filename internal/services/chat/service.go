package chat

import (
	"context"

	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/mediconnect/assistant/internal/services/relay"
)

// Service defines the interface for assistant conversations
type Service interface {
	// Handle answers req by streaming the model response into sink. All outcomes,
	// including errors, are observable only through sink.
	Handle(ctx context.Context, req models.ConversationRequest, sink relay.Sink)
}

// QueryGateway is the platform capability that looks up live domain data for a question.
// A nil result means nothing relevant exists.
type QueryGateway interface {
	Query(ctx context.Context, requesterID, role, text string) (*models.QueryResult, error)
}

// StreamClient submits a composed prompt to the model provider
type StreamClient interface {
	Stream(ctx context.Context, req models.ModelRequest) (relay.TokenStream, error)
}
