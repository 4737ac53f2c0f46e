package chat

import (
	"github.com/mediconnect/assistant/internal/domain/chat/models"
	"github.com/mediconnect/assistant/internal/services/identity"
)

// ChatRequest is the body of the streaming chat endpoints and the first WebSocket frame
type ChatRequest struct {
	Messages []models.ChatTurn `json:"messages"`

	// Augment defaults to true when omitted
	Augment *bool `json:"augment,omitempty"`
}

// ContextChatRequest carries caller supplied context in place of a gateway lookup
type ContextChatRequest struct {
	Messages []models.ChatTurn   `json:"messages"`
	Context  *models.QueryResult `json:"context" validate:"required"`
}

// ToConversation builds the orchestrator request for an optional requester
func (r ChatRequest) ToConversation(requester identity.Requester, identified bool) models.ConversationRequest {
	augment := true
	if r.Augment != nil {
		augment = *r.Augment
	}

	req := models.ConversationRequest{
		Turns:   r.Messages,
		Augment: augment,
	}
	if identified {
		req.RequesterID = requester.ID
		req.RequesterRole = requester.Role
	}
	return req
}

func (r ContextChatRequest) ToConversation(requester identity.Requester, identified bool) models.ConversationRequest {
	req := ChatRequest{Messages: r.Messages}.ToConversation(requester, identified)
	req.ContextData = r.Context
	return req
}
