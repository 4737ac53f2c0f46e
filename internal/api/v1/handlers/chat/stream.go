package chat

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	v1mware "github.com/mediconnect/assistant/internal/api/v1/middleware"
	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/services/chat"
	"github.com/mediconnect/assistant/internal/services/relay"
	"github.com/mediconnect/assistant/pkg/httpext"
	"github.com/rs/zerolog/log"
)

const maxBodyBytes = 1 << 20

// use a single instance of Validate, it caches struct info
var validate = validator.New(validator.WithRequiredStructEnabled())

// HandleChatStream streams the assistant answer to a conversation as chunked plain text
func HandleChatStream(chatService chat.Service, stream config.StreamConfig, w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if !decode(w, r, &req) {
		return
	}

	requester, identified := v1mware.GetRequester(r)
	sink := relay.NewHTTPSink(w, stream.PingMarker, stream.WriteWait)
	chatService.Handle(r.Context(), req.ToConversation(requester, identified), sink)
}

// HandleChatStreamWithContext is the variant that trusts caller supplied context data
func HandleChatStreamWithContext(chatService chat.Service, stream config.StreamConfig, w http.ResponseWriter, r *http.Request) {
	var req ContextChatRequest
	if !decode(w, r, &req) {
		return
	}

	if err := validate.Struct(req); err != nil {
		log.Warn().Err(err).Msg("Request validation failed")
		httpext.JsonError(w, fmt.Sprintf("Invalid request: %v", err), http.StatusBadRequest)
		return
	}

	requester, identified := v1mware.GetRequester(r)
	sink := relay.NewHTTPSink(w, stream.PingMarker, stream.WriteWait)
	chatService.Handle(r.Context(), req.ToConversation(requester, identified), sink)
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed JSON request")
		httpext.JsonError(w, "Invalid request format", http.StatusBadRequest)
		return false
	}
	return true
}
