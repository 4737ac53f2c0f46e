package websocket

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	chathandlers "github.com/mediconnect/assistant/internal/api/v1/handlers/chat"
	v1mware "github.com/mediconnect/assistant/internal/api/v1/middleware"
	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/services/chat"
	"github.com/mediconnect/assistant/internal/services/relay"
	"github.com/rs/zerolog/log"
)

const (
	maxMessageSize = 1 << 20
	requestWait    = 30 * time.Second
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// TODO: check origins against the platform's frontend hosts once they are configurable
			return true
		},
	}
)

// HandleAssistantWebSocket answers one conversation per connection. The first text frame
// carries the same JSON body as the HTTP chat endpoint.
func HandleAssistantWebSocket(chatService chat.Service, stream config.StreamConfig, w http.ResponseWriter, r *http.Request) {
	requester, identified := v1mware.GetRequester(r)

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to upgrade assistant connection")
		return
	}
	defer conn.Close()

	sink := relay.NewWebSocketSink(conn, stream.WriteWait)
	conn.SetReadLimit(maxMessageSize)

	if err := conn.SetReadDeadline(time.Now().Add(requestWait)); err != nil {
		return
	}
	var req chathandlers.ChatRequest
	if err := conn.ReadJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Client sent malformed assistant request frame")
		sink.Fail(http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	sink.StartReadPump(func(err error) {
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			log.Debug().Err(err).Msg("Assistant connection closed unexpectedly")
		}
		cancel()
	})

	chatService.Handle(ctx, req.ToConversation(requester, identified), sink)
}
