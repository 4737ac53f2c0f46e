package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	v1chat "github.com/mediconnect/assistant/internal/api/v1/handlers/chat"
	v1ws "github.com/mediconnect/assistant/internal/api/v1/handlers/websocket"
	v1mware "github.com/mediconnect/assistant/internal/api/v1/middleware"
	"github.com/mediconnect/assistant/internal/services"
)

func RegisterV1Routes(router *mux.Router, services *services.Services) {
	// v1 routes
	v1 := router.PathPrefix("/v1").Subrouter()
	v1.Use(v1mware.RateLimit("global", services.GetRedisService()))

	// Assistant routes: requester identity is optional, invalid tokens are rejected
	v1assistantRouter := v1.PathPrefix("/assistant").Subrouter()
	v1assistantRouter.Use(v1mware.Identify)

	chatLimit := v1mware.RateLimit("chat_stream", services.GetRedisService())

	v1assistantRouter.Handle("/chat", chatLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChatStream(services.GetChatService(), services.GetStreamConfig(), w, r)
	}))).Methods("POST")
	v1assistantRouter.Handle("/chat/context", chatLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1chat.HandleChatStreamWithContext(services.GetChatService(), services.GetStreamConfig(), w, r)
	}))).Methods("POST")
	v1assistantRouter.Handle("/ws", chatLimit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		v1ws.HandleAssistantWebSocket(services.GetChatService(), services.GetStreamConfig(), w, r)
	}))).Methods("GET")
}
