package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/mediconnect/assistant/internal/services"
	"github.com/mediconnect/assistant/pkg/httpext"
)

type HealthResponse struct {
	Status        string `json:"status"`
	Timestamp     string `json:"timestamp"`
	ActiveStreams int    `json:"active_streams"`
	Redis         string `json:"redis,omitempty"`
}

// HandleHealth reports process status. A failing Redis only degrades the status since rate
// limiting keeps working in memory.
func HandleHealth(svc *services.Services, w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "ok",
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		ActiveStreams: svc.GetConnectionManager().GetStreamCount(),
	}

	if redisService := svc.GetRedisService(); redisService != nil {
		ctx, cancel := context.WithTimeout(r.Context(), time.Second)
		defer cancel()

		resp.Redis = "ok"
		if err := redisService.Ping(ctx); err != nil {
			resp.Redis = "unavailable"
			resp.Status = "degraded"
		}
	}

	httpext.JsonResponse(w, http.StatusOK, resp)
}
