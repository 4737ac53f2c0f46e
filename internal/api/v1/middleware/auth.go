package middleware

import (
	"context"
	"net/http"

	"github.com/mediconnect/assistant/internal/services/identity"
	"github.com/mediconnect/assistant/pkg/httpext"
	"github.com/rs/zerolog/log"
)

type contextKey string

const (
	requesterKey contextKey = "requester"
)

// Identify attaches the bearer token's requester to the request context. Requests without
// a token continue anonymously; an invalid token is rejected.
func Identify(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requester, ok, err := identity.Resolve(r)
		if err != nil {
			log.Warn().
				Err(err).
				Str("path", r.URL.Path).
				Msg("Rejected request with invalid requester token")
			httpext.JsonError(w, "Invalid token", http.StatusUnauthorized)
			return
		}
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), requesterKey, requester)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetRequester returns the requester attached by Identify
func GetRequester(r *http.Request) (identity.Requester, bool) {
	requester, ok := r.Context().Value(requesterKey).(identity.Requester)
	return requester, ok
}
