package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/mediconnect/assistant/internal/config"
	"github.com/mediconnect/assistant/internal/infrastructure/redis"
	"github.com/mediconnect/assistant/internal/metrics"
	"github.com/mediconnect/assistant/pkg/httpext"
	"github.com/mediconnect/assistant/pkg/logger"
	"github.com/mediconnect/assistant/pkg/ratelimit"
)

// RateLimit limits requests per client IP. Counters live in Redis when a service is
// given, otherwise in process memory.
func RateLimit(limitKey string, redisService *redis.Service) func(http.Handler) http.Handler {
	cfg := config.GetRateLimitConfig(limitKey)

	var limiter ratelimit.Allower
	if redisService != nil {
		limiter = ratelimit.NewRedisLimiter(redisService.GetClient(), "ratelimit:"+limitKey, cfg.Window, cfg.MaxHits)
	} else {
		limiter = ratelimit.NewLimiter(cfg.Window, cfg.MaxHits)
	}

	return RateLimitWith(limitKey, cfg, limiter)
}

// RateLimitWith applies cfg using an explicit limiter
func RateLimitWith(limitKey string, cfg config.RateLimitConfig, limiter ratelimit.Allower) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled {
				next.ServeHTTP(w, r)
				return
			}

			ip := clientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				// Counting failures never block a conversation.
				logger.Warn(logger.MIDDLEWARE, "Rate limiter unavailable for %s: %v", limitKey, err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Warn(logger.MIDDLEWARE, "Rate limit exceeded for %s on %s", ip, limitKey)
				metrics.RejectedTotal.WithLabelValues("rate_limited").Inc()
				httpext.JsonError(w, "Rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// Use X-Forwarded-For if behind proxy, otherwise remote address
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first, _, _ := strings.Cut(forwarded, ",")
		return strings.TrimSpace(first)
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
