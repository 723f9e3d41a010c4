package http

import (
	"net/http"
	"strconv"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
)

// withRateLimit consumes one token of the METHOD:PATH:IP bucket per request.
// Exhausted buckets are answered with 429, Retry-After and X-RateLimit-Reset.
// A failing limiter backend lets the request through.
func (h *Handler) withRateLimit(cfg ratelimit.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := ratelimit.Key(r.Method, r.URL.Path, utils.ClientIP(r))

			err := ratelimit.Enforce(r.Context(), h.limiter, key, cfg)
			if err == nil {
				next.ServeHTTP(w, r)
				return
			}

			e, ok := autherr.As(err)
			if !ok {
				logger.FromRequest(r).Warn().Err(err).Str("func", "*Handler.withRateLimit").Msg("rate limiter failed, request allowed")
				next.ServeHTTP(w, r)
				return
			}

			if retryAfter, ok := e.Data["retryAfter"].(int); ok {
				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			}
			if resetTime, ok := e.Data["resetTime"].(string); ok {
				w.Header().Set("X-RateLimit-Reset", resetTime)
			}
			writeAuthError(w, e, http.StatusTooManyRequests)
		})
	}
}
