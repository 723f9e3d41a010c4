package http

import (
	"net/http"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
)

type Handler struct {
	services  *service.Services
	limiter   ratelimit.Limiter
	validator validators.Validator

	cookie         cookieConfig
	uploadsDir     string
	requestTimeout time.Duration

	logger *logger.Logger
}

// cookieConfig describes the session cookie.
type cookieConfig struct {
	name   string
	secure bool
}

// NewHandler builds the HTTP handler. The avatar directory is served under
// /uploads/ unless avatars are stored in S3.
func NewHandler(services *service.Services, limiter ratelimit.Limiter, cfg *config.StructuredConfig, logger *logger.Logger) *Handler {
	h := &Handler{
		services:  services,
		limiter:   limiter,
		validator: validators.NewRequestValidator(),
		cookie: cookieConfig{
			name:   cfg.Auth.CookieName,
			secure: cfg.Auth.SecureCookies,
		},
		requestTimeout: cfg.Server.RequestTimeout,
		logger:         logger,
	}
	if cfg.Storage.Avatars.S3.Bucket == "" {
		h.uploadsDir = cfg.Storage.Avatars.Dir
	}

	logger.Info().Msg("http handler created")
	return h
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, token string, expires time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.name,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   h.cookie.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *Handler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
