package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
)

func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)
	if h.requestTimeout > 0 {
		router.Use(middleware.Timeout(h.requestTimeout))
	}

	// routes without a session
	router.Group(func(r chi.Router) {
		r.With(h.withRateLimit(ratelimit.RegisterConfig)).Post("/api/auth/register", h.register)
		r.With(h.withRateLimit(ratelimit.DefaultConfig)).Post("/api/auth/login", h.login)
		r.With(h.withRateLimit(ratelimit.ResetRequestConfig)).Post("/api/auth/reset-password", h.requestPasswordReset)
		r.With(h.withRateLimit(ratelimit.ResetVerifyConfig)).Post("/api/auth/reset-password/verify", h.resetPassword)
		r.Get("/api/auth/verify", h.verifyEmail)
		r.With(h.withRateLimit(ratelimit.DefaultConfig)).Get("/api/auth/signin/{provider}", h.oauthSignIn)
		r.With(h.withRateLimit(ratelimit.DefaultConfig)).Get("/api/auth/callback/{provider}", h.oauthCallback)

		r.With(h.withRateLimit(ratelimit.DefaultConfig)).Post("/api/contact", h.submitContact)
		r.Get("/api/blog", h.listBlogPosts)
		r.Get("/rss.xml", h.rssFeed)
		r.Get("/api/version", h.getServerVersion)
		r.Options("/api/upload/avatar", h.avatarPreflight)
	})

	// routes with a session
	router.Group(func(r chi.Router) {
		r.Use(h.requireSession)

		r.Post("/api/auth/logout", h.logout)
		r.Delete("/api/auth/sessions", h.logoutEverywhere)
		r.Get("/api/auth/session", h.currentSession)

		r.Put("/api/settings", h.updateSettings)
		r.Post("/api/profile/update", h.updateProfile)
		r.Get("/api/profile/progress", h.profileProgress)
		r.Post("/api/upload/avatar", h.uploadAvatar)

		r.With(h.requireCompleteProfile).Get("/dashboard", h.dashboard)
	})

	if h.uploadsDir != "" {
		fs := http.StripPrefix(adapter.UploadsPrefix, http.FileServer(http.Dir(h.uploadsDir)))
		router.With(noSniff).Get(adapter.UploadsPrefix+"*", fs.ServeHTTP)
	}

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
