package http

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/Rhysmalcolm13/agentity/internal/app"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
)

// loginPath is where browsers without a valid session are sent.
const loginPath = "/login"

// requireSession authenticates the request with the session cookie or, when
// it is absent, an "Authorization: Bearer" token.
//
// On success the session and its user are stored in the request context and
// a refreshed expiry is written back to the cookie. Unauthenticated API
// requests get 401 {"error": {...}}; other requests are redirected to the
// login page with the original path as callbackUrl.
func (h *Handler) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromRequest(r)

		token, fromCookie, err := h.sessionToken(r)
		if err != nil {
			h.unauthenticated(w, r, autherr.ErrUnauthorized)
			return
		}

		ctx := r.Context()
		session, user, err := h.services.AuthService.Authenticate(ctx, token)
		if err != nil {
			e, ok := autherr.As(err)
			if !ok {
				log.Err(err).Str("func", "*Handler.requireSession").Msg("error authenticating session")
				writeMessage(w, app.MsgInternalServerError, http.StatusInternalServerError)
				return
			}
			if fromCookie {
				h.clearSessionCookie(w)
			}
			h.unauthenticated(w, r, e)
			return
		}

		if fromCookie {
			h.setSessionCookie(w, session.Token, session.ExpiresAt)
		}

		l := log.WithUserID(user.ID)
		ctx = utils.WithUser(utils.WithSession(l.WithContext(ctx), session), user)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireCompleteProfile rejects users whose profile misses mandatory
// fields. API requests get 403 with the completion URL in the error data;
// browsers are redirected there.
func (h *Handler) requireCompleteProfile(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, _ := utils.GetUserIDFromContext(r.Context())

		err := h.services.ProfileService.EnsureComplete(r.Context(), userID)
		if err == nil {
			next.ServeHTTP(w, r)
			return
		}

		e, ok := autherr.As(err)
		switch {
		case ok && errors.Is(e, autherr.ErrProfileIncomplete) && !utils.IsAPIRequest(r):
			redirectURL, _ := e.Data["redirectUrl"].(string)
			http.Redirect(w, r, redirectURL, http.StatusFound)
		case ok && errors.Is(e, autherr.ErrUnauthorized):
			h.unauthenticated(w, r, e)
		default:
			respondError(w, r, err, nil)
		}
	})
}

// sessionToken returns the session token of r and whether it came from the
// cookie.
func (h *Handler) sessionToken(r *http.Request) (string, bool, error) {
	if c, err := r.Cookie(h.cookie.name); err == nil && c.Value != "" {
		return c.Value, true, nil
	}
	token, err := utils.ParseBearerToken(r.Header.Get("Authorization"))
	if err != nil {
		return "", false, ErrNoSessionToken
	}
	return token, false, nil
}

func (h *Handler) unauthenticated(w http.ResponseWriter, r *http.Request, e *autherr.Error) {
	if utils.IsAPIRequest(r) {
		writeAuthError(w, e, http.StatusUnauthorized)
		return
	}
	http.Redirect(w, r, loginPath+"?callbackUrl="+url.QueryEscape(r.URL.RequestURI()), http.StatusFound)
}
