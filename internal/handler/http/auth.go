package http

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Rhysmalcolm13/agentity/internal/app"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/tokens"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
	"github.com/Rhysmalcolm13/agentity/models"
)

// emailVerifiedPath is where a followed verification link lands.
const emailVerifiedPath = "/success/email-verification"

// sessionResponse is the body of a successful sign-in and of GET /api/auth/session.
type sessionResponse struct {
	User    models.UserSummary `json:"user"`
	Expires time.Time          `json:"expires"`
}

type signOutEverywhereResponse struct {
	Message string `json:"message"`
	Count   int64  `json:"count"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	user, err := h.services.AuthService.Register(r.Context(), req)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	utils.WriteJSON(w, user.Summary(), http.StatusOK)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req models.SignInRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	user, session, err := h.services.AuthService.SignInWithCredentials(r.Context(), req)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	logger.FromRequest(r).Info().Str("user_id", user.ID).Bool("remember_me", session.RememberMe).Msg("user signed in")

	h.setSessionCookie(w, session.Token, session.ExpiresAt)
	utils.WriteJSON(w, sessionResponse{User: user.Summary(), Expires: session.ExpiresAt}, http.StatusOK)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	session, _ := utils.GetSessionFromContext(r.Context())

	if err := h.services.AuthService.SignOut(r.Context(), session.Token); err != nil {
		respondError(w, r, err, nil)
		return
	}

	h.clearSessionCookie(w)
	writeMessage(w, app.MsgSignedOut, http.StatusOK)
}

func (h *Handler) logoutEverywhere(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	n, err := h.services.AuthService.SignOutEverywhere(r.Context(), userID)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	h.clearSessionCookie(w)
	utils.WriteJSON(w, signOutEverywhereResponse{Message: app.MsgSignedOutAll, Count: n}, http.StatusOK)
}

func (h *Handler) currentSession(w http.ResponseWriter, r *http.Request) {
	session, _ := utils.GetSessionFromContext(r.Context())
	user, _ := utils.GetUserFromContext(r.Context())

	utils.WriteJSON(w, sessionResponse{User: user.Summary(), Expires: session.ExpiresAt}, http.StatusOK)
}

// requestPasswordReset answers with the same message whether or not the
// address belongs to an account.
func (h *Handler) requestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	err := h.services.AuthService.RequestPasswordReset(r.Context(), req)
	switch {
	case err == nil:
	case errors.Is(err, validators.ErrValidation):
		respondError(w, r, err, nil)
		return
	default:
		logger.FromRequest(r).Err(err).Msg("password reset request failed")
	}

	writeMessage(w, app.MsgPasswordResetSent, http.StatusOK)
}

func (h *Handler) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req models.ResetPasswordVerifyRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	if err := h.services.AuthService.ResetPassword(r.Context(), req); err != nil {
		respondError(w, r, err, map[error]string{
			tokens.ErrTokenInvalid: app.MsgResetTokenInvalid,
			tokens.ErrTokenExpired: app.MsgResetTokenExpired,
		})
		return
	}

	writeMessage(w, app.MsgPasswordReset, http.StatusOK)
}

func (h *Handler) verifyEmail(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		writeMessage(w, app.MsgMissingVerificationToken, http.StatusBadRequest)
		return
	}

	if err := h.services.AuthService.VerifyEmail(r.Context(), token); err != nil {
		respondError(w, r, err, map[error]string{
			tokens.ErrTokenInvalid: app.MsgInvalidVerificationToken,
			tokens.ErrTokenExpired: app.MsgVerificationTokenExpired,
		})
		return
	}

	http.Redirect(w, r, emailVerifiedPath, http.StatusFound)
}

// oauthSignIn redirects to the consent page of the provider. The optional
// callbackUrl and rememberMe query parameters travel in the signed state.
func (h *Handler) oauthSignIn(w http.ResponseWriter, r *http.Request) {
	provider := models.OAuthProvider(chi.URLParam(r, "provider"))
	q := r.URL.Query()
	rememberMe, _ := strconv.ParseBool(q.Get("rememberMe"))

	target, err := h.services.AuthService.OAuthAuthorizeURL(r.Context(), provider, q.Get("callbackUrl"), rememberMe)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// oauthCallback completes the provider round trip. Domain failures send the
// browser back to the login page with the error code.
func (h *Handler) oauthCallback(w http.ResponseWriter, r *http.Request) {
	provider := models.OAuthProvider(chi.URLParam(r, "provider"))
	q := r.URL.Query()

	res, err := h.services.AuthService.SignInWithOAuth(r.Context(), provider, q.Get("code"), q.Get("state"), q.Get("error"))
	if err != nil {
		e, ok := autherr.As(err)
		if !ok {
			respondError(w, r, err, nil)
			return
		}
		http.Redirect(w, r, loginPath+"?error="+url.QueryEscape(string(e.Code)), http.StatusFound)
		return
	}

	logger.FromRequest(r).Info().Str("user_id", res.User.ID).Str("provider", string(provider)).Msg("user signed in")

	h.setSessionCookie(w, res.Session.Token, res.Session.ExpiresAt)
	http.Redirect(w, r, res.CallbackURL, http.StatusFound)
}
