package http

import (
	"errors"
	"net/http"

	"github.com/Rhysmalcolm13/agentity/internal/app"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/tokens"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
)

var errorStatusMap = map[error]int{
	autherr.ErrInvalidCredentials: http.StatusUnauthorized,
	autherr.ErrSessionExpired:     http.StatusUnauthorized,
	autherr.ErrSessionInvalid:     http.StatusUnauthorized,
	autherr.ErrUnauthorized:       http.StatusUnauthorized,
	autherr.ErrAccountDisabled:    http.StatusForbidden,
	autherr.ErrProfileIncomplete:  http.StatusForbidden,
	autherr.ErrOAuthAccessDenied:  http.StatusForbidden,
	autherr.ErrAccountExists:      http.StatusConflict,
	autherr.ErrAccountLocked:      http.StatusLocked,
	autherr.ErrRateLimitExceeded:  http.StatusTooManyRequests,
	autherr.ErrOAuthCallbackError: http.StatusBadRequest,
	autherr.ErrOAuthPopupClosed:   http.StatusBadRequest,
	autherr.ErrUploadError:        http.StatusBadRequest,
	autherr.ErrOAuthProviderError: http.StatusBadGateway,

	validators.ErrValidation:      http.StatusBadRequest,
	validators.ErrUnsupportedType: http.StatusBadRequest,
	ErrInvalidJSON:                http.StatusBadRequest,
	ErrNoFileProvided:             http.StatusBadRequest,

	service.ErrUserAlreadyExists:       http.StatusBadRequest,
	service.ErrEmailInUse:              http.StatusBadRequest,
	service.ErrCurrentPasswordRequired: http.StatusBadRequest,
	service.ErrInvalidCurrentPassword:  http.StatusBadRequest,
	service.ErrUserNotFound:            http.StatusNotFound,
	service.ErrProviderNotSupported:    http.StatusNotFound,

	tokens.ErrTokenInvalid: http.StatusBadRequest,
	tokens.ErrTokenExpired: http.StatusBadRequest,

	store.ErrNoUserWasFound: http.StatusNotFound,
}

// errorMessageMap holds the response message of plain sentinel errors.
var errorMessageMap = map[error]string{
	ErrInvalidJSON:                     app.MsgInvalidJSON,
	ErrNoFileProvided:                  app.MsgNoFileProvided,
	service.ErrUserAlreadyExists:       app.MsgUserAlreadyExists,
	service.ErrEmailInUse:              app.MsgEmailInUse,
	service.ErrCurrentPasswordRequired: app.MsgCurrentPasswordRequired,
	service.ErrInvalidCurrentPassword:  app.MsgInvalidCurrentPassword,
	service.ErrUserNotFound:            app.MsgUserNotFound,
	service.ErrProviderNotSupported:    app.MsgProviderNotFound,
	store.ErrNoUserWasFound:            app.MsgUserNotFound,
}

func statusFromError(err error) int {
	for target, status := range errorStatusMap {
		if errors.Is(err, target) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// messageResponse is the `{"message": "..."}` body.
type messageResponse struct {
	Message string `json:"message"`
}

// errorResponse is the `{"error": {"code", "message", "data"}}` body of
// domain errors.
type errorResponse struct {
	Error *autherr.Error `json:"error"`
}

func writeMessage(w http.ResponseWriter, message string, status int) {
	_, _ = utils.WriteJSON(w, messageResponse{Message: message}, status)
}

func writeAuthError(w http.ResponseWriter, e *autherr.Error, status int) {
	_, _ = utils.WriteJSON(w, errorResponse{Error: e}, status)
}

// respondError renders err:
//   - domain errors as {"error": {...}} with their mapped status;
//   - validation errors as {"message": <first failed rule>};
//   - errors listed in overrides, then in errorMessageMap, as {"message"};
//   - anything else is logged and answered with a generic 500.
func respondError(w http.ResponseWriter, r *http.Request, err error, overrides map[error]string) {
	status := statusFromError(err)

	if e, ok := autherr.As(err); ok {
		writeAuthError(w, e, status)
		return
	}

	var ve *validators.ValidationError
	if errors.As(err, &ve) {
		writeMessage(w, ve.Message, http.StatusBadRequest)
		return
	}

	for target, message := range overrides {
		if errors.Is(err, target) {
			writeMessage(w, message, status)
			return
		}
	}
	for target, message := range errorMessageMap {
		if errors.Is(err, target) {
			writeMessage(w, message, status)
			return
		}
	}

	logger.FromRequest(r).Err(err).Int("status", status).Msg("request failed")
	if status == http.StatusInternalServerError {
		writeMessage(w, app.MsgSomethingWentWrong, status)
		return
	}
	writeMessage(w, http.StatusText(status), status)
}
