package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/Rhysmalcolm13/agentity/internal/app"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
)

// multipartOverhead is the allowance for multipart headers on top of the
// file size limit.
const multipartOverhead = 1 << 20

func settingsMessage(base string, res models.SettingsResult) string {
	if res.EmailChangePending {
		return base + app.MsgEmailChangePending
	}
	return base
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var req models.SettingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	res, err := h.services.SettingsService.UpdateSettings(r.Context(), userID, req)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	writeMessage(w, settingsMessage(app.MsgSettingsUpdated, res), http.StatusOK)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req models.ProfileUpdateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err, nil)
		return
	}
	if err := h.validator.Validate(r.Context(), req); err != nil {
		respondError(w, r, err, nil)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	res, err := h.services.ProfileService.UpdateProfile(r.Context(), userID, models.ProfileData{
		Name:  &req.Name,
		Email: &req.Email,
	})
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	writeMessage(w, settingsMessage(app.MsgProfileUpdated, res), http.StatusOK)
}

func (h *Handler) profileProgress(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	progress, err := h.services.ProfileService.GetProgress(r.Context(), userID)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	utils.WriteJSON(w, progress, http.StatusOK)
}

func setAvatarCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func (h *Handler) avatarPreflight(w http.ResponseWriter, r *http.Request) {
	setAvatarCORSHeaders(w)
	w.WriteHeader(http.StatusOK)
}

// uploadAvatar accepts a multipart form with a "file" part.
func (h *Handler) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	setAvatarCORSHeaders(w)

	upload, err := readAvatar(w, r, service.AvatarUploadConfig.MaxSize)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	userID, _ := utils.GetUserIDFromContext(r.Context())
	url, err := h.services.UploadService.UploadAvatar(r.Context(), userID, upload)
	if err != nil {
		respondError(w, r, err, nil)
		return
	}

	utils.WriteJSON(w, models.AvatarResponse{URL: url, Message: app.MsgAvatarUploaded}, http.StatusOK)
}

// readAvatar reads the "file" part. At most maxSize+1 bytes of content are
// kept so an oversized file is still reported by its size.
func readAvatar(w http.ResponseWriter, r *http.Request, maxSize int64) (models.AvatarUpload, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	file, header, err := r.FormFile("file")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return models.AvatarUpload{}, autherr.New(autherr.CodeUploadError,
			fmt.Sprintf("File size exceeds maximum allowed size of %dMB", maxSize>>20))
	}
	if err != nil {
		return models.AvatarUpload{}, fmt.Errorf("%w: %w", ErrNoFileProvided, err)
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return models.AvatarUpload{}, err
	}

	return models.AvatarUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Content:     content,
	}, nil
}
