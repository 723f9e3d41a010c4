package service

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
)

// UploadConfig bounds accepted uploads.
type UploadConfig struct {
	MaxSize      int64
	AllowedTypes []string
}

// AvatarUploadConfig accepts JPEG, PNG and WebP images up to 5 MB.
var AvatarUploadConfig = UploadConfig{
	MaxSize:      5 << 20,
	AllowedTypes: []string{"image/jpeg", "image/png", "image/webp"},
}

var extensionsByType = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type uploadService struct {
	storage adapter.AvatarStorage
	profile ProfileService
	cfg     UploadConfig
	now     func() time.Time
}

func NewUploadService(storage adapter.AvatarStorage, profile ProfileService) UploadService {
	return &uploadService{storage: storage, profile: profile, cfg: AvatarUploadConfig, now: time.Now}
}

// UploadAvatar validates upload, stores it under
// "<userID>-<unix ms>-<random>.<ext>" and sets it as the user's image.
func (s *uploadService) UploadAvatar(ctx context.Context, userID string, upload models.AvatarUpload) (string, error) {
	if err := s.validate(upload); err != nil {
		return "", err
	}

	upload.ContentType = http.DetectContentType(upload.Content)
	key, err := s.fileKey(userID, upload.ContentType)
	if err != nil {
		return "", err
	}

	url, err := s.storage.Save(ctx, key, upload)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", userID).Msg("avatar storage failed")
		return "", autherr.New(autherr.CodeUploadError, "Failed to upload avatar")
	}

	if _, err = s.profile.UpdateProfile(ctx, userID, models.ProfileData{Image: &url}); err != nil {
		return "", fmt.Errorf("error saving avatar url: %w", err)
	}
	return url, nil
}

// validate checks the declared size and type, then sniffs the content so a
// renamed file cannot pass as an image.
func (s *uploadService) validate(upload models.AvatarUpload) error {
	size := upload.Size
	if int64(len(upload.Content)) > size {
		size = int64(len(upload.Content))
	}
	if size > s.cfg.MaxSize {
		return autherr.New(autherr.CodeUploadError,
			fmt.Sprintf("File size exceeds maximum allowed size of %dMB", s.cfg.MaxSize>>20))
	}

	if !slices.Contains(s.cfg.AllowedTypes, upload.ContentType) {
		return autherr.New(autherr.CodeUploadError,
			fmt.Sprintf("File type %s is not allowed. Allowed types: %s", upload.ContentType, strings.Join(s.cfg.AllowedTypes, ", ")))
	}

	if detected := http.DetectContentType(upload.Content); !slices.Contains(s.cfg.AllowedTypes, detected) {
		return autherr.New(autherr.CodeUploadError, "File content does not match an allowed image type")
	}
	return nil
}

// fileKey names the stored object. The extension follows the sniffed content
// type; the client's file name is never used.
func (s *uploadService) fileKey(userID, detected string) (string, error) {
	ext, ok := extensionsByType[detected]
	if !ok {
		return "", autherr.New(autherr.CodeUploadError, "File content does not match an allowed image type")
	}

	random, err := utils.RandomHex(6)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("%s-%d-%s.%s", userID, s.now().UnixMilli(), random, ext), nil
}
