package adapter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
)

// UploadsPrefix is the URL path under which locally stored avatars are
// served.
const UploadsPrefix = "/uploads/"

type localAvatarStorage struct {
	dir string
}

// NewLocalAvatarStorage returns an [AvatarStorage] writing files into dir.
// The directory is created on first use.
func NewLocalAvatarStorage(dir string) AvatarStorage {
	return &localAvatarStorage{dir: dir}
}

func (s *localAvatarStorage) Save(ctx context.Context, key string, upload models.AvatarUpload) (string, error) {
	name := filepath.Base(key)
	if name == "." || name == string(filepath.Separator) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid avatar key %q", key)
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("create avatar dir: %w", err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, upload.Content, 0o644); err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "*localAvatarStorage.Save").Str("path", path).Msg("writing avatar failed")
		return "", fmt.Errorf("write avatar: %w", err)
	}

	return UploadsPrefix + name, nil
}
