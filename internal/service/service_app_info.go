package service

import (
	"context"

	"github.com/Rhysmalcolm13/agentity/internal/config"
)

type appInfoService struct {
	appVersion string
}

func NewAppInfoService(cfg config.App) (AppInfoService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &appInfoService{appVersion: cfg.Version}, nil
}

func (s *appInfoService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}
