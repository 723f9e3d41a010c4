// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// validate checks that the final merged [StructuredConfig] satisfies all
// application invariants before it is used at startup.
//
// Returns nil if the configuration is valid, or an error wrapping one of the
// ErrInvalid* sentinels otherwise.
func (cfg *StructuredConfig) validate() error {
	if cfg.Auth.TokenHashKey == "" || cfg.Auth.StateSignKey == "" {
		return fmt.Errorf("%w: token hash key and state sign key are required", ErrInvalidAuthConfigs)
	}
	if cfg.Auth.BcryptCost < bcrypt.MinCost || cfg.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("%w: bcrypt cost %d out of range", ErrInvalidAuthConfigs, cfg.Auth.BcryptCost)
	}

	if u, err := url.Parse(cfg.App.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base URL %q must be absolute", ErrInvalidAppConfigs, cfg.App.BaseURL)
	}

	if _, err := zerolog.ParseLevel(cfg.App.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAppConfigs, err)
	}

	switch cfg.Storage.DB.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("%w: unsupported driver %q", ErrInvalidStorageConfigs, cfg.Storage.DB.Driver)
	}
	if cfg.Storage.DB.DSN == "" {
		return fmt.Errorf("%w: empty DSN", ErrInvalidStorageConfigs)
	}
	if s3 := cfg.Storage.Avatars.S3; s3.Bucket != "" && s3.Region == "" {
		return fmt.Errorf("%w: S3 bucket requires a region", ErrInvalidStorageConfigs)
	}

	switch cfg.RateLimit.Backend {
	case RateLimitMemory:
	case RateLimitRedis:
		if cfg.RateLimit.Redis.Addr == "" {
			return fmt.Errorf("%w: redis backend requires an address", ErrInvalidRateLimitConfigs)
		}
	default:
		return fmt.Errorf("%w: unsupported backend %q", ErrInvalidRateLimitConfigs, cfg.RateLimit.Backend)
	}

	if cfg.Workers.GCInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
