package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	if err := mergo.Merge(config, defaultConfig()); err != nil {
		return nil, fmt.Errorf("error applying default configs: %w", err)
	}

	if err := config.validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	flags := ParseFlags()

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath != "" {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

// defaultConfig returns the values used for every field no source set.
// Secrets have no defaults.
func defaultConfig() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			Version:  "dev",
			BaseURL:  "http://localhost:8080",
			LogLevel: "debug",
		},
		Auth: Auth{
			StateIssuer: "agentity",
			CookieName:  "agentity.session-token",
			BcryptCost:  10,
		},
		Email: Email{
			ResendURL: "https://api.resend.com",
			From:      "Agentity <onboarding@resend.dev>",
			Timeout:   10 * time.Second,
		},
		Storage: Storage{
			DB: DB{
				Driver: DriverSQLite,
				DSN:    "file:agentity.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000",
			},
			Avatars: Avatars{
				Dir: "uploads",
			},
		},
		RateLimit: RateLimit{
			Backend: RateLimitMemory,
			Redis: Redis{
				Prefix: "agentity:ratelimit:",
			},
		},
		Server: Server{
			HTTPAddress:    "localhost:8080",
			RequestTimeout: 30 * time.Second,
		},
		Workers: Workers{
			GCInterval: time.Hour,
		},
	}
}
