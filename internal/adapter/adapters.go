package adapter

import (
	"context"
	"strings"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/models"
)

// Adapters bundles the external collaborators used by the service layer.
type Adapters struct {
	Email   EmailSender
	Avatars AvatarStorage
	OAuth   map[models.OAuthProvider]OAuthProvider
}

// NewAdapters selects the implementation of every adapter from cfg:
//   - Email: Resend when an API key is set, otherwise the log sender.
//   - Avatars: S3 when a bucket is set, otherwise the local directory.
//   - OAuth: every provider with both a client ID and a secret.
func NewAdapters(ctx context.Context, cfg *config.StructuredConfig, log *logger.Logger) (*Adapters, error) {
	a := &Adapters{
		OAuth: NewOAuthProviders(cfg.OAuth, cfg.App.BaseURL),
	}

	if cfg.Email.ResendAPIKey != "" {
		a.Email = NewResendSender(cfg.Email)
	} else {
		log.Warn().Msg("EMAIL_RESEND_API_KEY is empty, e-mails will be logged instead of sent")
		a.Email = NewLogSender(cfg.Email, log)
	}

	if cfg.Storage.Avatars.S3.Bucket != "" {
		s3Store, err := NewS3AvatarStorage(ctx, cfg.Storage.Avatars.S3)
		if err != nil {
			return nil, err
		}
		a.Avatars = s3Store
	} else {
		a.Avatars = NewLocalAvatarStorage(cfg.Storage.Avatars.Dir)
	}

	return a, nil
}

// NewOAuthProviders returns the enabled providers keyed by name. Redirect
// URLs point to /api/auth/callback/{provider} under baseURL.
func NewOAuthProviders(cfg config.OAuth, baseURL string) map[models.OAuthProvider]OAuthProvider {
	providers := make(map[models.OAuthProvider]OAuthProvider, 2)
	if cfg.GitHub.Enabled() {
		providers[models.ProviderGitHub] = NewGitHubProvider(cfg.GitHub, CallbackURL(baseURL, models.ProviderGitHub))
	}
	if cfg.Google.Enabled() {
		providers[models.ProviderGoogle] = NewGoogleProvider(cfg.Google, CallbackURL(baseURL, models.ProviderGoogle))
	}
	return providers
}

// CallbackURL is the OAuth redirect URL registered for provider.
func CallbackURL(baseURL string, provider models.OAuthProvider) string {
	return strings.TrimRight(baseURL, "/") + "/api/auth/callback/" + string(provider)
}
