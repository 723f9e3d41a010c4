package service

import (
	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/lockout"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/session"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/tokens"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
)

type Services struct {
	AuthService     AuthService
	ProfileService  ProfileService
	SettingsService SettingsService
	UploadService   UploadService
	ContactService  ContactService
	BlogService     BlogService
	EmailService    EmailService
	AppInfoService  AppInfoService

	// Sessions and Tokens are exposed for the expiry sweep.
	Sessions *session.Manager
	Tokens   *tokens.Issuer
}

func NewServices(storages *store.Storages, adapters *adapter.Adapters, cfg *config.StructuredConfig, log *logger.Logger) (*Services, error) {
	appInfo, err := NewAppInfoService(cfg.App)
	if err != nil {
		return nil, err
	}

	validator := validators.NewRequestValidator()
	tracker := lockout.NewTracker(storages.UserRepository, storages.Transactor, lockout.DefaultConfig)
	sessions := session.NewManager(storages.SessionRepository, cfg.Auth.TokenHashKey)
	issuer := tokens.NewIssuer(storages.VerificationTokenRepository, storages.Transactor, cfg.Auth.TokenHashKey)
	email := NewEmailService(adapters.Email, cfg.App.BaseURL)

	auth := newAuthService(authDeps{
		storages:    storages,
		credentials: newCredentialAuthenticator(storages.UserRepository, tracker),
		sessions:    sessions,
		tokens:      issuer,
		email:       email,
		providers:   adapters.OAuth,
	}, cfg.Auth)

	changer := &emailChanger{users: storages.UserRepository, tokens: issuer, email: email}
	profile := newProfileService(storages.UserRepository, changer)

	for name := range adapters.OAuth {
		log.Info().Str("provider", string(name)).Msg("oauth provider enabled")
	}

	return &Services{
		AuthService:     NewAuthValidationService(validator).Wrap(auth),
		ProfileService:  profile,
		SettingsService: newSettingsService(storages.UserRepository, changer, validator, auth.bcryptCost),
		UploadService:   NewUploadService(adapters.Avatars, profile),
		ContactService:  NewContactService(storages.ContactRepository, validator),
		BlogService:     NewBlogService(storages.BlogRepository, cfg.App.BaseURL),
		EmailService:    email,
		AppInfoService:  appInfo,
		Sessions:        sessions,
		Tokens:          issuer,
	}, nil
}
