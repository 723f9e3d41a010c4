package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/session"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/tokens"
	"github.com/Rhysmalcolm13/agentity/internal/utils"
	"github.com/Rhysmalcolm13/agentity/models"
	"golang.org/x/crypto/bcrypt"
)

// oauthStateTTL bounds the time a user may spend on the provider consent page.
const oauthStateTTL = 10 * time.Minute

// defaultCallbackURL is where users land after an OAuth sign-in without an
// explicit callback.
const defaultCallbackURL = "/dashboard"

// authService is the concrete implementation of AuthService.
type authService struct {
	users    store.UserRepository
	accounts store.AccountRepository
	tx       store.Transactor

	credentials *credentialAuthenticator
	sessions    *session.Manager
	tokens      *tokens.Issuer
	email       EmailService
	providers   map[models.OAuthProvider]adapter.OAuthProvider

	ids          *utils.UUIDGenerator
	bcryptCost   int
	stateSignKey string
	stateIssuer  string
	now          func() time.Time
}

// authDeps carries the collaborators of authService.
type authDeps struct {
	storages    *store.Storages
	credentials *credentialAuthenticator
	sessions    *session.Manager
	tokens      *tokens.Issuer
	email       EmailService
	providers   map[models.OAuthProvider]adapter.OAuthProvider
}

func newAuthService(deps authDeps, cfg config.Auth) *authService {
	cost := cfg.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &authService{
		users:        deps.storages.UserRepository,
		accounts:     deps.storages.AccountRepository,
		tx:           deps.storages.Transactor,
		credentials:  deps.credentials,
		sessions:     deps.sessions,
		tokens:       deps.tokens,
		email:        deps.email,
		providers:    deps.providers,
		ids:          utils.NewUUIDGenerator(),
		bcryptCost:   cost,
		stateSignKey: cfg.StateSignKey,
		stateIssuer:  cfg.StateIssuer,
		now:          time.Now,
	}
}

// Register creates an unverified account and e-mails a verification link
// and a welcome message. The user row and the verification token are
// written in one transaction; e-mail delivery failures are logged only.
func (a *authService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	log := logger.FromContext(ctx)

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		return models.User{}, fmt.Errorf("error hashing password: %w", err)
	}

	var (
		user  models.User
		token string
	)
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := a.users.CreateUser(ctx, models.User{
			ID:           a.ids.Generate(),
			Email:        req.Email,
			Name:         strings.TrimSpace(req.Name),
			PasswordHash: string(hash),
		})
		if errors.Is(err, store.ErrEmailAlreadyExists) {
			return ErrUserAlreadyExists
		}
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}

		token, err = a.tokens.IssueEmailVerification(ctx, created.Email)
		if err != nil {
			return fmt.Errorf("error issuing verification token: %w", err)
		}
		user = created
		return nil
	})
	if err != nil {
		return models.User{}, err
	}

	if err = a.email.SendVerificationEmail(ctx, user.Email, user.Name, token); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("verification email was not sent")
	}
	if err = a.email.SendWelcomeEmail(ctx, user.Email, user.Name); err != nil {
		log.Err(err).Str("user_id", user.ID).Msg("welcome email was not sent")
	}

	log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// SignInWithCredentials authenticates the request and starts a session.
// Accounts whose e-mail address is not verified yield ACCOUNT_DISABLED.
func (a *authService) SignInWithCredentials(ctx context.Context, req models.SignInRequest) (models.User, models.Session, error) {
	user, err := a.credentials.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return models.User{}, models.Session{}, err
	}
	if !user.IsVerified() {
		return models.User{}, models.Session{}, autherr.ErrAccountDisabled
	}

	s, err := a.sessions.Create(ctx, user.ID, session.Options{RememberMe: req.RememberMe})
	if err != nil {
		return models.User{}, models.Session{}, err
	}
	return user, s, nil
}

func (a *authService) OAuthAuthorizeURL(ctx context.Context, provider models.OAuthProvider, callbackURL string, rememberMe bool) (string, error) {
	p, ok := a.providers[provider]
	if !ok {
		return "", ErrProviderNotSupported
	}

	state, err := utils.GenerateOAuthState(a.stateIssuer, models.OAuthState{
		Provider:    provider,
		CallbackURL: safeCallbackURL(callbackURL),
		RememberMe:  rememberMe,
	}, oauthStateTTL, a.stateSignKey)
	if err != nil {
		return "", fmt.Errorf("error generating oauth state: %w", err)
	}
	return p.AuthCodeURL(state), nil
}

// SignInWithOAuth completes the authorization code flow.
//
// A provider identity already linked to a user signs that user in. An
// unlinked identity whose e-mail belongs to an existing user yields
// ACCOUNT_EXISTS. Otherwise a verified user is created and linked. Linked
// users whose address is unverified yield ACCOUNT_DISABLED.
func (a *authService) SignInWithOAuth(ctx context.Context, provider models.OAuthProvider, code, state, providerError string) (OAuthSignIn, error) {
	log := logger.FromContext(ctx)

	switch providerError {
	case "":
	case "access_denied":
		return OAuthSignIn{}, autherr.ErrOAuthAccessDenied
	default:
		log.Warn().Str("provider", string(provider)).Str("error", providerError).Msg("provider returned an error")
		return OAuthSignIn{}, autherr.ErrOAuthProviderError
	}

	p, ok := a.providers[provider]
	if !ok {
		return OAuthSignIn{}, ErrProviderNotSupported
	}

	st, err := utils.ParseOAuthState(state, a.stateSignKey, a.stateIssuer)
	if err != nil || st.Provider != provider || code == "" {
		log.Warn().Err(err).Str("provider", string(provider)).Msg("invalid oauth callback")
		return OAuthSignIn{}, autherr.ErrOAuthCallbackError
	}

	profile, err := p.Exchange(ctx, code)
	if err != nil {
		log.Err(err).Str("provider", string(provider)).Msg("oauth exchange failed")
		return OAuthSignIn{}, autherr.ErrOAuthProviderError
	}

	var user models.User
	err = a.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := a.resolveOAuthUser(ctx, profile)
		if err != nil {
			return err
		}
		if !u.IsVerified() {
			return autherr.ErrAccountDisabled
		}

		now := a.now().UTC()
		if err = a.users.UpdateUser(ctx, u.ID, models.UserUpdate{LastSignIn: &now}); err != nil {
			return fmt.Errorf("error recording sign in: %w", err)
		}
		u.LastSignIn = &now
		user = u
		return nil
	})
	if err != nil {
		return OAuthSignIn{}, err
	}

	s, err := a.sessions.Create(ctx, user.ID, session.Options{RememberMe: st.RememberMe})
	if err != nil {
		return OAuthSignIn{}, err
	}

	return OAuthSignIn{User: user, Session: s, CallbackURL: safeCallbackURL(st.CallbackURL)}, nil
}

func (a *authService) resolveOAuthUser(ctx context.Context, profile models.OAuthProfile) (models.User, error) {
	account, err := a.accounts.FindAccount(ctx, profile.Provider, profile.ID)
	switch {
	case err == nil:
		user, err := a.users.FindUserByID(ctx, account.UserID)
		if err != nil {
			return models.User{}, fmt.Errorf("error finding linked user: %w", err)
		}
		return user, nil
	case !errors.Is(err, store.ErrAccountNotFound):
		return models.User{}, fmt.Errorf("error finding account: %w", err)
	}

	if profile.Email == "" {
		return models.User{}, autherr.ErrOAuthProviderError
	}

	_, err = a.users.FindUserByEmail(ctx, profile.Email)
	if err == nil {
		return models.User{}, autherr.ErrAccountExists
	}
	if !errors.Is(err, store.ErrNoUserWasFound) {
		return models.User{}, fmt.Errorf("error finding user: %w", err)
	}

	now := a.now().UTC()
	user, err := a.users.CreateUser(ctx, models.User{
		ID:               a.ids.Generate(),
		Email:            profile.Email,
		Name:             profile.Name,
		Image:            profile.Image,
		EmailVerified:    &now,
		ProfileCompleted: isProfileComplete(profile.Name, profile.Email),
	})
	if errors.Is(err, store.ErrEmailAlreadyExists) {
		return models.User{}, autherr.ErrAccountExists
	}
	if err != nil {
		return models.User{}, fmt.Errorf("error creating user: %w", err)
	}

	err = a.accounts.LinkAccount(ctx, models.Account{
		UserID:            user.ID,
		Provider:          profile.Provider,
		ProviderAccountID: profile.ID,
		CreatedAt:         now,
	})
	if err != nil {
		return models.User{}, fmt.Errorf("error linking account: %w", err)
	}
	return user, nil
}

func (a *authService) SignOut(ctx context.Context, token string) error {
	return a.sessions.Delete(ctx, token)
}

func (a *authService) SignOutEverywhere(ctx context.Context, userID string) (int64, error) {
	return a.sessions.DeleteAllForUser(ctx, userID)
}

func (a *authService) Authenticate(ctx context.Context, token string) (models.Session, models.User, error) {
	s, err := a.sessions.Validate(ctx, token)
	if err != nil {
		return models.Session{}, models.User{}, err
	}

	user, err := a.users.FindUserByID(ctx, s.UserID)
	if errors.Is(err, store.ErrNoUserWasFound) {
		if err = a.sessions.Delete(ctx, token); err != nil {
			logger.FromContext(ctx).Err(err).Str("func", "*authService.Authenticate").Msg("error deleting orphaned session")
		}
		return models.Session{}, models.User{}, autherr.ErrSessionInvalid
	}
	if err != nil {
		return models.Session{}, models.User{}, fmt.Errorf("error finding session user: %w", err)
	}

	refreshed, err := a.sessions.Refresh(ctx, s)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("user_id", s.UserID).Msg("session refresh failed")
		return s, user, nil
	}
	return refreshed, user, nil
}

// VerifyEmail redeems an e-mail verification or e-mail change token.
// It returns tokens.ErrTokenInvalid or tokens.ErrTokenExpired on bad tokens.
func (a *authService) VerifyEmail(ctx context.Context, token string) error {
	_, err := a.tokens.Consume(ctx, token, func(ctx context.Context, t models.VerificationToken) error {
		now := a.now().UTC()
		switch t.Purpose {
		case models.PurposeEmailChange:
			err := a.users.UpdateUser(ctx, t.UserID, models.UserUpdate{Email: &t.Identifier, EmailVerified: &now})
			if errors.Is(err, store.ErrEmailAlreadyExists) {
				return ErrEmailInUse
			}
			if errors.Is(err, store.ErrNoUserWasFound) {
				return tokens.ErrTokenInvalid
			}
			return err
		default:
			err := a.users.UpdateUserByEmail(ctx, t.Identifier, models.UserUpdate{EmailVerified: &now})
			if errors.Is(err, store.ErrNoUserWasFound) {
				return tokens.ErrTokenInvalid
			}
			return err
		}
	}, models.PurposeEmailVerification, models.PurposeEmailChange)
	if err != nil {
		return err
	}
	return nil
}

// RequestPasswordReset issues a reset token and e-mails it. Unknown
// addresses are ignored so callers cannot tell whether an account exists.
func (a *authService) RequestPasswordReset(ctx context.Context, req models.ResetPasswordRequest) error {
	log := logger.FromContext(ctx)

	user, err := a.users.FindUserByEmail(ctx, req.Email)
	if errors.Is(err, store.ErrNoUserWasFound) {
		log.Debug().Msg("password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("error finding user: %w", err)
	}

	token, err := a.tokens.IssuePasswordReset(ctx, user.Email)
	if err != nil {
		return err
	}

	return a.email.SendPasswordResetEmail(ctx, user.Email, user.Name, token)
}

// ResetPassword redeems a reset token. The new password, the cleared lockout
// counters and the revocation of every session of the user are committed
// together with the token deletion.
func (a *authService) ResetPassword(ctx context.Context, req models.ResetPasswordVerifyRequest) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), a.bcryptCost)
	if err != nil {
		return fmt.Errorf("error hashing password: %w", err)
	}
	passwordHash := string(hash)

	_, err = a.tokens.Consume(ctx, req.Token, func(ctx context.Context, t models.VerificationToken) error {
		user, err := a.users.FindUserByEmail(ctx, t.Identifier)
		if errors.Is(err, store.ErrNoUserWasFound) {
			return tokens.ErrTokenInvalid
		}
		if err != nil {
			return err
		}

		if err = a.users.UpdateUser(ctx, user.ID, models.UserUpdate{PasswordHash: &passwordHash}); err != nil {
			return err
		}
		if err = a.users.SaveLockoutState(ctx, user.Email, models.LockoutState{}); err != nil {
			return err
		}
		n, err := a.sessions.DeleteAllForUser(ctx, user.ID)
		if err != nil {
			return err
		}

		logger.FromContext(ctx).Info().Str("user_id", user.ID).Int64("revoked_sessions", n).Msg("password reset")
		return nil
	}, models.PurposePasswordReset)
	return err
}

// safeCallbackURL keeps only same-site relative paths.
func safeCallbackURL(raw string) string {
	if raw == "" || !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, `\`) {
		return defaultCallbackURL
	}
	return raw
}

func isProfileComplete(name, email string) bool {
	return strings.TrimSpace(name) != "" && strings.TrimSpace(email) != ""
}
