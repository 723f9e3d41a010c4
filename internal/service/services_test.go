package service

import (
	"context"
	"errors"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/mock"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/tokens"
	"github.com/Rhysmalcolm13/agentity/internal/validators"
	"github.com/Rhysmalcolm13/agentity/models"
)

const testPassword = "Passw0rdOk"

var (
	verifyLinkRe = regexp.MustCompile(`verify\?token=([A-Za-z0-9_-]+)`)
	resetLinkRe  = regexp.MustCompile(`/reset-password/([A-Za-z0-9_-]+)`)
)

// mailbox records every message handed to the mocked sender.
type mailbox struct {
	mu    sync.Mutex
	mails []models.Email
}

func (m *mailbox) add(e models.Email) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.mails = append(m.mails, e)
}

func (m *mailbox) sentTo(to string) []models.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Email
	for _, e := range m.mails {
		if e.To == to {
			out = append(out, e)
		}
	}
	return out
}

// token extracts the token from the latest link matching re sent to `to`.
func (m *mailbox) token(t *testing.T, to string, re *regexp.Regexp) string {
	t.Helper()
	mails := m.sentTo(to)
	for i := len(mails) - 1; i >= 0; i-- {
		if match := re.FindStringSubmatch(mails[i].HTML); match != nil {
			return match[1]
		}
	}
	t.Fatalf("no link matching %s sent to %s", re, to)
	return ""
}

type testEnv struct {
	svc      *Services
	storages *store.Storages
	mail     *mailbox
	avatars  *mock.MockAvatarStorage
	github   *mock.MockOAuthProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctrl := gomock.NewController(t)

	storages, err := store.NewStorages(context.Background(), config.DB{
		Driver: config.DriverSQLite,
		DSN:    "file:" + t.TempDir() + "/agentity.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000",
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	box := &mailbox{}
	sender := mock.NewMockEmailSender(ctrl)
	sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, e models.Email) error {
		box.add(e)
		return nil
	}).AnyTimes()

	github := mock.NewMockOAuthProvider(ctrl)
	github.EXPECT().AuthCodeURL(gomock.Any()).DoAndReturn(func(state string) string {
		return "https://github.test/login/oauth/authorize?state=" + url.QueryEscape(state)
	}).AnyTimes()

	avatars := mock.NewMockAvatarStorage(ctrl)

	cfg := &config.StructuredConfig{
		App: config.App{Version: "1.0.0", BaseURL: "https://agentity.test/"},
		Auth: config.Auth{
			TokenHashKey: "token-hash-key",
			StateSignKey: "state-sign-key",
			StateIssuer:  "agentity",
			BcryptCost:   bcrypt.MinCost,
		},
	}
	adapters := &adapter.Adapters{
		Email:   sender,
		Avatars: avatars,
		OAuth:   map[models.OAuthProvider]adapter.OAuthProvider{models.ProviderGitHub: github},
	}

	svc, err := NewServices(storages, adapters, cfg, logger.Nop())
	require.NoError(t, err)

	return &testEnv{svc: svc, storages: storages, mail: box, avatars: avatars, github: github}
}

// registerVerified registers email and follows the verification link.
func (e *testEnv) registerVerified(t *testing.T, name, email string) models.User {
	t.Helper()
	ctx := context.Background()

	u, err := e.svc.AuthService.Register(ctx, models.RegisterRequest{Name: name, Email: email, Password: testPassword})
	require.NoError(t, err)
	require.NoError(t, e.svc.AuthService.VerifyEmail(ctx, e.mail.token(t, u.Email, verifyLinkRe)))
	return u
}

// ── Register / VerifyEmail ───────────────────────────────────────────────

func TestAuthService_RegisterVerifySignIn(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService

	u, err := auth.Register(ctx, models.RegisterRequest{Name: " Jane ", Email: "Jane@Example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, "Jane", u.Name)
	assert.False(t, u.IsVerified())

	mails := env.mail.sentTo("jane@example.com")
	require.Len(t, mails, 2)
	assert.Equal(t, "Verify your email address", mails[0].Subject)
	assert.Contains(t, mails[0].HTML, "https://agentity.test/api/auth/verify?token=")
	assert.Equal(t, "Welcome to Agentity!", mails[1].Subject)

	_, _, err = auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: testPassword})
	assert.ErrorIs(t, err, autherr.ErrAccountDisabled)

	token := env.mail.token(t, "jane@example.com", verifyLinkRe)
	require.NoError(t, auth.VerifyEmail(ctx, token))
	assert.ErrorIs(t, auth.VerifyEmail(ctx, token), tokens.ErrTokenInvalid)

	user, s, err := auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "JANE@example.com", Password: testPassword})
	require.NoError(t, err)
	assert.Equal(t, u.ID, user.ID)
	assert.NotEmpty(t, s.Token)
	assert.False(t, s.RememberMe)

	got, gotUser, err := auth.Authenticate(ctx, s.Token)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)
	assert.True(t, gotUser.IsVerified())
}

func TestAuthService_RegisterErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService

	_, err := auth.Register(ctx, models.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: testPassword})
	require.NoError(t, err)

	tests := []struct {
		name    string
		req     models.RegisterRequest
		wantErr error
	}{
		{
			name:    "duplicate email in different case",
			req:     models.RegisterRequest{Name: "Other", Email: "JANE@example.com", Password: testPassword},
			wantErr: ErrUserAlreadyExists,
		},
		{
			name:    "weak password",
			req:     models.RegisterRequest{Name: "Bob", Email: "bob@example.com", Password: "password"},
			wantErr: validators.ErrValidation,
		},
		{
			name:    "invalid email",
			req:     models.RegisterRequest{Name: "Bob", Email: "bob", Password: testPassword},
			wantErr: validators.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

// ── Credentials and lockout ──────────────────────────────────────────────

func TestAuthService_CredentialLockout(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService
	env.registerVerified(t, "Jane", "jane@example.com")

	wrong := models.SignInRequest{Email: "jane@example.com", Password: "Wr0ngPassword"}
	for i := 0; i < 4; i++ {
		_, _, err := auth.SignInWithCredentials(ctx, wrong)
		require.ErrorIs(t, err, autherr.ErrInvalidCredentials, "attempt %d", i+1)
	}

	_, _, err := auth.SignInWithCredentials(ctx, wrong)
	require.ErrorIs(t, err, autherr.ErrAccountLocked)
	e, ok := autherr.As(err)
	require.True(t, ok)
	assert.Contains(t, e.Data, "remainingTime")

	_, _, err = auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: testPassword})
	assert.ErrorIs(t, err, autherr.ErrAccountLocked)
}

func TestAuthService_SignInUnknownUser(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.svc.AuthService.SignInWithCredentials(context.Background(),
		models.SignInRequest{Email: "ghost@example.com", Password: testPassword})
	assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)
}

func TestAuthService_SuccessfulSignInResetsAttempts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService
	env.registerVerified(t, "Jane", "jane@example.com")

	for i := 0; i < 4; i++ {
		_, _, _ = auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: "Wr0ngPassword"})
	}
	_, _, err := auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: testPassword})
	require.NoError(t, err)

	state, err := env.storages.UserRepository.GetLockoutState(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Zero(t, state.FailedAttempts)
}

func TestAuthService_ConcurrentFailuresAreAllCounted(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService
	env.registerVerified(t, "Jane", "jane@example.com")

	const failures = 4
	var wg sync.WaitGroup
	for i := 0; i < failures; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: "Wr0ngPassword"})
			assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)
		}()
	}
	wg.Wait()

	state, err := env.storages.UserRepository.GetLockoutState(ctx, "jane@example.com")
	require.NoError(t, err)
	assert.Equal(t, failures, state.FailedAttempts)
	assert.Nil(t, state.LockedUntil)
}

// ── Sessions ─────────────────────────────────────────────────────────────

func TestAuthService_SignOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService
	env.registerVerified(t, "Jane", "jane@example.com")

	req := models.SignInRequest{Email: "jane@example.com", Password: testPassword, RememberMe: true}
	_, first, err := auth.SignInWithCredentials(ctx, req)
	require.NoError(t, err)
	assert.True(t, first.RememberMe)
	_, second, err := auth.SignInWithCredentials(ctx, req)
	require.NoError(t, err)

	require.NoError(t, auth.SignOut(ctx, first.Token))
	_, _, err = auth.Authenticate(ctx, first.Token)
	assert.ErrorIs(t, err, autherr.ErrSessionInvalid)

	n, err := auth.SignOutEverywhere(ctx, second.UserID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, _, err = auth.Authenticate(ctx, second.Token)
	assert.ErrorIs(t, err, autherr.ErrSessionInvalid)
}

// ── Password reset ───────────────────────────────────────────────────────

func TestAuthService_PasswordReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService
	env.registerVerified(t, "Jane", "jane@example.com")

	_, s, err := auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: testPassword})
	require.NoError(t, err)

	require.NoError(t, auth.RequestPasswordReset(ctx, models.ResetPasswordRequest{Email: "Jane@example.com"}))
	token := env.mail.token(t, "jane@example.com", resetLinkRe)

	err = auth.ResetPassword(ctx, models.ResetPasswordVerifyRequest{Token: token, Password: "weak"})
	require.ErrorIs(t, err, validators.ErrValidation)

	const newPassword = "N3wPassword"
	require.NoError(t, auth.ResetPassword(ctx, models.ResetPasswordVerifyRequest{Token: token, Password: newPassword}))

	_, _, err = auth.Authenticate(ctx, s.Token)
	assert.ErrorIs(t, err, autherr.ErrSessionInvalid, "reset revokes existing sessions")

	err = auth.ResetPassword(ctx, models.ResetPasswordVerifyRequest{Token: token, Password: newPassword})
	assert.ErrorIs(t, err, tokens.ErrTokenInvalid)

	_, _, err = auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: testPassword})
	assert.ErrorIs(t, err, autherr.ErrInvalidCredentials)
	_, _, err = auth.SignInWithCredentials(ctx, models.SignInRequest{Email: "jane@example.com", Password: newPassword})
	assert.NoError(t, err)
}

func TestAuthService_ConcurrentResetRedeemsTokenOnce(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	auth := env.svc.AuthService
	env.registerVerified(t, "Jane", "jane@example.com")

	require.NoError(t, auth.RequestPasswordReset(ctx, models.ResetPasswordRequest{Email: "jane@example.com"}))
	token := env.mail.token(t, "jane@example.com", resetLinkRe)

	const callers = 6
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		invalid   int
	)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := auth.ResetPassword(ctx, models.ResetPasswordVerifyRequest{Token: token, Password: "N3wPassword"})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, tokens.ErrTokenInvalid):
				invalid++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, callers-1, invalid)
}

func TestAuthService_PasswordResetUnknownEmail(t *testing.T) {
	env := newTestEnv(t)

	err := env.svc.AuthService.RequestPasswordReset(context.Background(), models.ResetPasswordRequest{Email: "ghost@example.com"})
	require.NoError(t, err)
	assert.Empty(t, env.mail.sentTo("ghost@example.com"))
}

func TestAuthService_VerificationTokenRejectedForReset(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	u, err := env.svc.AuthService.Register(ctx, models.RegisterRequest{Name: "Jane", Email: "jane@example.com", Password: testPassword})
	require.NoError(t, err)
	token := env.mail.token(t, u.Email, verifyLinkRe)

	err = env.svc.AuthService.ResetPassword(ctx, models.ResetPasswordVerifyRequest{Token: token, Password: "N3wPassword"})
	assert.ErrorIs(t, err, tokens.ErrTokenInvalid)

	assert.NoError(t, env.svc.AuthService.VerifyEmail(ctx, token), "a token of another purpose stays usable")
}

// ── OAuth ────────────────────────────────────────────────────────────────

func oauthState(t *testing.T, env *testEnv, callbackURL string, rememberMe bool) string {
	t.Helper()
	raw, err := env.svc.AuthService.OAuthAuthorizeURL(context.Background(), models.ProviderGitHub, callbackURL, rememberMe)
	require.NoError(t, err)
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func TestAuthService_OAuthNewUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	profile := models.OAuthProfile{ID: "42", Email: "Octo@Example.com", Name: "Octo Cat", Provider: models.ProviderGitHub}
	env.github.EXPECT().Exchange(gomock.Any(), "code-1").Return(profile, nil).Times(2)

	state := oauthState(t, env, "/settings", true)
	res, err := env.svc.AuthService.SignInWithOAuth(ctx, models.ProviderGitHub, "code-1", state, "")
	require.NoError(t, err)
	assert.Equal(t, "octo@example.com", res.User.Email)
	assert.True(t, res.User.IsVerified())
	assert.True(t, res.User.ProfileCompleted)
	assert.Equal(t, "/settings", res.CallbackURL)
	assert.True(t, res.Session.RememberMe)

	again, err := env.svc.AuthService.SignInWithOAuth(ctx, models.ProviderGitHub, "code-1", state, "")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, again.User.ID, "linked account signs the same user in")
}

func TestAuthService_OAuthEmailCollision(t *testing.T) {
	env := newTestEnv(t)
	env.registerVerified(t, "Jane", "jane@example.com")

	env.github.EXPECT().Exchange(gomock.Any(), "code").
		Return(models.OAuthProfile{ID: "7", Email: "jane@example.com", Provider: models.ProviderGitHub}, nil)

	_, err := env.svc.AuthService.SignInWithOAuth(context.Background(), models.ProviderGitHub, "code", oauthState(t, env, "", false), "")
	assert.ErrorIs(t, err, autherr.ErrAccountExists)
}

func TestAuthService_OAuthCallbackErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	state := oauthState(t, env, "https://evil.example/", false)

	tests := []struct {
		name          string
		provider      models.OAuthProvider
		code          string
		state         string
		providerError string
		wantErr       error
	}{
		{name: "access denied", provider: models.ProviderGitHub, providerError: "access_denied", wantErr: autherr.ErrOAuthAccessDenied},
		{name: "other provider error", provider: models.ProviderGitHub, providerError: "server_error", wantErr: autherr.ErrOAuthProviderError},
		{name: "unsupported provider", provider: models.ProviderGoogle, code: "c", state: state, wantErr: ErrProviderNotSupported},
		{name: "tampered state", provider: models.ProviderGitHub, code: "c", state: state + "x", wantErr: autherr.ErrOAuthCallbackError},
		{name: "missing code", provider: models.ProviderGitHub, state: state, wantErr: autherr.ErrOAuthCallbackError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.svc.AuthService.SignInWithOAuth(ctx, tt.provider, tt.code, tt.state, tt.providerError)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestAuthService_OAuthExchangeFailure(t *testing.T) {
	env := newTestEnv(t)
	env.github.EXPECT().Exchange(gomock.Any(), "bad").Return(models.OAuthProfile{}, adapter.ErrOAuthExchange)

	_, err := env.svc.AuthService.SignInWithOAuth(context.Background(), models.ProviderGitHub, "bad", oauthState(t, env, "", false), "")
	assert.ErrorIs(t, err, autherr.ErrOAuthProviderError)
}

func TestSafeCallbackURL(t *testing.T) {
	tests := map[string]string{
		"":                     defaultCallbackURL,
		"/settings":            "/settings",
		"//evil.example":       defaultCallbackURL,
		"https://evil.example": defaultCallbackURL,
		`/\evil.example`:       defaultCallbackURL,
	}
	for in, want := range tests {
		assert.Equal(t, want, safeCallbackURL(in), "input %q", in)
	}
}

func TestIsProfileComplete(t *testing.T) {
	assert.True(t, isProfileComplete("Jane", "jane@example.com"))
	assert.False(t, isProfileComplete("  ", "jane@example.com"))
	assert.False(t, isProfileComplete("Jane", strings.Repeat(" ", 2)))
}
