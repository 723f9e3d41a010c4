// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/autherr"
	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/models"
)

// ── service mocks ────────────────────────────────────────────────────────

// mockAuthService implements service.AuthService. Each method field can be
// overridden per test case.
type mockAuthService struct {
	registerFn          func(ctx context.Context, req models.RegisterRequest) (models.User, error)
	signInFn            func(ctx context.Context, req models.SignInRequest) (models.User, models.Session, error)
	authorizeURLFn      func(ctx context.Context, provider models.OAuthProvider, callbackURL string, rememberMe bool) (string, error)
	signInWithOAuthFn   func(ctx context.Context, provider models.OAuthProvider, code, state, providerError string) (service.OAuthSignIn, error)
	signOutFn           func(ctx context.Context, token string) error
	signOutEverywhereFn func(ctx context.Context, userID string) (int64, error)
	authenticateFn      func(ctx context.Context, token string) (models.Session, models.User, error)
	verifyEmailFn       func(ctx context.Context, token string) error
	requestResetFn      func(ctx context.Context, req models.ResetPasswordRequest) error
	resetPasswordFn     func(ctx context.Context, req models.ResetPasswordVerifyRequest) error
}

func (m *mockAuthService) Register(ctx context.Context, req models.RegisterRequest) (models.User, error) {
	return m.registerFn(ctx, req)
}

func (m *mockAuthService) SignInWithCredentials(ctx context.Context, req models.SignInRequest) (models.User, models.Session, error) {
	return m.signInFn(ctx, req)
}

func (m *mockAuthService) OAuthAuthorizeURL(ctx context.Context, provider models.OAuthProvider, callbackURL string, rememberMe bool) (string, error) {
	return m.authorizeURLFn(ctx, provider, callbackURL, rememberMe)
}

func (m *mockAuthService) SignInWithOAuth(ctx context.Context, provider models.OAuthProvider, code, state, providerError string) (service.OAuthSignIn, error) {
	return m.signInWithOAuthFn(ctx, provider, code, state, providerError)
}

func (m *mockAuthService) SignOut(ctx context.Context, token string) error {
	return m.signOutFn(ctx, token)
}

func (m *mockAuthService) SignOutEverywhere(ctx context.Context, userID string) (int64, error) {
	return m.signOutEverywhereFn(ctx, userID)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (models.Session, models.User, error) {
	return m.authenticateFn(ctx, token)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, token string) error {
	return m.verifyEmailFn(ctx, token)
}

func (m *mockAuthService) RequestPasswordReset(ctx context.Context, req models.ResetPasswordRequest) error {
	return m.requestResetFn(ctx, req)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, req models.ResetPasswordVerifyRequest) error {
	return m.resetPasswordFn(ctx, req)
}

type mockProfileService struct {
	updateFn         func(ctx context.Context, userID string, data models.ProfileData) (models.SettingsResult, error)
	progressFn       func(ctx context.Context, userID string) (models.ProfileProgress, error)
	ensureCompleteFn func(ctx context.Context, userID string) error
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, userID string, data models.ProfileData) (models.SettingsResult, error) {
	return m.updateFn(ctx, userID, data)
}

func (m *mockProfileService) GetProgress(ctx context.Context, userID string) (models.ProfileProgress, error) {
	return m.progressFn(ctx, userID)
}

func (m *mockProfileService) EnsureComplete(ctx context.Context, userID string) error {
	return m.ensureCompleteFn(ctx, userID)
}

type mockSettingsService struct {
	updateFn func(ctx context.Context, userID string, req models.SettingsRequest) (models.SettingsResult, error)
}

func (m *mockSettingsService) UpdateSettings(ctx context.Context, userID string, req models.SettingsRequest) (models.SettingsResult, error) {
	return m.updateFn(ctx, userID, req)
}

type mockUploadService struct {
	uploadFn func(ctx context.Context, userID string, upload models.AvatarUpload) (string, error)
}

func (m *mockUploadService) UploadAvatar(ctx context.Context, userID string, upload models.AvatarUpload) (string, error) {
	return m.uploadFn(ctx, userID, upload)
}

type mockContactService struct {
	submitFn func(ctx context.Context, req models.ContactRequest) error
}

func (m *mockContactService) Submit(ctx context.Context, req models.ContactRequest) error {
	return m.submitFn(ctx, req)
}

type mockBlogService struct {
	listFn func(ctx context.Context, query models.BlogQuery) (models.BlogPage, error)
	rssFn  func(ctx context.Context) ([]byte, error)
}

func (m *mockBlogService) ListPosts(ctx context.Context, query models.BlogQuery) (models.BlogPage, error) {
	return m.listFn(ctx, query)
}

func (m *mockBlogService) RSSFeed(ctx context.Context) ([]byte, error) {
	return m.rssFn(ctx)
}

type mockAppInfoService struct {
	version string
}

func (m *mockAppInfoService) GetAppVersion(context.Context) string {
	return m.version
}

// ── helpers ──────────────────────────────────────────────────────────────

const (
	testCookieName   = "agentity.session-token"
	testSessionToken = "session-token"
)

var testUser = models.User{
	ID:               "user-1",
	Name:             "Jane",
	Email:            "jane@example.com",
	ProfileCompleted: true,
}

func testConfig() *config.StructuredConfig {
	return &config.StructuredConfig{
		Auth:   config.Auth{CookieName: testCookieName},
		Server: config.Server{RequestTimeout: 5 * time.Second},
	}
}

// validAuth accepts testSessionToken and rejects everything else.
func validAuth() *mockAuthService {
	return &mockAuthService{
		authenticateFn: func(_ context.Context, token string) (models.Session, models.User, error) {
			if token != testSessionToken {
				return models.Session{}, models.User{}, autherr.ErrSessionInvalid
			}
			return models.Session{
				Token:     token,
				UserID:    testUser.ID,
				ExpiresAt: time.Now().Add(time.Hour).UTC(),
			}, testUser, nil
		},
	}
}

// newTestHandler builds a Handler over svcs with an in-memory limiter.
// Nil services are replaced by defaults that accept the test session.
func newTestHandler(t *testing.T, svcs *service.Services) *Handler {
	t.Helper()
	if svcs.AuthService == nil {
		svcs.AuthService = validAuth()
	}
	if svcs.AppInfoService == nil {
		svcs.AppInfoService = &mockAppInfoService{version: "test"}
	}
	return NewHandler(svcs, ratelimit.NewMemoryLimiter(), testConfig(), logger.Nop())
}

// serve sends a request through the full router.
func serve(h *Handler, method, target string, body io.Reader, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	h.Init().ServeHTTP(rec, req)
	return rec
}

func withSessionCookie(r *http.Request) {
	r.AddCookie(&http.Cookie{Name: testCookieName, Value: testSessionToken})
}

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

// ── NewHandler ───────────────────────────────────────────────────────────

func TestNewHandler(t *testing.T) {
	svcs := &service.Services{}
	cfg := testConfig()
	cfg.Auth.SecureCookies = true
	cfg.Storage.Avatars.Dir = "uploads"

	h := NewHandler(svcs, ratelimit.NewMemoryLimiter(), cfg, logger.Nop())

	require.NotNil(t, h)
	assert.Same(t, svcs, h.services)
	assert.Equal(t, cookieConfig{name: testCookieName, secure: true}, h.cookie)
	assert.Equal(t, "uploads", h.uploadsDir)

	cfg.Storage.Avatars.S3.Bucket = "avatars"
	h = NewHandler(svcs, ratelimit.NewMemoryLimiter(), cfg, logger.Nop())
	assert.Empty(t, h.uploadsDir, "S3 avatars are not served locally")
}

func TestSessionCookies(t *testing.T) {
	h := newTestHandler(t, &service.Services{})
	expires := time.Date(2026, time.May, 1, 0, 0, 0, 0, time.UTC)

	rec := httptest.NewRecorder()
	h.setSessionCookie(rec, "tok", expires)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, testCookieName, cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
	assert.True(t, expires.Equal(cookies[0].Expires))

	rec = httptest.NewRecorder()
	h.clearSessionCookie(rec)
	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Empty(t, cookies[0].Value)
	assert.Equal(t, -1, cookies[0].MaxAge)
}
