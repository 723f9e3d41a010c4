package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/models"
)

var verifyTokenRe = regexp.MustCompile(`verify\?token=([A-Za-z0-9_-]+)`)

// outbox is an adapter.EmailSender that keeps every message.
type outbox struct {
	mu    sync.Mutex
	mails []models.Email
}

func (o *outbox) Send(_ context.Context, e models.Email) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.mails = append(o.mails, e)
	return nil
}

func (o *outbox) verifyToken(t *testing.T, to string) string {
	t.Helper()
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, e := range o.mails {
		if m := verifyTokenRe.FindStringSubmatch(e.HTML); e.To == to && m != nil {
			return m[1]
		}
	}
	t.Fatalf("no verification e-mail sent to %s", to)
	return ""
}

// newFlowServer wires the real services over a temporary sqlite database
// and local avatar storage.
func newFlowServer(t *testing.T) (*httptest.Server, *outbox) {
	t.Helper()
	ctx := context.Background()

	cfg := &config.StructuredConfig{
		App: config.App{Version: "1.0.0", BaseURL: "https://agentity.test"},
		Auth: config.Auth{
			TokenHashKey: "token-hash-key",
			StateSignKey: "state-sign-key",
			StateIssuer:  "agentity",
			CookieName:   testCookieName,
			BcryptCost:   bcrypt.MinCost,
		},
		Storage: config.Storage{
			DB: config.DB{
				Driver: config.DriverSQLite,
				DSN:    "file:" + t.TempDir() + "/agentity.db?_foreign_keys=on&_txlock=immediate&_busy_timeout=5000",
			},
			Avatars: config.Avatars{Dir: t.TempDir()},
		},
	}

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = storages.Close() })

	mail := &outbox{}
	adapters := &adapter.Adapters{
		Email:   mail,
		Avatars: adapter.NewLocalAvatarStorage(cfg.Storage.Avatars.Dir),
		OAuth:   map[models.OAuthProvider]adapter.OAuthProvider{},
	}

	svcs, err := service.NewServices(storages, adapters, cfg, logger.Nop())
	require.NoError(t, err)

	h := NewHandler(svcs, ratelimit.NewMemoryLimiter(), cfg, logger.Nop())
	srv := httptest.NewServer(h.Init())
	t.Cleanup(srv.Close)
	return srv, mail
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func TestFlow_RegisterVerifySignIn(t *testing.T) {
	srv, mail := newFlowServer(t)
	client := srv.Client()
	client.CheckRedirect = noRedirect

	post := func(path, body string, cookies ...*http.Cookie) *http.Response {
		req, err := http.NewRequest(http.MethodPost, srv.URL+path, strings.NewReader(body))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}
	get := func(path string, cookies ...*http.Cookie) *http.Response {
		req, err := http.NewRequest(http.MethodGet, srv.URL+path, nil)
		require.NoError(t, err)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		resp, err := client.Do(req)
		require.NoError(t, err)
		t.Cleanup(func() { _ = resp.Body.Close() })
		return resp
	}

	resp := post("/api/auth/register", `{"name":"Jane","email":"Jane@Example.com","password":"Passw0rdOk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post("/api/auth/login", `{"email":"jane@example.com","password":"Passw0rdOk"}`)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, "unverified accounts cannot sign in")

	token := mail.verifyToken(t, "jane@example.com")

	resp = get("/api/auth/verify?token=" + token)
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, emailVerifiedPath, resp.Header.Get("Location"))

	resp = get("/api/auth/verify?token=" + token)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "verification links are single-use")

	resp = post("/api/auth/login", `{"email":"jane@example.com","password":"Passw0rdOk"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	resp = get("/api/auth/session", session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get("/dashboard", session)
	assert.Equal(t, http.StatusFound, resp.StatusCode, "new credential accounts start incomplete")

	resp = post("/api/profile/update", `{"name":"Jane Doe","email":"jane@example.com"}`, session)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get("/dashboard", session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = post("/api/auth/logout", "", session)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = get("/api/auth/session", session)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestFlow_RegisterRateLimited(t *testing.T) {
	srv, _ := newFlowServer(t)

	var last int
	for i := 0; i < ratelimit.RegisterConfig.MaxRequests+1; i++ {
		resp, err := srv.Client().Post(srv.URL+"/api/auth/register", "application/json",
			strings.NewReader(`{"name":"Jane","email":"not-an-email","password":"x"}`))
		require.NoError(t, err)
		last = resp.StatusCode
		_ = resp.Body.Close()
	}

	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestFlow_AvatarServedAsImage(t *testing.T) {
	srv, mail := newFlowServer(t)
	client := srv.Client()
	client.CheckRedirect = noRedirect

	resp, err := client.Post(srv.URL+"/api/auth/register", "application/json",
		strings.NewReader(`{"name":"Jane","email":"jane@example.com","password":"Passw0rdOk"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = client.Get(srv.URL + "/api/auth/verify?token=" + mail.verifyToken(t, "jane@example.com"))
	require.NoError(t, err)
	_ = resp.Body.Close()

	resp, err = client.Post(srv.URL+"/api/auth/login", "application/json",
		strings.NewReader(`{"email":"jane@example.com","password":"Passw0rdOk"}`))
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var session *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == testCookieName {
			session = c
		}
	}
	require.NotNil(t, session)

	content := append(append([]byte{}, pngHeader...), []byte("<html><script>alert(1)</script></html>")...)
	body, contentType := multipartAvatar(t, "file", "x.html", "image/png", content)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/upload/avatar", body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", contentType)
	req.AddCookie(session)
	resp, err = client.Do(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var uploaded models.AvatarResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&uploaded))
	_ = resp.Body.Close()

	assert.True(t, strings.HasSuffix(uploaded.URL, ".png"), uploaded.URL)

	resp, err = client.Get(srv.URL + uploaded.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}
