package server

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/handler"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/service"
)

type staticVersion string

func (v staticVersion) GetAppVersion(context.Context) string { return string(v) }

// freeAddress returns a loopback address that is free at the time of the call.
func freeAddress(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestNewServer_NoHandlers(t *testing.T) {
	s, err := NewServer(nil, config.Server{HTTPAddress: ":8080"}, logger.Nop())
	require.ErrorIs(t, err, errNoServersAreCreated)
	assert.Nil(t, s)

	s, err = NewServer(&handler.Handlers{}, config.Server{HTTPAddress: ":8080"}, logger.Nop())
	require.ErrorIs(t, err, errNoServersAreCreated)
	assert.Nil(t, s)
}

func TestServer_RunAndShutdown(t *testing.T) {
	cfg := &config.StructuredConfig{Server: config.Server{HTTPAddress: freeAddress(t)}}
	svcs := &service.Services{AppInfoService: staticVersion("2.0.0")}

	handlers, err := handler.NewHandlers(svcs, ratelimit.NewMemoryLimiter(), cfg, logger.Nop())
	require.NoError(t, err)
	s, err := NewServer(handlers, cfg.Server, logger.Nop())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.RunServer(ctx) }()

	url := "http://" + cfg.Server.HTTPAddress + "/api/version"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(shutdownTimeout):
		t.Fatal("server did not stop")
	}
}

func TestServer_ListenError(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	cfg := &config.StructuredConfig{Server: config.Server{HTTPAddress: l.Addr().String()}}
	handlers, err := handler.NewHandlers(&service.Services{}, ratelimit.NewMemoryLimiter(), cfg, logger.Nop())
	require.NoError(t, err)
	s, err := NewServer(handlers, cfg.Server, logger.Nop())
	require.NoError(t, err)

	err = s.RunServer(context.Background())
	assert.Error(t, err)
}
