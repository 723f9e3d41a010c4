package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/service"
)

// http.NewHandler only stores the services pointer, so an empty value is
// enough for construction tests.
func newTestServices() *service.Services {
	return &service.Services{}
}

func TestNewHandlers_HTTP(t *testing.T) {
	cfg := &config.StructuredConfig{Server: config.Server{HTTPAddress: ":8080"}}

	h, err := NewHandlers(newTestServices(), ratelimit.NewMemoryLimiter(), cfg, logger.Nop())

	require.NoError(t, err)
	require.NotNil(t, h)
	assert.NotNil(t, h.HTTP)
}

func TestNewHandlers_NoAddress(t *testing.T) {
	h, err := NewHandlers(newTestServices(), ratelimit.NewMemoryLimiter(), &config.StructuredConfig{}, logger.Nop())

	require.ErrorIs(t, err, errNoHandlersAreCreated)
	assert.Nil(t, h)
}

func TestNewHandlers_IndependentInstances(t *testing.T) {
	cfg := &config.StructuredConfig{Server: config.Server{HTTPAddress: ":8080"}}

	h1, err1 := NewHandlers(newTestServices(), ratelimit.NewMemoryLimiter(), cfg, logger.Nop())
	h2, err2 := NewHandlers(newTestServices(), ratelimit.NewMemoryLimiter(), cfg, logger.Nop())

	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.NotSame(t, h1, h2)
	assert.NotSame(t, h1.HTTP, h2.HTTP)
}
