package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/handler"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
)

type server struct {
	httpServer *httpServer
	logger     *logger.Logger
}

func NewServer(handlers *handler.Handlers, cfg config.Server, logger *logger.Logger) (Server, error) {
	logger.Info().Msg("creating new server...")

	if handlers == nil || handlers.HTTP == nil || cfg.HTTPAddress == "" {
		return nil, errNoServersAreCreated
	}

	return &server{
		httpServer: newHTTPServer(handlers.HTTP.Init(), cfg, logger),
		logger:     logger,
	}, nil
}

func (s *server) RunServer(ctx context.Context) error {
	serveErr := make(chan error, 1)

	s.logger.Info().Str("address", s.httpServer.server.Addr).Msg("Launching HTTP server")
	go func() {
		serveErr <- s.httpServer.RunServer()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("error serving http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	err := s.httpServer.Shutdown()
	err = errors.Join(err, <-serveErr)
	if err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}

	s.logger.Info().Msg("server Shutdown gracefully")
	return nil
}
