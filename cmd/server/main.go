package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/Rhysmalcolm13/agentity/internal/adapter"
	"github.com/Rhysmalcolm13/agentity/internal/config"
	"github.com/Rhysmalcolm13/agentity/internal/handler"
	"github.com/Rhysmalcolm13/agentity/internal/logger"
	"github.com/Rhysmalcolm13/agentity/internal/ratelimit"
	"github.com/Rhysmalcolm13/agentity/internal/server"
	"github.com/Rhysmalcolm13/agentity/internal/service"
	"github.com/Rhysmalcolm13/agentity/internal/store"
	"github.com/Rhysmalcolm13/agentity/internal/workers"
	"github.com/Rhysmalcolm13/agentity/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo(models.NewAppBuildInfo(buildVersion, buildDate, buildCommit))

	cfg, err := config.GetStructuredConfig()
	if err != nil {
		logger.NewLogger("agentity-server").Fatal().Err(err).Msg("error getting configs")
	}
	if cfg.App.Version == "" && buildVersion != "" {
		cfg.App.Version = buildVersion
	}

	log := logger.NewLogger("agentity-server", logger.WithLevel(cfg.App.LogLevel))
	log.Debug().Str("base_url", cfg.App.BaseURL).Str("db_driver", cfg.Storage.DB.Driver).Msg("received configs")

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
	)
	defer stop()

	storages, err := store.NewStorages(ctx, cfg.Storage.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	adapters, err := adapter.NewAdapters(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating adapters")
	}

	limiter, closeLimiter, err := ratelimit.New(ctx, cfg.RateLimit, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating rate limiter")
	}
	defer closeLimiter()

	services, err := service.NewServices(storages, adapters, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating services")
	}

	workers.NewWorkers(services, cfg.Workers, log).Run(ctx)

	handlers, err := handler.NewHandlers(services, limiter, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	srv, err := server.NewServer(handlers, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = srv.RunServer(ctx); err != nil {
		log.Error().Err(err).Msg("server stopped with error")
	}
}

func printBuildInfo(info models.AppBuildInfo) {
	fmt.Printf("Build version: %s\n", info.BuildVersion())
	fmt.Printf("Build date: %s\n", info.BuildDate())
	fmt.Printf("Build commit: %s\n", info.BuildCommit())
}
