package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-activity-export/internal/cache"
	"github.com/noah-isme/gema-activity-export/internal/catalog"
	"github.com/noah-isme/gema-activity-export/internal/config"
	"github.com/noah-isme/gema-activity-export/internal/database"
	"github.com/noah-isme/gema-activity-export/internal/filesystem"
	"github.com/noah-isme/gema-activity-export/internal/notify"
	"github.com/noah-isme/gema-activity-export/internal/observability"
	"github.com/noah-isme/gema-activity-export/internal/repository"
	"github.com/noah-isme/gema-activity-export/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger, err := observability.NewLogger(os.Stderr, cfg.AppName, cfg.LogLevel, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("failed to configure logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	code := run(ctx, cfg, logger)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, cfg config.Config, logger zerolog.Logger) int {
	deps := service.ExportDependencies{
		Source: catalog.Activities,
		Writer: filesystem.NewWriter(),
	}

	if cfg.MirrorEnabled() {
		db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
		if err != nil {
			logger.Warn().Err(err).Msg("activity mirror disabled")
		} else {
			deps.Mirror = repository.NewActivityRepository(db)
			if sqlDB, err := db.DB(); err == nil {
				defer sqlDB.Close()
			}
		}
	}

	if cfg.RedisURL != "" {
		redisClient, err := database.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn().Err(err).Msg("document cache disabled")
		} else {
			defer redisClient.Close()
			deps.Cache = cache.NewPayloadCache(redisClient, cfg.RedisKey)
		}
	}

	if cfg.NATSURL != "" {
		conn, err := database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Warn().Err(err).Msg("export announcements disabled")
		} else {
			defer conn.Close()
			deps.Announcer = notify.NewAnnouncer(conn, cfg.NATSSubject, logger)
		}
	}

	exporter := service.NewExportService(deps, cfg.OutputPath, cfg.SideChannelTimeout, logger)
	_, exportErr := exporter.Export(ctx)

	if cfg.MetricsTextfile != "" {
		if err := observability.WriteTextfile(cfg.MetricsTextfile); err != nil {
			logger.Warn().Err(err).Str("path", cfg.MetricsTextfile).Msg("metrics not written")
		}
	}

	if exportErr != nil {
		return 1
	}
	return 0
}
