package main

import (
	"context"
	"log/slog"
	"time"

	"trendwatch-backend/lib/configutil"
	"trendwatch-backend/lib/serviceutil"
	"trendwatch-backend/lib/timezone"
	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/lib/trendstore/db"
	"trendwatch-backend/services/trending"
	"trendwatch-backend/services/trending/server"

	"github.com/gin-gonic/gin"
)

func scrapeWorker(ctx context.Context, service trending.Service, store trendstore.Store, cfg Config) {
	ticker := time.NewTicker(time.Minute * 10)
	defer ticker.Stop()

	var lastRun time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			current := timezone.Now()
			if current.Hour() != *cfg.ScrapeHour {
				continue
			}
			if timezone.SameDay(current, lastRun) {
				continue
			}

			result, err := service.Scrape(ctx)
			if err != nil {
				slog.ErrorContext(ctx, "scheduled scrape", "err", err)
				continue
			}
			lastRun = current

			err = trending.SendDigest(ctx, cfg.Digest, result)
			if err != nil {
				slog.ErrorContext(ctx, "send digest", "err", err)
			}

			if cfg.RetentionDays > 0 {
				cutoff := current.AddDate(0, 0, -cfg.RetentionDays)
				removed, err := store.Prune(ctx, cutoff)
				if err != nil {
					slog.ErrorContext(ctx, "prune snapshots", "err", err)
				} else if removed > 0 {
					slog.InfoContext(ctx, "pruned old snapshots", "removed", removed)
				}
			}
		}
	}
}

func main() {
	ctx := serviceutil.SignalContext()

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	err = timezone.Set(cfg.Timezone)
	if err != nil {
		serviceutil.Fatal("failed to set timezone", err)
	}
	InitTelemetry(ctx, cfg.Verbose)

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("failed to open db", err)
	}
	defer database.Close()

	store := trendstore.NewStore(database)
	service, err := trending.NewService(cfg.Scraper, store)
	if err != nil {
		serviceutil.Fatal("failed to initialize scraper", err)
	}

	if cfg.ScrapeHour != nil {
		slog.Info("scheduling daily scrape", "hour", *cfg.ScrapeHour)
		go scrapeWorker(ctx, service, store, cfg)
	}

	if !cfg.Verbose {
		gin.SetMode(gin.ReleaseMode)
	}
	port := cfg.Server.Port
	if port == 0 {
		port = 8080
	}
	serviceutil.StartHttpServer(ctx, port, server.NewRouter(service, store, cfg.Server, time.Now()))
}
