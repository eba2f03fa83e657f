package main

import (
	"context"
	"log/slog"

	"trendwatch-backend/lib/restyutil"
	"trendwatch-backend/lib/scrapers/githubtrending"
	"trendwatch-backend/lib/serviceutil"
	"trendwatch-backend/lib/telemetry"
)

func InitTelemetry(ctx context.Context, verbose bool) {
	telemetry.InitSlog(verbose, false)

	if verbose {
		slog.DebugContext(ctx, "verbose logging enabled")
	}

	err := telemetry.SetupFromEnv(ctx, "trendwatchd")
	if err != nil {
		serviceutil.Fatal("setup telemetry", err)
	}
	go func() {
		<-ctx.Done()
		telemetry.Shutdown(context.Background())
	}()
	telemetry.InstrumentPerfStats(ctx)

	if !verbose {
		return
	}

	githubtrending.SetRestyInstrumentOutput(
		restyutil.NewFilesystemOutput(".dev/resty/githubtrending"),
	)
}
