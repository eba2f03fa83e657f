package main

import (
	"context"

	"trendwatch-backend/cmd/trendwatch/commands"
	"trendwatch-backend/lib/telemetry"
)

func main() {
	telemetry.SetupFromEnv(context.Background(), "trendwatch")
	commands.ExecuteContext(context.Background())
}
