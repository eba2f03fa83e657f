package commands

import (
	"context"
	"fmt"
	"os"

	"trendwatch-backend/lib/configutil"
	configsqlite "trendwatch-backend/lib/configutil/sqlite"
	"trendwatch-backend/lib/serviceutil"
	"trendwatch-backend/lib/telemetry"
	"trendwatch-backend/services/trending"

	"github.com/spf13/cobra"
)

type Config struct {
	Scraper  trending.Config     `json:"scraper"`
	Database configsqlite.Struct `json:"database"`
}

func defaultConfig() Config {
	return Config{
		Scraper:  trending.DefaultConfig(),
		Database: configsqlite.Struct{File: "data/trendwatch.db"},
	}
}

var configPath *string
var verbose *bool

var rootCmd = &cobra.Command{
	Use:   "trendwatch",
	Short: "trendwatch scrapes the top trending repositories on GitHub.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(*verbose, false)
	},
}

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "The config file to read settings from.")
	verbose = rootCmd.PersistentFlags().Bool("verbose", false, "Enables debug logging.")
}

// loadConfig falls back to the built-in defaults when no config file
// exists, so the cli works out of the box.
func loadConfig() Config {
	cfg, err := configutil.ReadConfigOr(*configPath, defaultConfig())
	if err != nil {
		serviceutil.Fatal("failed to read config", err)
	}
	return cfg
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
