package commands

import (
	"fmt"

	"trendwatch-backend/cmd/trendwatch/utils"
	"trendwatch-backend/lib/serviceutil"
	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/lib/trendstore/db"
	"trendwatch-backend/services/trending"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(scrapeCmd)
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrapes the trending page once and exports the result to csv.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		database, err := cfg.Database.OpenDB(db.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()

		service, err := trending.NewService(cfg.Scraper, trendstore.NewStore(database))
		if err != nil {
			serviceutil.Fatal("failed to initialize scraper", err)
		}

		result, err := service.Scrape(cmd.Context())
		if err != nil {
			serviceutil.Fatal("scrape failed", err)
		}

		t := utils.NewTable()
		t.AppendHeader(table.Row{"#", "Repository Name", "Repository Link"})
		for i, repo := range result.Repos {
			t.AppendRow(table.Row{i + 1, repo.Name, repo.Link})
		}
		t.Render()

		fmt.Printf("Scraped top %d repositories to: %s\n", len(result.Repos), result.CSVPath)
	},
}
