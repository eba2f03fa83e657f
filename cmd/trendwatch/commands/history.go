package commands

import (
	"fmt"
	"time"

	"trendwatch-backend/cmd/trendwatch/utils"
	"trendwatch-backend/lib/serviceutil"
	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/lib/trendstore/db"
	"trendwatch-backend/services/trending"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var historyRun *string
var historySearch *string
var historyLimit *int

func init() {
	historyRun = historyCmd.Flags().String("run", "", "Prints the repositories of one recorded run.")
	historySearch = historyCmd.Flags().String("search", "", "Fuzzy searches recorded repositories by name.")
	historyLimit = historyCmd.Flags().Int("limit", 20, "Caps how many rows get printed.")
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:   "history [--run <run id>] [--search <name>] [--limit <n>]",
	Short: "Prints recorded scrape runs.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		database, err := cfg.Database.OpenDB(db.Schema)
		if err != nil {
			serviceutil.Fatal("failed to open db", err)
		}
		defer database.Close()
		store := trendstore.NewStore(database)

		switch {
		case *historyRun != "":
			snapshot, err := store.Get(cmd.Context(), *historyRun)
			if err != nil {
				serviceutil.Fatal("failed to read snapshot", err)
			}

			t := utils.NewTable()
			t.AppendHeader(table.Row{"#", "Repository Name", "Repository Link"})
			for _, repo := range snapshot.Repos {
				t.AppendRow(table.Row{repo.Position + 1, repo.Name, repo.Link})
			}
			t.Render()

		case *historySearch != "":
			service, err := trending.NewService(cfg.Scraper, store)
			if err != nil {
				serviceutil.Fatal("failed to initialize service", err)
			}
			matches, err := service.SearchRepos(cmd.Context(), *historySearch, *historyLimit)
			if err != nil {
				serviceutil.Fatal("failed to search repositories", err)
			}

			t := utils.NewTable()
			t.AppendHeader(table.Row{"Repository Name", "Correlation", "Appearances", "Last Seen"})
			for _, m := range matches {
				t.AppendRow(table.Row{
					m.Name,
					fmt.Sprintf("%.3f", m.Correlation),
					m.Appearances,
					m.LastSeen.Format(time.DateOnly),
				})
			}
			t.Render()

		default:
			snapshots, err := store.List(cmd.Context(), *historyLimit)
			if err != nil {
				serviceutil.Fatal("failed to list snapshots", err)
			}

			t := utils.NewTable()
			t.AppendHeader(table.Row{"Run ID", "Taken At", "Repos", "Source"})
			for _, s := range snapshots {
				t.AppendRow(table.Row{
					s.RunID,
					s.TakenAt.Format(time.DateTime),
					s.RepoCount,
					s.SourceUrl,
				})
			}
			t.Render()
		}
	},
}
