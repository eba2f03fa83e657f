package trending

import (
	"context"
	"log/slog"
	"time"

	"trendwatch-backend/lib/scrapers/githubtrending"
	"trendwatch-backend/lib/telemetry"
	"trendwatch-backend/lib/timezone"
	"trendwatch-backend/lib/trendstore"

	"github.com/mazen160/go-random"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("trendwatch.services.trending")

type Config struct {
	SourceUrl      string `json:"source_url"`
	RowSelector    string `json:"row_selector"`
	MaxRepos       int    `json:"max_repos"`
	TimeoutSeconds int    `json:"timeout_seconds"`
	OutputDir      string `json:"output_dir"`
	OutputFile     string `json:"output_file"`
}

func DefaultConfig() Config {
	return Config{
		SourceUrl:      githubtrending.DefaultBaseUrl,
		RowSelector:    githubtrending.DefaultSelector,
		MaxRepos:       githubtrending.DefaultMaxRepos,
		TimeoutSeconds: int(githubtrending.DefaultTimeout / time.Second),
		OutputDir:      "data",
		OutputFile:     "trending_repos.csv",
	}
}

type Service struct {
	cfg     Config
	scraper *githubtrending.Client
	store   trendstore.Store
}

func NewService(cfg Config, store trendstore.Store) (Service, error) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = "data"
	}
	if cfg.OutputFile == "" {
		cfg.OutputFile = "trending_repos.csv"
	}

	scraper, err := githubtrending.NewClient(githubtrending.ClientOptions{
		BaseUrl:  cfg.SourceUrl,
		Selector: cfg.RowSelector,
		MaxRepos: cfg.MaxRepos,
		Timeout:  time.Duration(cfg.TimeoutSeconds) * time.Second,
	})
	if err != nil {
		return Service{}, err
	}

	return Service{
		cfg:     cfg,
		scraper: scraper,
		store:   store,
	}, nil
}

// RunResult describes one completed scrape.
type RunResult struct {
	RunID   string
	Repos   []githubtrending.Repository
	CSVPath string
	TakenAt time.Time
}

// Scrape runs the whole pipeline once: fetch the page, pull the top
// repositories out of it, write the csv export and record a snapshot.
// The steps run in order and the first failure aborts the run, so a
// fetch or parse error never leaves a partial export behind.
func (s Service) Scrape(ctx context.Context) (RunResult, error) {
	ctx, span := tracer.Start(ctx, "Scrape")
	defer span.End()

	html, err := s.scraper.FetchHTML(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to fetch trending page")
		return RunResult{}, err
	}
	repos, err := s.scraper.ParseRepositories(ctx, html)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse trending page")
		return RunResult{}, err
	}

	csvPath, err := ExportCSV(repos, s.cfg.OutputDir, s.cfg.OutputFile)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to export csv")
		return RunResult{}, err
	}

	runId, err := random.String(8)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to generate run id")
		return RunResult{}, err
	}
	takenAt := timezone.Now()

	storeRepos := make([]trendstore.Repo, len(repos))
	for i, repo := range repos {
		storeRepos[i] = trendstore.Repo{
			Position: i,
			Name:     repo.Name,
			Link:     repo.Link,
		}
	}
	err = s.store.Push(ctx, trendstore.Snapshot{
		RunID:     runId,
		SourceUrl: s.scraper.BaseUrl.String(),
		TakenAt:   takenAt,
		Repos:     storeRepos,
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to record snapshot")
		return RunResult{}, err
	}

	slog.InfoContext(
		ctx, "scrape complete",
		"run_id", runId,
		"repos", len(repos),
		"csv", csvPath,
	)

	return RunResult{
		RunID:   runId,
		Repos:   repos,
		CSVPath: csvPath,
		TakenAt: takenAt,
	}, nil
}
