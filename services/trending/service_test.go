package trending

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"trendwatch-backend/lib/scrapers/githubtrending"
	"trendwatch-backend/lib/testutil"
	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/lib/trendstore/db"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const trendingPage = `<!DOCTYPE html>
<html>
<body>
<article class="Box-row">
	<h2 class="h3"><a href="/golang/go">golang / go</a></h2>
</article>
<article class="Box-row">
	<h2 class="h3"><a href="/openai/gpt">  Open AI /
		gpt  </a></h2>
</article>
<article class="Box-row">
	<h2 class="h3"><a href="/rust-lang/rust">rust-lang / rust</a></h2>
</article>
</body>
</html>`

const emptyPage = `<html><body><p>no trending repositories today</p></body></html>`

func setupService(t *testing.T, sourceUrl string) (Service, trendstore.Store, string) {
	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "trending",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	store := trendstore.NewStore(result.DB)

	dir := t.TempDir()

	cfg := DefaultConfig()
	cfg.SourceUrl = sourceUrl
	cfg.TimeoutSeconds = 2
	cfg.OutputDir = dir

	service, err := NewService(cfg, store)
	require.NoError(t, err)
	return service, store, dir
}

func TestServiceScrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(trendingPage))
	}))
	defer srv.Close()

	service, store, dir := setupService(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := service.Scrape(ctx)
	require.NoError(t, err)
	require.Len(t, result.RunID, 8)
	require.Equal(t, filepath.Join(dir, "trending_repos.csv"), result.CSVPath)

	// links join against the fixture server, not github
	expected := []githubtrending.Repository{
		{Name: "golang/go", Link: srv.URL + "/golang/go"},
		{Name: "OpenAI/gpt", Link: srv.URL + "/openai/gpt"},
		{Name: "rust-lang/rust", Link: srv.URL + "/rust-lang/rust"},
	}
	diff := cmp.Diff(expected, result.Repos)
	if diff != "" {
		t.Fatal(diff)
	}

	records := readCSV(t, result.CSVPath)
	require.Len(t, records, 4)
	require.Equal(t, []string{"Repository Name", "Repository Link"}, records[0])
	require.Equal(t, []string{"golang/go", srv.URL + "/golang/go"}, records[1])

	snapshot, err := store.Get(ctx, result.RunID)
	require.NoError(t, err)
	require.Len(t, snapshot.Repos, 3)
	require.Equal(t, "OpenAI/gpt", snapshot.Repos[1].Name)
}

func TestServiceScrapeFetchFailureAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gateway exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	service, store, dir := setupService(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.Scrape(ctx)
	require.ErrorIs(t, err, githubtrending.ErrFetch)

	// a failed run must not leave an export behind
	_, err = os.Stat(filepath.Join(dir, "trending_repos.csv"))
	require.True(t, os.IsNotExist(err))

	snapshots, err := store.List(ctx, 10)
	require.NoError(t, err)
	require.Empty(t, snapshots)
}

func TestServiceScrapeNoMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(emptyPage))
	}))
	defer srv.Close()

	service, store, _ := setupService(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	result, err := service.Scrape(ctx)
	require.NoError(t, err)
	require.Empty(t, result.Repos)

	// the export still happens, it just only has the header row
	records := readCSV(t, result.CSVPath)
	require.Len(t, records, 1)

	snapshot, err := store.Get(ctx, result.RunID)
	require.NoError(t, err)
	require.Empty(t, snapshot.Repos)
}

func TestSearchRepos(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(trendingPage))
	}))
	defer srv.Close()

	service, _, _ := setupService(t, srv.URL)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*5)
	defer cancel()

	_, err := service.Scrape(ctx)
	require.NoError(t, err)

	matches, err := service.SearchRepos(ctx, "golang go", 2)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	require.Equal(t, "golang/go", matches[0].Name)
	require.Equal(t, 1, matches[0].Appearances)
	require.Greater(t, matches[0].Correlation, matches[1].Correlation)

	// queries get the same whitespace treatment as scraped names
	matches, err = service.SearchRepos(ctx, "  Open AI / gpt  ", 1)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "OpenAI/gpt", matches[0].Name)

	// searching an empty store is fine, it just finds nothing
	empty, _, _ := setupService(t, srv.URL)
	matches, err = empty.SearchRepos(ctx, "golang", 5)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestSendDigestDisabled(t *testing.T) {
	err := SendDigest(context.Background(), DigestConfig{}, RunResult{
		RunID:   "abcd1234",
		TakenAt: time.Now(),
	})
	require.NoError(t, err)
}

func TestDigestBody(t *testing.T) {
	result := RunResult{
		RunID: "abcd1234",
		Repos: []githubtrending.Repository{
			{Name: "golang/go", Link: "https://github.com/golang/go"},
			{Name: "OpenAI/gpt", Link: "https://github.com/openai/gpt"},
		},
	}

	body := digestBody(result, []string{"openai"})
	expected := `The top 2 trending repositories on GitHub right now:

1. golang/go
   https://github.com/golang/go

2. OpenAI/gpt [watched]
   https://github.com/openai/gpt

Run id: abcd1234
`
	diff := cmp.Diff(expected, body)
	if diff != "" {
		t.Fatal(diff)
	}

	require.NotContains(t, digestBody(result, nil), "[watched]")
}

func TestNewServiceInvalidSelector(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RowSelector = "[[["

	_, err := NewService(cfg, trendstore.Store{})
	require.Error(t, err)
}
