package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"trendwatch-backend/lib/testutil"
	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/lib/trendstore/db"
	"trendwatch-backend/services/trending"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

const trendingPage = `<!DOCTYPE html>
<html>
<body>
<article class="Box-row">
	<h2 class="h3"><a href="/golang/go">golang / go</a></h2>
</article>
<article class="Box-row">
	<h2 class="h3"><a href="/rust-lang/rust">rust-lang / rust</a></h2>
</article>
</body>
</html>`

func setupRouter(t *testing.T, sourceUrl string, cfg Config) *gin.Engine {
	gin.SetMode(gin.TestMode)

	result, cleanup := testutil.SetupService(t, testutil.ServiceParams{
		Name:     "trending-server",
		DbSchema: db.Schema,
	})
	t.Cleanup(cleanup)
	store := trendstore.NewStore(result.DB)

	serviceCfg := trending.DefaultConfig()
	serviceCfg.SourceUrl = sourceUrl
	serviceCfg.TimeoutSeconds = 2
	serviceCfg.OutputDir = t.TempDir()

	service, err := trending.NewService(serviceCfg, store)
	require.NoError(t, err)

	return NewRouter(service, store, cfg, time.Now())
}

func do(t *testing.T, router *gin.Engine, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.RemoteAddr = "10.0.0.1:52000"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestScrapeEndpoint(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(trendingPage))
	}))
	defer upstream.Close()

	router := setupRouter(t, upstream.URL, Config{})

	rec := do(t, router, http.MethodPost, "/api/v1/scrape", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var scrape ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scrape))
	require.True(t, scrape.Success)
	require.Len(t, scrape.RunID, 8)
	require.Len(t, scrape.Repos, 2)
	require.Equal(t, "golang/go", scrape.Repos[0].Name)
	require.Equal(t, upstream.URL+"/golang/go", scrape.Repos[0].Link)
	require.NotEmpty(t, scrape.CSVPath)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var list SnapshotListResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.True(t, list.Success)
	require.Len(t, list.Snapshots, 1)
	require.Equal(t, scrape.RunID, list.Snapshots[0].RunID)
	require.Equal(t, 2, list.Snapshots[0].RepoCount)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots/"+scrape.RunID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.True(t, detail.Success)
	require.Len(t, detail.Snapshot.Repos, 2)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots/latest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var latest SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	require.True(t, latest.Success)
	require.Equal(t, scrape.RunID, latest.Snapshot.RunID)

	rec = do(t, router, http.MethodGet, "/api/v1/repos/search?q=golang&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var search SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.True(t, search.Success)
	require.Len(t, search.Matches, 1)
	require.Equal(t, "golang/go", search.Matches[0].Name)
}

func TestScrapeEndpointUpstreamDown(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer upstream.Close()

	router := setupRouter(t, upstream.URL, Config{})

	rec := do(t, router, http.MethodPost, "/api/v1/scrape", nil)
	require.Equal(t, http.StatusBadGateway, rec.Code)

	var scrape ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &scrape))
	require.False(t, scrape.Success)
	require.Equal(t, ErrCodeFetchFailed, scrape.Error.Code)
}

func TestSnapshotNotFound(t *testing.T) {
	router := setupRouter(t, "http://127.0.0.1:0", Config{})

	rec := do(t, router, http.MethodGet, "/api/v1/snapshots/nope1234", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var detail SnapshotResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	require.Equal(t, ErrCodeNotFound, detail.Error.Code)

	// same story before anything has been scraped
	rec = do(t, router, http.MethodGet, "/api/v1/snapshots/latest", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchMissingQuery(t *testing.T) {
	router := setupRouter(t, "http://127.0.0.1:0", Config{})

	rec := do(t, router, http.MethodGet, "/api/v1/repos/search", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var search SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &search))
	require.Equal(t, ErrCodeInvalidInput, search.Error.Code)
}

func TestAuth(t *testing.T) {
	router := setupRouter(t, "http://127.0.0.1:0", Config{AccessToken: "hunter2"})

	// health stays open
	rec := do(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots", map[string]string{
		"Authorization": "Bearer wrong",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots", map[string]string{
		"Authorization": "Bearer hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots", map[string]string{
		"X-API-Key": "hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimit(t *testing.T) {
	router := setupRouter(t, "http://127.0.0.1:0", Config{RateRps: 0.01, RateBurst: 1})

	rec := do(t, router, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, router, http.MethodGet, "/api/v1/snapshots", nil)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var resp ScrapeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, ErrCodeRateLimited, resp.Error.Code)
}

func TestHealth(t *testing.T) {
	router := setupRouter(t, "http://127.0.0.1:0", Config{})

	rec := do(t, router, http.MethodGet, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var health HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	require.Equal(t, "healthy", health.Status)
	require.Equal(t, Version, health.Version)
}

func TestIndexPage(t *testing.T) {
	router := setupRouter(t, "http://127.0.0.1:0", Config{})

	rec := do(t, router, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "/api/v1/scrape")
}
