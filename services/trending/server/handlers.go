package server

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"trendwatch-backend/lib/scrapers/githubtrending"
	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/services/trending"

	"github.com/gin-gonic/gin"
)

// Scrape returns the handler for POST /api/v1/scrape. One request runs
// the pipeline exactly once and reports what it scraped.
func Scrape(service trending.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		result, err := service.Scrape(c.Request.Context())
		if err != nil {
			status, code := scrapeErrorStatus(err)
			c.JSON(status, ScrapeResponse{
				Success: false,
				TookMs:  time.Since(start).Milliseconds(),
				Error:   &ErrorDetail{Code: code, Message: err.Error()},
			})
			return
		}

		c.JSON(http.StatusOK, ScrapeResponse{
			Success: true,
			RunID:   result.RunID,
			Repos:   toRepoEntries(result.Repos),
			CSVPath: result.CSVPath,
			TookMs:  time.Since(start).Milliseconds(),
		})
	}
}

func toRepoEntries(repos []githubtrending.Repository) []RepoEntry {
	out := make([]RepoEntry, len(repos))
	for i, repo := range repos {
		out[i] = RepoEntry{Name: repo.Name, Link: repo.Link}
	}
	return out
}

// scrapeErrorStatus maps pipeline failures onto http statuses and api
// error codes.
func scrapeErrorStatus(err error) (int, string) {
	var netErr net.Error
	switch {
	case errors.Is(err, githubtrending.ErrFetch):
		if errors.As(err, &netErr) && netErr.Timeout() {
			return http.StatusGatewayTimeout, ErrCodeTimeout
		}
		return http.StatusBadGateway, ErrCodeFetchFailed
	case errors.Is(err, githubtrending.ErrParse):
		return http.StatusBadGateway, ErrCodeParseFailed
	case errors.Is(err, trending.ErrExport):
		return http.StatusInternalServerError, ErrCodeExportFailed
	default:
		return http.StatusInternalServerError, ErrCodeInternal
	}
}

// ListSnapshots returns the handler for GET /api/v1/snapshots.
func ListSnapshots(store trendstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

		snapshots, err := store.List(c.Request.Context(), limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, SnapshotListResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()},
			})
			return
		}

		entries := make([]SnapshotEntry, len(snapshots))
		for i, s := range snapshots {
			entries[i] = SnapshotEntry{
				RunID:     s.RunID,
				SourceUrl: s.SourceUrl,
				TakenAt:   s.TakenAt,
				RepoCount: s.RepoCount,
			}
		}
		c.JSON(http.StatusOK, SnapshotListResponse{Success: true, Snapshots: entries})
	}
}

// GetSnapshot returns the handler for GET /api/v1/snapshots/:runID.
func GetSnapshot(store trendstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := store.Get(c.Request.Context(), c.Param("runID"))
		if errors.Is(err, trendstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, SnapshotResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeNotFound, Message: "no snapshot with that run id"},
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, SnapshotResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()},
			})
			return
		}
		writeSnapshot(c, snapshot)
	}
}

// LatestSnapshot returns the handler for GET /api/v1/snapshots/latest.
func LatestSnapshot(store trendstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		snapshot, err := store.Latest(c.Request.Context())
		if errors.Is(err, trendstore.ErrNotFound) {
			c.JSON(http.StatusNotFound, SnapshotResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeNotFound, Message: "no snapshots yet"},
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, SnapshotResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()},
			})
			return
		}
		writeSnapshot(c, snapshot)
	}
}

func writeSnapshot(c *gin.Context, snapshot trendstore.Snapshot) {
	repos := make([]RepoEntry, len(snapshot.Repos))
	for i, repo := range snapshot.Repos {
		repos[i] = RepoEntry{Name: repo.Name, Link: repo.Link}
	}
	c.JSON(http.StatusOK, SnapshotResponse{
		Success: true,
		Snapshot: &SnapshotDetail{
			RunID:     snapshot.RunID,
			SourceUrl: snapshot.SourceUrl,
			TakenAt:   snapshot.TakenAt,
			Repos:     repos,
		},
	})
}

// SearchRepos returns the handler for GET /api/v1/repos/search.
func SearchRepos(service trending.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		query := c.Query("q")
		if query == "" {
			c.JSON(http.StatusBadRequest, SearchResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeInvalidInput, Message: "missing q parameter"},
			})
			return
		}
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

		matches, err := service.SearchRepos(c.Request.Context(), query, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, SearchResponse{
				Success: false,
				Error:   &ErrorDetail{Code: ErrCodeInternal, Message: err.Error()},
			})
			return
		}

		out := make([]SearchMatch, len(matches))
		for i, m := range matches {
			out[i] = SearchMatch{
				Name:        m.Name,
				Link:        m.Link,
				LastSeen:    m.LastSeen,
				Appearances: m.Appearances,
				Correlation: m.Correlation,
			}
		}
		c.JSON(http.StatusOK, SearchResponse{Success: true, Matches: out})
	}
}

// Health returns the handler for GET /api/v1/health. It sits outside
// auth so monitoring probes always work.
func Health(startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Uptime:  time.Since(startTime).Round(time.Second).String(),
			Version: Version,
		})
	}
}
