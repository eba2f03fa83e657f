package server

import "time"

const (
	ErrCodeFetchFailed  = "FETCH_FAILED"
	ErrCodeParseFailed  = "PARSE_FAILED"
	ErrCodeExportFailed = "EXPORT_FAILED"
	ErrCodeTimeout      = "TIMEOUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeRateLimited  = "RATE_LIMITED"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// ErrorDetail is the structured error carried by every failed response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type RepoEntry struct {
	Name string `json:"name"`
	Link string `json:"link"`
}

// ScrapeResponse is the response for POST /api/v1/scrape.
type ScrapeResponse struct {
	Success bool         `json:"success"`
	RunID   string       `json:"run_id,omitempty"`
	Repos   []RepoEntry  `json:"repos,omitempty"`
	CSVPath string       `json:"csv_path,omitempty"`
	TookMs  int64        `json:"took_ms"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type SnapshotEntry struct {
	RunID     string    `json:"run_id"`
	SourceUrl string    `json:"source_url"`
	TakenAt   time.Time `json:"taken_at"`
	RepoCount int       `json:"repo_count"`
}

// SnapshotListResponse is the response for GET /api/v1/snapshots.
type SnapshotListResponse struct {
	Success   bool            `json:"success"`
	Snapshots []SnapshotEntry `json:"snapshots"`
	Error     *ErrorDetail    `json:"error,omitempty"`
}

type SnapshotDetail struct {
	RunID     string      `json:"run_id"`
	SourceUrl string      `json:"source_url"`
	TakenAt   time.Time   `json:"taken_at"`
	Repos     []RepoEntry `json:"repos"`
}

// SnapshotResponse is the response for GET /api/v1/snapshots/:runID.
type SnapshotResponse struct {
	Success  bool            `json:"success"`
	Snapshot *SnapshotDetail `json:"snapshot,omitempty"`
	Error    *ErrorDetail    `json:"error,omitempty"`
}

type SearchMatch struct {
	Name        string    `json:"name"`
	Link        string    `json:"link"`
	LastSeen    time.Time `json:"last_seen"`
	Appearances int       `json:"appearances"`
	Correlation float64   `json:"correlation"`
}

// SearchResponse is the response for GET /api/v1/repos/search.
type SearchResponse struct {
	Success bool          `json:"success"`
	Matches []SearchMatch `json:"matches"`
	Error   *ErrorDetail  `json:"error,omitempty"`
}

// HealthResponse is the response for GET /api/v1/health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Version string `json:"version"`
}
