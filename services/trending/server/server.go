package server

import (
	"time"

	"trendwatch-backend/lib/trendstore"
	"trendwatch-backend/services/trending"

	"github.com/gin-gonic/gin"
)

const Version = "0.1.0"

type Config struct {
	Port        int    `json:"port"`
	AccessToken string `json:"access_token"`
	// RateRps caps requests per second per client ip. Zero disables
	// rate limiting.
	RateRps   float64 `json:"rate_rps"`
	RateBurst int     `json:"rate_burst"`
}

// NewRouter wires up the http api:
//
//	GET  /                         trigger page
//	GET  /api/v1/health            liveness probe, outside auth
//	POST /api/v1/scrape            run the pipeline once
//	GET  /api/v1/snapshots         recorded runs, newest first
//	GET  /api/v1/snapshots/latest  the most recent run
//	GET  /api/v1/snapshots/:runID  one recorded run with its repos
//	GET  /api/v1/repos/search      fuzzy search over recorded repos
func NewRouter(service trending.Service, store trendstore.Store, cfg Config, startTime time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/", Index())

	v1 := r.Group("/api/v1")
	v1.GET("/health", Health(startTime))

	protected := v1.Group("")
	protected.Use(Auth(cfg.AccessToken))
	if cfg.RateRps > 0 {
		protected.Use(RateLimit(cfg.RateRps, cfg.RateBurst))
	}

	protected.POST("/scrape", Scrape(service))
	protected.GET("/snapshots", ListSnapshots(store))
	protected.GET("/snapshots/latest", LatestSnapshot(store))
	protected.GET("/snapshots/:runID", GetSnapshot(store))
	protected.GET("/repos/search", SearchRepos(service))

	return r
}
