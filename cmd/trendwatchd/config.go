package main

import (
	configsqlite "trendwatch-backend/lib/configutil/sqlite"
	"trendwatch-backend/services/trending"
	"trendwatch-backend/services/trending/server"
)

type Config struct {
	Scraper  trending.Config       `json:"scraper"`
	Database configsqlite.Struct   `json:"database"`
	Server   server.Config         `json:"server"`
	Digest   trending.DigestConfig `json:"digest"`
	// ScrapeHour is the local hour (0-23) of the daily scheduled
	// scrape. When unset the api is the only trigger.
	ScrapeHour *int `json:"scrape_hour"`
	// RetentionDays drops snapshots older than this many days after
	// each scheduled scrape. Zero keeps everything.
	RetentionDays int    `json:"retention_days"`
	Timezone      string `json:"timezone"`
	Verbose       bool   `json:"verbose"`
}
