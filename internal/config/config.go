package config

import (
	"os"
	"strconv"
)

type Config struct {
	AppEnv   string
	HTTPAddr string

	RedisAddr     string
	RedisPassword string

	// APIToken guards the scrape endpoints; empty disables auth.
	APIToken string

	// Scraper budget.
	PageLimitDefault  int
	PageLimitMax      int
	FetchTimeoutSec   int
	ScrapeConcurrency int

	// BrowserArgs overrides the fixed launch flag set when non-empty.
	BrowserArgs string
	// SiteProfileFile points at an optional YAML selector override.
	SiteProfileFile string

	TaskMaxRetries int
}

func getenv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Load() Config {
	return Config{
		AppEnv:   getenv("APP_ENV", "development"),
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		RedisAddr:     getenv("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		APIToken: os.Getenv("API_TOKEN"),

		PageLimitDefault:  getenvInt("PAGE_LIMIT_DEFAULT", 3),
		PageLimitMax:      getenvInt("PAGE_LIMIT_MAX", 50),
		FetchTimeoutSec:   getenvInt("FETCH_TIMEOUT_SEC", 20),
		ScrapeConcurrency: getenvInt("SCRAPE_CONCURRENCY", 2),

		BrowserArgs:     os.Getenv("BROWSER_ARGS"),
		SiteProfileFile: os.Getenv("SITE_PROFILE_FILE"),

		TaskMaxRetries: getenvInt("TASK_MAX_RETRIES", 3),
	}
}
