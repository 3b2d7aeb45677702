// Package config loads pipeline settings from the environment with sane
// defaults, the only required external piece being the sources file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Sources
	SourcesConfigPath string

	// Store settings
	StoreFilePath string
	MaxArticles   int // eviction cap

	// Recency filter
	RecencyFilter bool // on by default; off trusts the cap alone
	MaxAgeHours   int

	// Extraction settings
	FeedItemLimit  int
	PageItemLimit  int
	RequestTimeout time.Duration
	ScrapeDelayMin time.Duration
	ScrapeDelayMax time.Duration

	// Content enrichment (full-article extraction for thin descriptions)
	EnrichContent    bool
	EnrichMaxPerRun  int
	EnrichMinSummary int

	// Translation pass (post-run, for the rendering side)
	TranslateEnabled   bool
	TranslateTarget    string
	TranslateCachePath string

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		SourcesConfigPath:  "configs/sources.yaml",
		StoreFilePath:      "data/ai_news.json",
		MaxArticles:        500,
		RecencyFilter:      true,
		MaxAgeHours:        24,
		FeedItemLimit:      25,
		PageItemLimit:      20,
		RequestTimeout:     15 * time.Second,
		ScrapeDelayMin:     300 * time.Millisecond,
		ScrapeDelayMax:     800 * time.Millisecond,
		EnrichMaxPerRun:    5,
		EnrichMinSummary:   80,
		TranslateTarget:    "fr",
		TranslateCachePath: "data/translation_cache.json",
	}

	cfg.SourcesConfigPath = getEnvOrDefault("SOURCES_CONFIG_PATH", cfg.SourcesConfigPath)
	cfg.StoreFilePath = getEnvOrDefault("STORE_FILE_PATH", cfg.StoreFilePath)
	cfg.MaxArticles = getEnvIntOrDefault("MAX_ARTICLES", cfg.MaxArticles)
	cfg.MaxAgeHours = getEnvIntOrDefault("MAX_AGE_HOURS", cfg.MaxAgeHours)
	cfg.FeedItemLimit = getEnvIntOrDefault("FEED_ITEM_LIMIT", cfg.FeedItemLimit)
	cfg.PageItemLimit = getEnvIntOrDefault("PAGE_ITEM_LIMIT", cfg.PageItemLimit)

	if v := os.Getenv("RECENCY_FILTER"); v != "" {
		cfg.RecencyFilter = v == "true"
	}
	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	if os.Getenv("ENRICH_CONTENT") == "true" {
		cfg.EnrichContent = true
	}
	cfg.EnrichMaxPerRun = getEnvIntOrDefault("ENRICH_MAX_PER_RUN", cfg.EnrichMaxPerRun)

	if os.Getenv("TRANSLATE_ENABLED") == "true" {
		cfg.TranslateEnabled = true
	}
	cfg.TranslateTarget = getEnvOrDefault("TRANSLATE_TARGET", cfg.TranslateTarget)
	cfg.TranslateCachePath = getEnvOrDefault("TRANSLATE_CACHE_PATH", cfg.TranslateCachePath)

	if os.Getenv("DEBUG") == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.SourcesConfigPath == "" {
		return fmt.Errorf("SOURCES_CONFIG_PATH is required")
	}
	if c.StoreFilePath == "" {
		return fmt.Errorf("STORE_FILE_PATH is required")
	}
	if c.MaxArticles <= 0 {
		return fmt.Errorf("MAX_ARTICLES must be positive")
	}
	if c.RecencyFilter && c.MaxAgeHours <= 0 {
		return fmt.Errorf("MAX_AGE_HOURS must be positive when the recency filter is on")
	}
	return nil
}
