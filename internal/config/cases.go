package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/docket/pkg/formatting"
)

// CasesConfig tunes the case store.
type CasesConfig struct {
	MaxDocumentSize      string `toml:"max_document_size"`
	CacheSize            int    `toml:"cache_size"`
	CacheTTL             string `toml:"cache_ttl"`
	HydrationConcurrency int    `toml:"hydration_concurrency"`
}

func (c *CasesConfig) MaxDocumentSizeBytes() int64 {
	size, _ := formatting.ParseBytes(c.MaxDocumentSize)
	return size
}

func (c *CasesConfig) CacheTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.CacheTTL)
	return d
}

func (c *CasesConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *CasesConfig) Merge(overlay *CasesConfig) {
	if overlay.MaxDocumentSize != "" {
		c.MaxDocumentSize = overlay.MaxDocumentSize
	}
	if overlay.CacheSize != 0 {
		c.CacheSize = overlay.CacheSize
	}
	if overlay.CacheTTL != "" {
		c.CacheTTL = overlay.CacheTTL
	}
	if overlay.HydrationConcurrency != 0 {
		c.HydrationConcurrency = overlay.HydrationConcurrency
	}
}

func (c *CasesConfig) loadDefaults() {
	if c.MaxDocumentSize == "" {
		c.MaxDocumentSize = "20MB"
	}
	if c.CacheSize == 0 {
		c.CacheSize = 64
	}
	if c.CacheTTL == "" {
		c.CacheTTL = "10m"
	}
	if c.HydrationConcurrency == 0 {
		c.HydrationConcurrency = 8
	}
}

func (c *CasesConfig) loadEnv() {
	if v := os.Getenv("DOCKET_CASES_MAX_DOCUMENT_SIZE"); v != "" {
		c.MaxDocumentSize = v
	}
	if v := os.Getenv("DOCKET_CASES_CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.CacheSize = n
		}
	}
	if v := os.Getenv("DOCKET_CASES_CACHE_TTL"); v != "" {
		c.CacheTTL = v
	}
	if v := os.Getenv("DOCKET_CASES_HYDRATION_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.HydrationConcurrency = n
		}
	}
}

func (c *CasesConfig) validate() error {
	if _, err := formatting.ParseBytes(c.MaxDocumentSize); err != nil {
		return fmt.Errorf("invalid max_document_size: %w", err)
	}
	if c.CacheSize < 1 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	if _, err := time.ParseDuration(c.CacheTTL); err != nil {
		return fmt.Errorf("invalid cache_ttl: %w", err)
	}
	if c.HydrationConcurrency < 1 {
		return fmt.Errorf("hydration_concurrency must be positive, got %d", c.HydrationConcurrency)
	}
	return nil
}
