package config

import (
	"fmt"
	"net/url"
	"os"
	"time"
)

// DeskConfig configures the lawyer desk client.
type DeskConfig struct {
	BaseURL         string `toml:"base_url"`
	RequestTimeout  string `toml:"request_timeout"`
	AnalysisTimeout string `toml:"analysis_timeout"`
	ChatTimeout     string `toml:"chat_timeout"`
}

func (c *DeskConfig) RequestTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.RequestTimeout)
	return d
}

func (c *DeskConfig) AnalysisTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.AnalysisTimeout)
	return d
}

func (c *DeskConfig) ChatTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ChatTimeout)
	return d
}

func (c *DeskConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *DeskConfig) Merge(overlay *DeskConfig) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.RequestTimeout != "" {
		c.RequestTimeout = overlay.RequestTimeout
	}
	if overlay.AnalysisTimeout != "" {
		c.AnalysisTimeout = overlay.AnalysisTimeout
	}
	if overlay.ChatTimeout != "" {
		c.ChatTimeout = overlay.ChatTimeout
	}
}

func (c *DeskConfig) loadDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "http://localhost:8080/api"
	}
	if c.RequestTimeout == "" {
		c.RequestTimeout = "30s"
	}
	if c.AnalysisTimeout == "" {
		c.AnalysisTimeout = "3m"
	}
	if c.ChatTimeout == "" {
		c.ChatTimeout = "2m"
	}
}

func (c *DeskConfig) loadEnv() {
	if v := os.Getenv("DOCKET_DESK_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("DOCKET_DESK_REQUEST_TIMEOUT"); v != "" {
		c.RequestTimeout = v
	}
	if v := os.Getenv("DOCKET_DESK_ANALYSIS_TIMEOUT"); v != "" {
		c.AnalysisTimeout = v
	}
	if v := os.Getenv("DOCKET_DESK_CHAT_TIMEOUT"); v != "" {
		c.ChatTimeout = v
	}
}

func (c *DeskConfig) validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("invalid base_url %q", c.BaseURL)
	}
	for name, v := range map[string]string{
		"request_timeout":  c.RequestTimeout,
		"analysis_timeout": c.AnalysisTimeout,
		"chat_timeout":     c.ChatTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
	}
	return nil
}
