package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"
)

// AssistantConfig configures the Gemini model behind /analyze and /chat.
type AssistantConfig struct {
	APIKey            string  `toml:"api_key"`
	Model             string  `toml:"model"`
	Timeout           string  `toml:"timeout"`
	Retries           int     `toml:"retries"`
	RetryDelay        string  `toml:"retry_delay"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

func (c *AssistantConfig) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *AssistantConfig) RetryDelayDuration() time.Duration {
	d, _ := time.ParseDuration(c.RetryDelay)
	return d
}

func (c *AssistantConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

func (c *AssistantConfig) Merge(overlay *AssistantConfig) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Retries != 0 {
		c.Retries = overlay.Retries
	}
	if overlay.RetryDelay != "" {
		c.RetryDelay = overlay.RetryDelay
	}
	if overlay.RequestsPerSecond != 0 {
		c.RequestsPerSecond = overlay.RequestsPerSecond
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *AssistantConfig) loadDefaults() {
	if c.Model == "" {
		c.Model = "gemini-2.5-flash"
	}
	if c.Timeout == "" {
		c.Timeout = "2m"
	}
	if c.Retries == 0 {
		c.Retries = 3
	}
	if c.RetryDelay == "" {
		c.RetryDelay = "500ms"
	}
	if c.RequestsPerSecond == 0 {
		c.RequestsPerSecond = 2
	}
	if c.Burst == 0 {
		c.Burst = 4
	}
}

func (c *AssistantConfig) loadEnv() {
	// GEMINI_API_KEY is what the Gemini tooling reads by default.
	for _, name := range []string{"GEMINI_API_KEY", "DOCKET_ASSISTANT_API_KEY"} {
		if v := os.Getenv(name); v != "" {
			c.APIKey = v
		}
	}
	if v := os.Getenv("DOCKET_ASSISTANT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("DOCKET_ASSISTANT_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("DOCKET_ASSISTANT_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Retries = n
		}
	}
	if v := os.Getenv("DOCKET_ASSISTANT_RETRY_DELAY"); v != "" {
		c.RetryDelay = v
	}
	if v := os.Getenv("DOCKET_ASSISTANT_REQUESTS_PER_SECOND"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.RequestsPerSecond = f
		}
	}
	if v := os.Getenv("DOCKET_ASSISTANT_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Burst = n
		}
	}
}

func (c *AssistantConfig) validate() error {
	if c.APIKey == "" {
		return errors.New("api_key is required (set GEMINI_API_KEY or DOCKET_ASSISTANT_API_KEY)")
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if _, err := time.ParseDuration(c.RetryDelay); err != nil {
		return fmt.Errorf("invalid retry_delay: %w", err)
	}
	if c.Retries < 1 {
		return fmt.Errorf("retries must be at least 1, got %d", c.Retries)
	}
	if c.RequestsPerSecond < 0 || c.Burst < 1 {
		return fmt.Errorf("invalid rate limit: %g/s burst %d", c.RequestsPerSecond, c.Burst)
	}
	return nil
}
