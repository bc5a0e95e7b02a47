package middleware

import (
	"os"
	"strconv"
	"strings"
)

// CORSConfig is the cross-origin policy for browser clients of the API.
type CORSConfig struct {
	Enabled          bool     `toml:"enabled"`
	Origins          []string `toml:"origins"`
	AllowedMethods   []string `toml:"allowed_methods"`
	AllowedHeaders   []string `toml:"allowed_headers"`
	AllowCredentials bool     `toml:"allow_credentials"`
	MaxAge           int      `toml:"max_age"`
}

// Finalize fills defaults, then applies overrides from environment variables
// named envPrefix + ENABLED, ORIGINS, ALLOWED_METHODS, ALLOWED_HEADERS,
// ALLOW_CREDENTIALS and MAX_AGE. An empty prefix skips the environment.
func (c *CORSConfig) Finalize(envPrefix string) error {
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = []string{"Content-Type"}
	}
	if c.MaxAge <= 0 {
		c.MaxAge = 3600
	}

	if envPrefix != "" {
		c.loadEnv(envPrefix)
	}
	return nil
}

// Merge applies overlay. Booleans always win; lists and MaxAge only when set.
func (c *CORSConfig) Merge(overlay *CORSConfig) {
	c.Enabled = overlay.Enabled
	c.AllowCredentials = overlay.AllowCredentials

	for dst, src := range map[*[]string][]string{
		&c.Origins:        overlay.Origins,
		&c.AllowedMethods: overlay.AllowedMethods,
		&c.AllowedHeaders: overlay.AllowedHeaders,
	} {
		if src != nil {
			*dst = src
		}
	}
	if overlay.MaxAge > 0 {
		c.MaxAge = overlay.MaxAge
	}
}

func (c *CORSConfig) loadEnv(prefix string) {
	env := func(key string) (string, bool) {
		v := os.Getenv(prefix + key)
		return v, v != ""
	}

	if v, ok := env("ENABLED"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Enabled = b
		}
	}
	if v, ok := env("ALLOW_CREDENTIALS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.AllowCredentials = b
		}
	}
	if v, ok := env("MAX_AGE"); ok {
		if n, err := strconv.Atoi(v); err == nil {
			c.MaxAge = n
		}
	}
	if v, ok := env("ORIGINS"); ok {
		c.Origins = splitList(v)
	}
	if v, ok := env("ALLOWED_METHODS"); ok {
		c.AllowedMethods = splitList(v)
	}
	if v, ok := env("ALLOWED_HEADERS"); ok {
		c.AllowedHeaders = splitList(v)
	}
}

func splitList(v string) []string {
	var out []string
	for item := range strings.SplitSeq(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
