package database

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
)

// Config holds PostgreSQL connection and pool settings. Durations are kept
// as strings so they round-trip through TOML unchanged.
type Config struct {
	Host            string `toml:"host"`
	Port            int    `toml:"port"`
	Name            string `toml:"name"`
	User            string `toml:"user"`
	Password        string `toml:"password"`
	SSLMode         string `toml:"ssl_mode"`
	MaxOpenConns    int    `toml:"max_open_conns"`
	MaxIdleConns    int    `toml:"max_idle_conns"`
	ConnMaxLifetime string `toml:"conn_max_lifetime"`
	ConnTimeout     string `toml:"conn_timeout"`
}

func (c *Config) ConnMaxLifetimeDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnMaxLifetime)
	return d
}

func (c *Config) ConnTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ConnTimeout)
	return d
}

// Dsn is the key/value connection string handed to the pgx stdlib driver.
func (c *Config) Dsn() string {
	return fmt.Sprintf("host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.Host, c.Port, c.Name, c.User, c.Password, c.SSLMode)
}

// URL is the postgres:// form golang-migrate expects.
func (c *Config) URL() string {
	return (&url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, strconv.Itoa(c.Port)),
		Path:     c.Name,
		RawQuery: "sslmode=" + url.QueryEscape(c.SSLMode),
	}).String()
}

// Finalize fills defaults, applies overrides from envPrefix + HOST, PORT,
// NAME, USER, PASSWORD, SSL_MODE, MAX_OPEN_CONNS, MAX_IDLE_CONNS,
// CONN_MAX_LIFETIME and CONN_TIMEOUT, then validates. An empty prefix skips
// the environment.
func (c *Config) Finalize(envPrefix string) error {
	c.loadDefaults()
	if envPrefix != "" {
		c.loadEnv(envPrefix)
	}
	return c.validate()
}

// Merge copies every non-zero field of overlay.
func (c *Config) Merge(overlay *Config) {
	for dst, src := range c.strings(overlay) {
		if src != "" {
			*dst = src
		}
	}
	for dst, src := range c.ints(overlay) {
		if src != 0 {
			*dst = src
		}
	}
}

func (c *Config) strings(o *Config) map[*string]string {
	return map[*string]string{
		&c.Host:            o.Host,
		&c.Name:            o.Name,
		&c.User:            o.User,
		&c.Password:        o.Password,
		&c.SSLMode:         o.SSLMode,
		&c.ConnMaxLifetime: o.ConnMaxLifetime,
		&c.ConnTimeout:     o.ConnTimeout,
	}
}

func (c *Config) ints(o *Config) map[*int]int {
	return map[*int]int{
		&c.Port:         o.Port,
		&c.MaxOpenConns: o.MaxOpenConns,
		&c.MaxIdleConns: o.MaxIdleConns,
	}
}

// loadDefaults layers the configured values over the built-in ones.
func (c *Config) loadDefaults() {
	d := Config{
		Host:            "localhost",
		Port:            5432,
		SSLMode:         "disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: "15m",
		ConnTimeout:     "5s",
	}
	d.Merge(c)
	*c = d
}

func (c *Config) loadEnv(prefix string) {
	for key, dst := range map[string]*string{
		"HOST":              &c.Host,
		"NAME":              &c.Name,
		"USER":              &c.User,
		"PASSWORD":          &c.Password,
		"SSL_MODE":          &c.SSLMode,
		"CONN_MAX_LIFETIME": &c.ConnMaxLifetime,
		"CONN_TIMEOUT":      &c.ConnTimeout,
	} {
		if v := os.Getenv(prefix + key); v != "" {
			*dst = v
		}
	}
	for key, dst := range map[string]*int{
		"PORT":           &c.Port,
		"MAX_OPEN_CONNS": &c.MaxOpenConns,
		"MAX_IDLE_CONNS": &c.MaxIdleConns,
	} {
		if n, err := strconv.Atoi(os.Getenv(prefix + key)); err == nil {
			*dst = n
		}
	}
}

func (c *Config) validate() error {
	switch {
	case c.Name == "":
		return errors.New("name required")
	case c.User == "":
		return errors.New("user required")
	}
	if _, err := time.ParseDuration(c.ConnMaxLifetime); err != nil {
		return errors.Wrap(err, "invalid conn_max_lifetime")
	}
	if _, err := time.ParseDuration(c.ConnTimeout); err != nil {
		return errors.Wrap(err, "invalid conn_timeout")
	}
	return nil
}
