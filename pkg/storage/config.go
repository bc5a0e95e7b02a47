package storage

import (
	"os"

	"github.com/cockroachdb/errors"
)

// Config locates the blob container. A connection string wins; without one
// ServiceURL is used with the default Azure credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	ServiceURL       string `toml:"service_url"`
}

// UsesCredential reports whether the client authenticates through azidentity.
func (c *Config) UsesCredential() bool {
	return c.ConnectionString == "" && c.ServiceURL != ""
}

// Finalize defaults the container to "cases", applies envPrefix +
// CONTAINER_NAME, CONNECTION_STRING and SERVICE_URL, and requires an endpoint.
func (c *Config) Finalize(envPrefix string) error {
	if c.ContainerName == "" {
		c.ContainerName = "cases"
	}
	if envPrefix != "" {
		for key, dst := range c.fields() {
			if v := os.Getenv(envPrefix + key); v != "" {
				*dst = v
			}
		}
	}

	switch {
	case c.ContainerName == "":
		return errors.New("container_name required")
	case c.ConnectionString == "" && c.ServiceURL == "":
		return errors.New("connection_string or service_url required")
	}
	return nil
}

// Merge copies the non-empty fields of overlay.
func (c *Config) Merge(overlay *Config) {
	src := overlay.fields()
	for key, dst := range c.fields() {
		if v := *src[key]; v != "" {
			*dst = v
		}
	}
}

func (c *Config) fields() map[string]*string {
	return map[string]*string{
		"CONTAINER_NAME":    &c.ContainerName,
		"CONNECTION_STRING": &c.ConnectionString,
		"SERVICE_URL":       &c.ServiceURL,
	}
}
