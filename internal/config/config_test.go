package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/docket/internal/config"
)

const baseConfig = `
version = "0.1.0"

[server]
port = 8080

[database]
host = "localhost"
name = "docket"
user = "docket"
password = "docket"

[storage]
container_name = "cases"
connection_string = "DefaultEndpointsProtocol=http;AccountName=docketstore;AccountKey=key;BlobEndpoint=http://127.0.0.1:10000/docketstore;"

[api]
max_request_size = "40MB"

[cases]
max_document_size = "25MB"
cache_ttl = "5m"

[assistant]
api_key = "file-key"
retries = 5

[desk]
base_url = "http://localhost:8080/api"
analysis_timeout = "90s"
`

const overlayConfig = `
[server]
port = 9090

[assistant]
model = "gemini-2.5-pro"

[desk]
chat_timeout = "45s"
`

func writeConfigs(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	t.Chdir(dir)
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "DOCKET_") || name == "GEMINI_API_KEY" {
			t.Setenv(name, "")
		}
	}
}

func TestLoadBase(t *testing.T) {
	clearEnv(t)
	writeConfigs(t, map[string]string{config.BaseConfigFile: baseConfig})

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %s, want default /api", cfg.API.BasePath)
	}
	if got := cfg.API.MaxRequestSizeBytes(); got != 40*1024*1024 {
		t.Errorf("max request size = %d", got)
	}
	if got := cfg.Cases.MaxDocumentSizeBytes(); got != 25*1024*1024 {
		t.Errorf("max document size = %d", got)
	}
	if cfg.Cases.CacheTTLDuration() != 5*time.Minute {
		t.Errorf("cache ttl = %s", cfg.Cases.CacheTTLDuration())
	}
	if cfg.Cases.CacheSize != 64 || cfg.Cases.HydrationConcurrency != 8 {
		t.Errorf("cases defaults = %+v", cfg.Cases)
	}
	if cfg.Assistant.Model != "gemini-2.5-flash" {
		t.Errorf("model = %s, want gemini-2.5-flash", cfg.Assistant.Model)
	}
	if cfg.Assistant.Retries != 5 {
		t.Errorf("retries = %d, want 5", cfg.Assistant.Retries)
	}
	if cfg.Desk.AnalysisTimeoutDuration() != 90*time.Second {
		t.Errorf("analysis timeout = %s", cfg.Desk.AnalysisTimeoutDuration())
	}
	if cfg.Desk.ChatTimeoutDuration() != 2*time.Minute {
		t.Errorf("chat timeout = %s, want default 2m", cfg.Desk.ChatTimeoutDuration())
	}
}

func TestLoadOverlay(t *testing.T) {
	clearEnv(t)
	writeConfigs(t, map[string]string{
		config.BaseConfigFile:  baseConfig,
		"config.staging.toml": overlayConfig,
	})
	t.Setenv(config.EnvDocketEnv, "staging")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d, want overlay 9090", cfg.Server.Port)
	}
	if cfg.Assistant.Model != "gemini-2.5-pro" {
		t.Errorf("model = %s, want overlay", cfg.Assistant.Model)
	}
	if cfg.Assistant.Retries != 5 {
		t.Errorf("retries = %d, base value should survive the overlay", cfg.Assistant.Retries)
	}
	if cfg.Desk.ChatTimeoutDuration() != 45*time.Second {
		t.Errorf("chat timeout = %s", cfg.Desk.ChatTimeoutDuration())
	}
	if cfg.Env() != "staging" {
		t.Errorf("Env() = %s", cfg.Env())
	}
}

func TestEnvOverrides(t *testing.T) {
	clearEnv(t)
	writeConfigs(t, map[string]string{config.BaseConfigFile: baseConfig})

	t.Setenv("DOCKET_SERVER_PORT", "7070")
	t.Setenv("DOCKET_DB_HOST", "db.internal")
	t.Setenv("GEMINI_API_KEY", "env-key")
	t.Setenv("DOCKET_ASSISTANT_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("DOCKET_DESK_BASE_URL", "https://docket.example.com/api")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.Database.Host != "db.internal" {
		t.Errorf("db host = %s", cfg.Database.Host)
	}
	if cfg.Assistant.APIKey != "env-key" {
		t.Errorf("api key = %s", cfg.Assistant.APIKey)
	}
	if cfg.Assistant.RequestsPerSecond != 0.5 {
		t.Errorf("rps = %g", cfg.Assistant.RequestsPerSecond)
	}
	if cfg.Desk.BaseURL != "https://docket.example.com/api" {
		t.Errorf("base url = %s", cfg.Desk.BaseURL)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"missing api key", map[string]string{"DOCKET_ASSISTANT_API_KEY": ""}, "api_key"},
		{"bad port", map[string]string{"DOCKET_SERVER_PORT": "70000"}, "invalid port"},
		{"bad document size", map[string]string{"DOCKET_CASES_MAX_DOCUMENT_SIZE": "lots"}, "max_document_size"},
		{"bad desk url", map[string]string{"DOCKET_DESK_BASE_URL": "localhost"}, "base_url"},
		{"bad chat timeout", map[string]string{"DOCKET_DESK_CHAT_TIMEOUT": "soon"}, "chat_timeout"},
	}

	minimal := `
[database]
name = "docket"
user = "docket"

[storage]
connection_string = "UseDevelopmentStorage=true"
`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			writeConfigs(t, map[string]string{config.BaseConfigFile: minimal})
			t.Setenv("DOCKET_ASSISTANT_API_KEY", "key")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.Load()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoadClientSkipsServerSections(t *testing.T) {
	clearEnv(t)
	writeConfigs(t, map[string]string{})
	t.Setenv("DOCKET_DESK_REQUEST_TIMEOUT", "5s")

	cfg, err := config.LoadClient()
	if err != nil {
		t.Fatalf("LoadClient() error: %v", err)
	}
	if cfg.Desk.BaseURL != "http://localhost:8080/api" {
		t.Errorf("base url = %s", cfg.Desk.BaseURL)
	}
	if cfg.Desk.RequestTimeoutDuration() != 5*time.Second {
		t.Errorf("request timeout = %s", cfg.Desk.RequestTimeoutDuration())
	}
}
