package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	defaults := Default("/tmp/devtrack.db")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.toml"), defaults)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != defaults.API.BaseURL {
		t.Fatalf("base url = %q, want default", cfg.API.BaseURL)
	}
	if len(cfg.UI.DevTypes) != 3 {
		t.Fatalf("dev types = %v", cfg.UI.DevTypes)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "devtrack.toml")
	content := `
[api]
base_url = "http://localhost:9090"
timeout_seconds = 30

[ui]
dev_types = ["Interconnection", "Permitting"]
show_spend_columns = false

[logging]
level = "debug"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := Load(path, Default("/tmp/devtrack.db"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "http://localhost:9090" {
		t.Fatalf("base url = %q", cfg.API.BaseURL)
	}
	if cfg.API.TimeoutSeconds != 30 {
		t.Fatalf("timeout = %d", cfg.API.TimeoutSeconds)
	}
	if len(cfg.UI.DevTypes) != 2 {
		t.Fatalf("dev types = %v", cfg.UI.DevTypes)
	}
	if cfg.UI.ShowSpendColumns {
		t.Fatal("show_spend_columns should be overridden to false")
	}
	if cfg.Database.Path != "/tmp/devtrack.db" {
		t.Fatalf("database path = %q, want default retained", cfg.Database.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("logging level = %q", cfg.Logging.Level)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantMsg string
	}{
		{
			name:    "empty base url",
			mutate:  func(c *Config) { c.API.BaseURL = " " },
			wantMsg: "api.base_url",
		},
		{
			name:    "malformed base url",
			mutate:  func(c *Config) { c.API.BaseURL = "not a url" },
			wantMsg: "api.base_url",
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.API.TimeoutSeconds = 0 },
			wantMsg: "timeout_seconds",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Database.Path = "" },
			wantMsg: "database.path",
		},
		{
			name: "colliding endpoints",
			mutate: func(c *Config) {
				c.Server.APIEndpoint = "/mcp"
				c.Server.MCPEndpoint = "mcp"
			},
			wantMsg: "must differ",
		},
		{
			name:    "duplicate dev type",
			mutate:  func(c *Config) { c.UI.DevTypes = []string{"Permitting", "permitting"} },
			wantMsg: "duplicated",
		},
		{
			name:    "unknown logging level",
			mutate:  func(c *Config) { c.Logging.Level = "loud" },
			wantMsg: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default("/tmp/devtrack.db")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("Validate() error = %v, want message containing %q", err, tt.wantMsg)
			}
		})
	}
}
