package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"slices"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	UI       UIConfig       `toml:"ui"`
	Logging  LoggingConfig  `toml:"logging"`
}

type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type ServerConfig struct {
	Bind        string `toml:"bind"`
	APIEndpoint string `toml:"api_endpoint"`
	MCPEndpoint string `toml:"mcp_endpoint"`
}

type UIConfig struct {
	DevTypes         []string `toml:"dev_types"`
	ShowSpendColumns bool     `toml:"show_spend_columns"`
	HighlightMillis  int      `toml:"highlight_millis"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

func Default(dbPath string) Config {
	return Config{
		API: APIConfig{
			BaseURL:        "http://127.0.0.1:8080",
			TimeoutSeconds: 15,
		},
		Database: DatabaseConfig{
			Path: dbPath,
		},
		Server: ServerConfig{
			Bind:        "127.0.0.1:8080",
			APIEndpoint: "/api/v1",
			MCPEndpoint: "/mcp",
		},
		UI: UIConfig{
			DevTypes:         []string{"Interconnection", "Permitting", "Due Diligence"},
			ShowSpendColumns: true,
			HighlightMillis:  2200,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if len(content) == 0 {
		return cfg, nil
	}

	if err := toml.Unmarshal(content, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode toml: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	base := strings.TrimSpace(c.API.BaseURL)
	if base == "" {
		return errors.New("api.base_url is required")
	}
	parsed, err := url.Parse(base)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid api.base_url: %q", c.API.BaseURL)
	}
	if c.API.TimeoutSeconds <= 0 {
		return errors.New("api.timeout_seconds must be > 0")
	}

	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path is required")
	}

	if strings.TrimSpace(c.Server.Bind) == "" {
		return errors.New("server.bind is required")
	}
	if normalizePath(c.Server.APIEndpoint) == normalizePath(c.Server.MCPEndpoint) {
		return errors.New("server.api_endpoint and server.mcp_endpoint must differ")
	}

	seen := map[string]struct{}{}
	for i, devType := range c.UI.DevTypes {
		d := strings.TrimSpace(devType)
		if d == "" {
			return fmt.Errorf("ui.dev_types[%d] is empty", i)
		}
		key := strings.ToLower(d)
		if _, ok := seen[key]; ok {
			return fmt.Errorf("ui.dev_types[%d] is duplicated: %s", i, d)
		}
		seen[key] = struct{}{}
	}
	if c.UI.HighlightMillis < 0 {
		return errors.New("ui.highlight_millis must be >= 0")
	}

	level := strings.TrimSpace(strings.ToLower(c.Logging.Level))
	if level != "" && !slices.Contains([]string{"debug", "info", "warn", "error"}, level) {
		return fmt.Errorf("invalid logging.level: %q", c.Logging.Level)
	}

	return nil
}

func normalizePath(path string) string {
	return "/" + strings.Trim(strings.TrimSpace(path), "/")
}
