// Package config provides YAML-based configuration with full defaults
// and a small set of environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the root configuration structure
type AppConfig struct {
	Server  ServerConfig  `yaml:"server"`
	Engine  EngineConfig  `yaml:"engine"`
	Staging StagingConfig `yaml:"staging"`
	Audit   AuditConfig   `yaml:"audit"`
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Port                   int    `yaml:"port"`
	BindAddress            string `yaml:"bind_address"`
	ReadTimeout            int    `yaml:"read_timeout_seconds"`
	WriteTimeout           int    `yaml:"write_timeout_seconds"`
	IdleTimeout            int    `yaml:"idle_timeout_seconds"`
	BodyLimit              string `yaml:"body_limit"`
	EnableCORS             bool   `yaml:"enable_cors"`
	AllowOrigins           string `yaml:"allow_origins"`
	EnableShutdownEndpoint bool   `yaml:"enable_shutdown_endpoint"`
}

// EngineConfig contains scan engine settings
type EngineConfig struct {
	// ClamdAddress is a TCP URL ("tcp://host:3310") or unix socket path.
	ClamdAddress string `yaml:"clamd_address"`
	// SignatureCount overrides the database signature total, which the
	// clamd wire protocol does not report. Zero leaves it unset.
	SignatureCount uint32 `yaml:"signature_count"`
}

// StagingConfig contains temporary upload storage settings
type StagingConfig struct {
	Dir string `yaml:"dir"`
}

// AuditConfig contains scan journal settings
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level                string `yaml:"level"`
	EnableRequestLogging bool   `yaml:"enable_request_logging"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:         8000,
			BindAddress:  "0.0.0.0",
			ReadTimeout:  300,
			WriteTimeout: 300,
			IdleTimeout:  120,
			BodyLimit:    "1G",
			AllowOrigins: "*",
		},
		Engine: EngineConfig{
			ClamdAddress: "tcp://127.0.0.1:3310",
		},
		Staging: StagingConfig{
			Dir: filepath.Join(os.TempDir(), "reefspect"),
		},
		Audit: AuditConfig{
			Enabled: false,
			Path:    "data/scans.duckdb",
		},
		Logging: LoggingConfig{
			Level:                "info",
			EnableRequestLogging: true,
		},
	}
}

// LoadConfig reads the YAML config at path, falling back to defaults
// when the file does not exist, then applies environment overrides.
func LoadConfig(path string) (*AppConfig, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	applyEnvOverrides(cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := os.Getenv("REEFSPECT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REEFSPECT_CLAMD_ADDRESS"); v != "" {
		cfg.Engine.ClamdAddress = v
	}
	if v := os.Getenv("REEFSPECT_STAGING_DIR"); v != "" {
		cfg.Staging.Dir = v
	}
}

// GetServerAddr returns the host:port the server binds to.
func (c *AppConfig) GetServerAddr() string {
	return net.JoinHostPort(c.Server.BindAddress, strconv.Itoa(c.Server.Port))
}

// EnsureDirectories creates the staging and journal directories.
func (c *AppConfig) EnsureDirectories() error {
	if err := os.MkdirAll(c.Staging.Dir, 0o700); err != nil {
		return fmt.Errorf("creating staging directory: %w", err)
	}
	if c.Audit.Enabled {
		if dir := filepath.Dir(c.Audit.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating journal directory: %w", err)
			}
		}
	}
	return nil
}

// LogLevel maps the configured level onto slog.
func (c *AppConfig) LogLevel() slog.Level {
	switch strings.ToLower(c.Logging.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
