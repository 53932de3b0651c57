// Package config loads handtracker settings from an HCL file, a .env file,
// and the environment, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/joho/godotenv"

	"github.com/lox/handtracker/internal/game"
	"github.com/lox/handtracker/internal/stakes"
)

// DefaultFile is the config file looked up when none is given.
const DefaultFile = "handtracker.hcl"

// Environment overrides.
const (
	EnvDBDriver = "HANDTRACKER_DB_DRIVER"
	EnvDBPath   = "HANDTRACKER_DB_PATH"
	EnvDBDSN    = "HANDTRACKER_DB_DSN"
	EnvLogLevel = "HANDTRACKER_LOG_LEVEL"
	EnvHTTPPort = "HANDTRACKER_HTTP_PORT"
	EnvAPIToken = "HANDTRACKER_API_TOKEN"
)

// Config is the complete handtracker configuration.
type Config struct {
	Database DatabaseConfig
	Log      LogConfig
	Table    TableConfig
	Export   ExportConfig
	HTTP     HTTPConfig
}

// DatabaseConfig selects the store backend.
type DatabaseConfig struct {
	Driver string `hcl:"driver,optional"`
	Path   string `hcl:"path,optional"`
	DSN    string `hcl:"dsn,optional"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level string `hcl:"level,optional"`
	File  string `hcl:"file,optional"`
}

// TableConfig holds the defaults applied to new sessions and hands.
type TableConfig struct {
	Stakes        string `hcl:"stakes,optional"`
	GameType      string `hcl:"game_type,optional"`
	StartingStack int    `hcl:"starting_stack,optional"`
	Seats         int    `hcl:"seats,optional"`
	Order         string `hcl:"order,optional"`
}

// ExportConfig controls hand-history export.
type ExportConfig struct {
	Dir     string `hcl:"dir,optional"`
	Workers int    `hcl:"workers,optional"`
}

// HTTPConfig controls the API server. With a token or an auth URL set,
// every endpoint except /health needs a bearer token.
type HTTPConfig struct {
	Address    string `hcl:"address,optional"`
	Port       int    `hcl:"port,optional"`
	Token      string `hcl:"token,optional"`
	AuthURL    string `hcl:"auth_url,optional"`
	AuthSecret string `hcl:"auth_secret,optional"`
}

// fileConfig mirrors Config with every block optional.
type fileConfig struct {
	Database *DatabaseConfig `hcl:"database,block"`
	Log      *LogConfig      `hcl:"log,block"`
	Table    *TableConfig    `hcl:"table,block"`
	Export   *ExportConfig   `hcl:"export,block"`
	HTTP     *HTTPConfig     `hcl:"http,block"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   defaultDBPath(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Table: TableConfig{
			Stakes:        "1,2",
			GameType:      "NLHE",
			StartingStack: 200,
			Seats:         9,
			Order:         "seat",
		},
		Export: ExportConfig{
			Dir:     "exports",
			Workers: 4,
		},
		HTTP: HTTPConfig{
			Address: "localhost",
			Port:    8080,
		},
	}
}

func defaultDBPath() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "handtracker", "handtracker.db")
	}
	return "handtracker.db"
}

// Load reads filename (a missing file yields the defaults), then a .env file
// next to it if present, then the environment.
func Load(filename string) (*Config, error) {
	cfg := Default()

	if filename != "" {
		if _, err := os.Stat(filename); err == nil {
			if err := cfg.loadFile(filename); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}

		envFile := filepath.Join(filepath.Dir(filename), ".env")
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(filename string) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc fileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if d := fc.Database; d != nil {
		setString(&c.Database.Driver, d.Driver)
		setString(&c.Database.Path, d.Path)
		setString(&c.Database.DSN, d.DSN)
	}
	if l := fc.Log; l != nil {
		setString(&c.Log.Level, l.Level)
		setString(&c.Log.File, l.File)
	}
	if t := fc.Table; t != nil {
		setString(&c.Table.Stakes, t.Stakes)
		setString(&c.Table.GameType, t.GameType)
		setInt(&c.Table.StartingStack, t.StartingStack)
		setInt(&c.Table.Seats, t.Seats)
		setString(&c.Table.Order, t.Order)
	}
	if e := fc.Export; e != nil {
		setString(&c.Export.Dir, e.Dir)
		setInt(&c.Export.Workers, e.Workers)
	}
	if h := fc.HTTP; h != nil {
		setString(&c.HTTP.Address, h.Address)
		setInt(&c.HTTP.Port, h.Port)
		setString(&c.HTTP.Token, h.Token)
		setString(&c.HTTP.AuthURL, h.AuthURL)
		setString(&c.HTTP.AuthSecret, h.AuthSecret)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(EnvDBDriver); ok {
		setString(&c.Database.Driver, v)
	}
	if v, ok := os.LookupEnv(EnvDBPath); ok {
		setString(&c.Database.Path, v)
	}
	if v, ok := os.LookupEnv(EnvDBDSN); ok {
		setString(&c.Database.DSN, v)
	}
	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		setString(&c.Log.Level, v)
	}
	if v, ok := os.LookupEnv(EnvAPIToken); ok {
		setString(&c.HTTP.Token, v)
	}
	if v, ok := os.LookupEnv(EnvHTTPPort); ok && strings.TrimSpace(v) != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s: %w", EnvHTTPPort, err)
		}
		c.HTTP.Port = port
	}
	return nil
}

func setString(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func setInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Database.Driver) {
	case "sqlite", "sqlite3":
		if c.Database.Path == "" {
			return fmt.Errorf("database: sqlite needs a path")
		}
	case "postgres", "postgresql", "pgx":
		if c.Database.DSN == "" {
			return fmt.Errorf("database: postgres needs a dsn")
		}
	default:
		return fmt.Errorf("database: unsupported driver %q", c.Database.Driver)
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: invalid level %q", c.Log.Level)
	}

	if _, err := c.DefaultStakes(); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if _, err := game.ParseOrderPolicy(c.Table.Order); err != nil {
		return fmt.Errorf("table: %w", err)
	}
	if c.Table.StartingStack < 0 {
		return fmt.Errorf("table: starting stack must not be negative")
	}
	if c.Table.Seats < 2 || c.Table.Seats > 10 {
		return fmt.Errorf("table: seats must be between 2 and 10")
	}

	if c.Export.Workers < 1 {
		return fmt.Errorf("export: workers must be positive")
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http: invalid port: %d", c.HTTP.Port)
	}
	if c.HTTP.Token != "" && c.HTTP.AuthURL != "" {
		return fmt.Errorf("http: set token or auth_url, not both")
	}
	return nil
}

// DefaultStakes parses the table's default stakes.
func (c *Config) DefaultStakes() (game.Stakes, error) {
	return stakes.Parse(c.Table.Stakes)
}

// DefaultOrder parses the table's action-order policy.
func (c *Config) DefaultOrder() game.OrderPolicy {
	o, _ := game.ParseOrderPolicy(c.Table.Order)
	return o
}

// ListenAddress returns the API server's host:port.
func (c *Config) ListenAddress() string {
	return fmt.Sprintf("%s:%d", c.HTTP.Address, c.HTTP.Port)
}
