package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

// Config is the contents of config.yaml.
type Config struct {
	AngleMode string   `yaml:"angle_mode"`
	LogLevel  string   `yaml:"log_level"`
	LogFile   string   `yaml:"log_file"`
	History   History  `yaml:"history"`
	Currency  Currency `yaml:"currency"`
	Weather   Weather  `yaml:"weather"`
	Server    Server   `yaml:"server"`
}

type History struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
	Limit   int    `yaml:"limit"`
	Redis   Redis  `yaml:"redis"`
}

type Redis struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type Currency struct {
	BaseURL string        `yaml:"base_url"`
	APIKey  string        `yaml:"api_key"`
	Timeout time.Duration `yaml:"timeout"`
}

type Weather struct {
	GeocodingURL string        `yaml:"geocoding_url"`
	ForecastURL  string        `yaml:"forecast_url"`
	Timeout      time.Duration `yaml:"timeout"`
}

type Server struct {
	Addr string `yaml:"addr"`
}

// History backends.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		AngleMode: "RAD",
		LogLevel:  "info",
		History: History{
			Backend: BackendFile,
			Path:    filepath.Join(dataDir(), "history.json"),
			Limit:   200,
			Redis: Redis{
				Addr: "localhost:6379",
				Key:  "quantisuite:history",
			},
		},
		Currency: Currency{
			BaseURL: "https://v6.exchangerate-api.com/v6",
			Timeout: 10 * time.Second,
		},
		Weather: Weather{
			GeocodingURL: "https://geocoding-api.open-meteo.com/v1/search",
			ForecastURL:  "https://api.open-meteo.com/v1/forecast",
			Timeout:      10 * time.Second,
		},
		Server: Server{Addr: ":8080"},
	}
}

// DefaultPath is $XDG_CONFIG_HOME/quantisuite/config.yaml.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(dir, "quantisuite", "config.yaml")
}

func dataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "quantisuite")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".local", "share", "quantisuite")
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	cfg.History.Path = expandHome(cfg.History.Path)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the rest of the program cannot act on.
func (c Config) Validate() error {
	switch strings.ToUpper(c.AngleMode) {
	case "RAD", "DEG":
	default:
		return fmt.Errorf("%w: angle_mode %q", ErrInvalid, c.AngleMode)
	}
	switch c.History.Backend {
	case BackendFile, BackendMemory, BackendRedis, BackendSQLite:
	default:
		return fmt.Errorf("%w: history.backend %q", ErrInvalid, c.History.Backend)
	}
	if c.History.Limit <= 0 {
		return fmt.Errorf("%w: history.limit must be positive", ErrInvalid)
	}
	if (c.History.Backend == BackendFile || c.History.Backend == BackendSQLite) && c.History.Path == "" {
		return fmt.Errorf("%w: history.path is required for %s", ErrInvalid, c.History.Backend)
	}
	return nil
}

func expandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, strings.TrimPrefix(p, "~"))
}
