package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultBackendURL is the hosted recommendation backend
const DefaultBackendURL = "https://movie-recommendation-system-8a1e.onrender.com"

// Config holds all application configuration
type Config struct {
	Backend BackendConfig `mapstructure:"backend"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// BackendConfig holds recommendation backend settings
type BackendConfig struct {
	URL        string        `mapstructure:"url" validate:"required,http_url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
	Retries    int           `mapstructure:"retries" validate:"min=0,max=5"`
	TFIDFTopN  int           `mapstructure:"tfidf_top_n" validate:"min=1,max=100"`
	GenreLimit int           `mapstructure:"genre_limit" validate:"min=1,max=100"`
}

// CacheConfig holds response memoization settings
type CacheConfig struct {
	TTL  time.Duration `mapstructure:"ttl" validate:"min=0"` // 0 disables memoization
	Path string        `mapstructure:"path"`                 // bbolt file; empty = memory only, "default" = DefaultCachePath()
}

// UIConfig holds presentation settings shared by the terminal and web UI
type UIConfig struct {
	GridColumns  int    `mapstructure:"grid_columns" validate:"min=4,max=8"`
	HomeCategory string `mapstructure:"home_category" validate:"required"`
	HomeLimit    int    `mapstructure:"home_limit" validate:"min=1,max=100"`
	SearchLimit  int    `mapstructure:"search_limit" validate:"min=1,max=100"`
}

// ServerConfig holds web mode settings
type ServerConfig struct {
	Addr      string `mapstructure:"addr" validate:"required"`
	RateLimit int    `mapstructure:"rate_limit" validate:"min=0"` // requests per minute per IP; 0 = unlimited
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level" validate:"omitempty,oneof=DEBUG INFO WARN WARNING ERROR debug info warn warning error"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Backend: BackendConfig{
			URL:        DefaultBackendURL,
			Timeout:    20 * time.Second,
			Retries:    1,
			TFIDFTopN:  12,
			GenreLimit: 12,
		},
		Cache: CacheConfig{
			TTL:  30 * time.Second,
			Path: "",
		},
		UI: UIConfig{
			GridColumns:  6,
			HomeCategory: "trending",
			HomeLimit:    24,
			SearchLimit:  24,
		},
		Server: ServerConfig{
			Addr:      ":8080",
			RateLimit: 120,
		},
		Logging: LoggingConfig{
			File:  defaultLogPath(),
			Level: "INFO",
		},
	}
}

// defaultLogPath returns the default log file path for the current OS
func defaultLogPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee", "marquee.log")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "marquee.log")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "marquee")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, "marquee")
		}
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "marquee")
	}
}

// CachePathDefault selects DefaultCachePath for cache.path
const CachePathDefault = "default"

// DefaultCachePath returns where the persistent response cache lives when enabled
func DefaultCachePath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "marquee", "cache.db")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "marquee", "cache.db")
	}
}

// LoadConfig loads configuration from file and environment.
// An explicit path must exist; otherwise the default locations are searched
// and a missing file is fine.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	v := viper.New()

	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (MARQUEE_BACKEND_URL, MARQUEE_UI_GRID_COLUMNS, ...)
	v.SetEnvPrefix("MARQUEE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// API_BASE is the historical name for the backend URL
	if err := v.BindEnv("backend.url", "MARQUEE_BACKEND_URL", "API_BASE"); err != nil {
		return nil, fmt.Errorf("error binding environment: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Backend.URL = strings.TrimRight(strings.TrimSpace(cfg.Backend.URL), "/")
	if cfg.Cache.Path == CachePathDefault {
		cfg.Cache.Path = DefaultCachePath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can override it
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("backend.url", cfg.Backend.URL)
	v.SetDefault("backend.timeout", cfg.Backend.Timeout)
	v.SetDefault("backend.retries", cfg.Backend.Retries)
	v.SetDefault("backend.tfidf_top_n", cfg.Backend.TFIDFTopN)
	v.SetDefault("backend.genre_limit", cfg.Backend.GenreLimit)

	v.SetDefault("cache.ttl", cfg.Cache.TTL)
	v.SetDefault("cache.path", cfg.Cache.Path)

	v.SetDefault("ui.grid_columns", cfg.UI.GridColumns)
	v.SetDefault("ui.home_category", cfg.UI.HomeCategory)
	v.SetDefault("ui.home_limit", cfg.UI.HomeLimit)
	v.SetDefault("ui.search_limit", cfg.UI.SearchLimit)

	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.rate_limit", cfg.Server.RateLimit)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field constraints and reports every violation at once
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q (got %v)", fieldPath(fe.Namespace()), fe.Tag(), fe.Value()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

// fieldPath drops the root struct name ("Config.UI.GridColumns" -> "UI.GridColumns")
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}
