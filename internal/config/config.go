// Package config loads server settings from an optional YAML file overlaid
// with PISCORE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix namespaces every environment override.
const EnvPrefix = "PISCORE_"

// PathEnv names the variable holding the config file path.
const PathEnv = EnvPrefix + "CONFIG"

const maxConfigFileSize = 1024 * 1024

// Config holds server settings.
type Config struct {
	Port               string        `koanf:"port" json:"port"`
	GinMode            string        `koanf:"gin_mode" json:"gin_mode"`
	LogLevel           string        `koanf:"log_level" json:"log_level"`
	CacheTTL           time.Duration `koanf:"cache_ttl" json:"cache_ttl"`
	RateLimitPerMinute int           `koanf:"rate_limit_per_minute" json:"rate_limit_per_minute"` // 0 disables
	AllowedOrigins     []string      `koanf:"allowed_origins" json:"allowed_origins"`
	PresetsFile        string        `koanf:"presets_file" json:"presets_file,omitempty"`
	MaxBodyBytes       int64         `koanf:"max_body_bytes" json:"max_body_bytes"`
	RequestTimeout     time.Duration `koanf:"request_timeout" json:"request_timeout"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout"`
}

// Default returns the settings used when nothing is configured.
func Default() Config {
	return Config{
		Port:               "8080",
		GinMode:            gin.ReleaseMode,
		LogLevel:           "info",
		CacheTTL:           15 * time.Minute,
		RateLimitPerMinute: 60,
		AllowedOrigins:     []string{"http://localhost:3000", "http://localhost:5173"},
		MaxBodyBytes:       64 * 1024,
		RequestTimeout:     10 * time.Second,
		ShutdownTimeout:    30 * time.Second,
	}
}

// Load reads the YAML file at path (or $PISCORE_CONFIG when path is empty),
// then applies environment overrides such as PISCORE_RATE_LIMIT_PER_MINUTE.
// A missing path means environment and defaults only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(PathEnv)
	}
	if path != "" {
		content, err := readConfigFile(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// PISCORE_CACHE_TTL -> cache_ttl
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	applyDefaults(&cfg, k.Exists)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func readConfigFile(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("config path %s is a directory", path)
	}
	if info.Size() > maxConfigFileSize {
		return nil, fmt.Errorf("config file %s exceeds %d bytes", path, maxConfigFileSize)
	}
	content, err := os.ReadFile(path) //nolint:gosec // operator supplied path
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return content, nil
}

// applyDefaults fills zero values. Settings where zero means something, such
// as a disabled rate limit, are filled only when isSet reports them absent.
func applyDefaults(cfg *Config, isSet func(key string) bool) {
	d := Default()
	if cfg.Port == "" {
		cfg.Port = d.Port
	}
	if cfg.GinMode == "" {
		cfg.GinMode = d.GinMode
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = d.LogLevel
	}
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = d.CacheTTL
	}
	if !isSet("rate_limit_per_minute") {
		cfg.RateLimitPerMinute = d.RateLimitPerMinute
	}
	// an env value arrives as a single comma separated element
	var origins []string
	for _, o := range cfg.AllowedOrigins {
		for _, part := range strings.Split(o, ",") {
			if part = strings.TrimSpace(part); part != "" {
				origins = append(origins, part)
			}
		}
	}
	cfg.AllowedOrigins = origins
	if len(cfg.AllowedOrigins) == 0 {
		cfg.AllowedOrigins = d.AllowedOrigins
	}
	if cfg.MaxBodyBytes == 0 {
		cfg.MaxBodyBytes = d.MaxBodyBytes
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = d.RequestTimeout
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = d.ShutdownTimeout
	}
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	switch c.GinMode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
	default:
		errs = append(errs, fmt.Errorf("gin_mode %q must be debug, release or test", c.GinMode))
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if c.CacheTTL <= 0 {
		errs = append(errs, fmt.Errorf("cache_ttl must be positive, got %s", c.CacheTTL))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("rate_limit_per_minute must not be negative, got %d", c.RateLimitPerMinute))
	}
	if c.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout))
	}
	if c.ShutdownTimeout <= 0 {
		errs = append(errs, fmt.Errorf("shutdown_timeout must be positive, got %s", c.ShutdownTimeout))
	}
	return errors.Join(errs...)
}

// SlogLevel is LogLevel as a slog.Level; Validate has already checked it.
func (c *Config) SlogLevel() slog.Level {
	lvl, _ := ParseLogLevel(c.LogLevel)
	return lvl
}

// ParseLogLevel accepts debug, info, warn and error in any case.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level %q: %w", s, err)
	}
	return lvl, nil
}
