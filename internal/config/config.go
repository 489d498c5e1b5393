// Package config loads the optional gitquest.yaml used by the CLI and servers.
// Environment variables override the file, and CLI flags override both.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"slices"
	"strconv"
	"time"

	"github.com/aretw0/gitquest/internal/logging"
	"github.com/aretw0/gitquest/pkg/persistence/middleware"
	"gopkg.in/yaml.v3"
)

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "gitquest.yaml"

// Environment overrides.
const (
	EnvContentDir = "GITQUEST_CONTENT"
	EnvDataDir    = "GITQUEST_DATA_DIR"
	EnvLogLevel   = "GITQUEST_LOG_LEVEL"
	EnvRedisAddr  = "GITQUEST_REDIS_ADDR"
	EnvRedisDB    = "GITQUEST_REDIS_DB"
	EnvAddr       = "GITQUEST_ADDR"
	EnvEncryption = "GITQUEST_ENCRYPTION_KEY"
)

// Config is the file layout of gitquest.yaml.
type Config struct {
	// ContentDir replaces the embedded acts when set.
	ContentDir string `yaml:"content_dir"`
	DataDir    string `yaml:"data_dir"`

	Log     LogConfig     `yaml:"log"`
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	MCP     MCPConfig     `yaml:"mcp"`
	Storage StorageConfig `yaml:"storage"`
}

type LogConfig struct {
	Level  string         `yaml:"level"`
	Format logging.Format `yaml:"format"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	Metrics bool   `yaml:"metrics"`
}

// RedisConfig selects the redis session store. An empty Addr keeps the file store.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

type MCPConfig struct {
	Transport string `yaml:"transport"`
	Port      int    `yaml:"port"`
}

// StorageConfig protects saved terminal logs.
type StorageConfig struct {
	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string   `yaml:"encryption_key"`
	FallbackKeys  []string `yaml:"fallback_keys"`

	// Redact lists regular expressions masked in terminal lines before saving.
	Redact []string `yaml:"redact"`
}

// Keys decodes the encryption keys. active is nil when encryption is off.
func (s StorageConfig) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(s.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("encryption key: %w", err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("fallback key %d: %w", i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DataDir: ".gitquest",
		Log:     LogConfig{Level: "info", Format: logging.FormatText},
		Server:  ServerConfig{Addr: ":8080", Metrics: true},
		Redis:   RedisConfig{Prefix: "gitquest:", LockTTL: 5 * time.Second},
		MCP:     MCPConfig{Transport: "stdio", Port: 8081},
		Storage: StorageConfig{Redact: slices.Clone(middleware.DefaultRedactPatterns)},
	}
}

// Load reads path over the defaults and applies the environment.
// A missing file is only an error when path was given explicitly.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvContentDir); v != "" {
		c.ContentDir = v
	}
	if v := getenv(EnvDataDir); v != "" {
		c.DataDir = v
	}
	if v := getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := getenv(EnvRedisAddr); v != "" {
		c.Redis.Addr = v
	}
	if v := getenv(EnvRedisDB); v != "" {
		db, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvRedisDB, err)
		}
		c.Redis.DB = db
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvEncryption); v != "" {
		c.Storage.EncryptionKey = v
	}
	return nil
}

// Validate checks enumerations and ranges.
func (c *Config) Validate() error {
	var errs []error
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case "", logging.FormatText, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("unknown log format %q", c.Log.Format))
	}
	switch c.MCP.Transport {
	case "stdio", "sse":
	default:
		errs = append(errs, fmt.Errorf("unknown mcp transport %q", c.MCP.Transport))
	}
	if c.Redis.DB < 0 {
		errs = append(errs, fmt.Errorf("redis db must be >= 0, got %d", c.Redis.DB))
	}
	if _, _, err := c.Storage.Keys(); err != nil {
		errs = append(errs, err)
	}
	for _, p := range c.Storage.Redact {
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, fmt.Errorf("redact pattern %q: %w", p, err))
		}
	}
	return errors.Join(errs...)
}

// NewLogger builds the stderr logger described by the log section.
// debug forces the debug level.
func (c *Config) NewLogger(debug bool) *slog.Logger {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil || debug {
		level = slog.LevelDebug
	}
	return logging.NewWriter(os.Stderr, level, c.Log.Format)
}
