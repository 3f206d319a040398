package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/cpsdqs/prechoster/internal/logging"
)

// Environment variables that provide flag defaults.
const (
	EnvStore         = "PRECHOSTER_STORE"
	EnvDir           = "PRECHOSTER_DIR"
	EnvRedisURL      = "PRECHOSTER_REDIS_URL"
	EnvLogLevel      = "PRECHOSTER_LOG_LEVEL"
	EnvEncryptionKey = "PRECHOSTER_ENCRYPTION_KEY"
	EnvRedact        = "PRECHOSTER_REDACT"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// DefaultDir is where the file backend keeps documents and blobs.
const DefaultDir = ".prechoster"

// Config is the resolved CLI configuration.
type Config struct {
	Store    string
	Dir      string
	RedisURL string
	LogLevel string

	// EncryptionKey is a base64 AES-256 key. Empty disables encryption.
	EncryptionKey string
	// Redact lists regular expressions for module data keys masked on save.
	Redact []string
}

// AddFlags declares the persistent flags LoadConfig reads.
func AddFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.String("env-file", ".env", "Dotenv file providing PRECHOSTER_* defaults")
	flags.String("store", "", "Document store: file, memory or redis (env "+EnvStore+")")
	flags.String("dir", "", "Data directory of the file store (env "+EnvDir+")")
	flags.String("redis-url", "", "Redis connection URL (env "+EnvRedisURL+")")
	flags.String("log-level", "", "Log level: debug, info, warn or error (env "+EnvLogLevel+")")
}

// LoadConfig resolves the configuration for cmd. Explicit flags win over
// environment variables, which win over the dotenv file and the defaults.
func LoadConfig(cmd *cobra.Command) (Config, error) {
	flags := cmd.Flags()

	envFile, _ := flags.GetString("env-file")
	if err := loadEnvFile(envFile); err != nil {
		return Config{}, err
	}

	cfg := Config{
		Store:         envOr(EnvStore, StoreFile),
		Dir:           envOr(EnvDir, DefaultDir),
		RedisURL:      envOr(EnvRedisURL, "redis://localhost:6379/0"),
		LogLevel:      envOr(EnvLogLevel, "warn"),
		EncryptionKey: os.Getenv(EnvEncryptionKey),
		Redact:        splitList(os.Getenv(EnvRedact)),
	}

	override := func(name string, dst *string) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	override("store", &cfg.Store)
	override("dir", &cfg.Dir)
	override("redis-url", &cfg.RedisURL)
	override("log-level", &cfg.LogLevel)

	switch cfg.Store {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return Config{}, fmt.Errorf("unknown store %q (want file, memory or redis)", cfg.Store)
	}
	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		return Config{}, err
	}
	for _, p := range cfg.Redact {
		if _, err := regexp.Compile(p); err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvRedact, err)
		}
	}
	return cfg, nil
}

// Logger builds the stderr logger for the configured level.
func (c Config) Logger() *slog.Logger {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	return logging.New(level)
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
