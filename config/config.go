package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Env            string
	LogLevel       string
	LogPretty      bool
	CurrencyPrefix string
	PublicBaseURL  string

	Render  RenderConfig
	Storage StorageConfig
	S3      S3Config
	Redis   RedisConfig

	// SigningSecretGenerated is set when DOCUMENT_SIGNING_SECRET was missing
	// and a per-process secret was generated instead.
	SigningSecretGenerated bool
}

// RenderConfig bounds document rendering.
type RenderConfig struct {
	Concurrency      int
	Timeout          time.Duration
	LogoFetchTimeout time.Duration
}

// StorageConfig selects and configures the binary document store.
type StorageConfig struct {
	Driver        string
	LocalDir      string
	SignedURLTTL  time.Duration
	SigningSecret string
}

// S3Config contains S3 bucket configuration.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

// RedisConfig contains Redis connection parameters. An empty Addr disables
// the signed URL cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool { return c.Env == "production" }

// Load reads configuration from environment variables, loading a .env file
// from the working directory first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogPretty:      getEnvBool("LOG_PRETTY", false),
		CurrencyPrefix: getEnv("CURRENCY_PREFIX", "Rs."),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://127.0.0.1:8090"), "/"),
	}

	cfg.Render.Concurrency = getEnvInt("RENDER_CONCURRENCY", 4)

	cfg.Storage = StorageConfig{
		Driver:        strings.ToLower(getEnv("STORAGE_DRIVER", StorageLocal)),
		LocalDir:      getEnv("STORAGE_LOCAL_DIR", "./pb_data/documents"),
		SigningSecret: getEnv("DOCUMENT_SIGNING_SECRET", ""),
	}

	cfg.S3 = S3Config{
		Bucket:          getEnv("S3_BUCKET", ""),
		Region:          getEnv("S3_REGION", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		AccessKeyID:     getEnv("S3_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("S3_SECRET_ACCESS_KEY", ""),
	}

	cfg.Redis = RedisConfig{
		Addr:     getEnv("REDIS_ADDR", ""),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	var err error
	if cfg.Render.Timeout, err = parseDurationEnv("RENDER_TIMEOUT", "30s"); err != nil {
		return nil, fmt.Errorf("invalid RENDER_TIMEOUT: %w", err)
	}
	if cfg.Render.LogoFetchTimeout, err = parseDurationEnv("LOGO_FETCH_TIMEOUT", "5s"); err != nil {
		return nil, fmt.Errorf("invalid LOGO_FETCH_TIMEOUT: %w", err)
	}
	if cfg.Storage.SignedURLTTL, err = parseDurationEnv("SIGNED_URL_TTL", "15m"); err != nil {
		return nil, fmt.Errorf("invalid SIGNED_URL_TTL: %w", err)
	}

	if cfg.Render.Concurrency < 1 {
		return nil, errors.New("RENDER_CONCURRENCY must be at least 1")
	}

	switch cfg.Storage.Driver {
	case StorageS3:
		if cfg.S3.Bucket == "" || cfg.S3.Region == "" {
			return nil, errors.New("s3 storage requires S3_BUCKET and S3_REGION")
		}
	case StorageLocal:
		if cfg.Storage.SigningSecret == "" {
			if cfg.IsProduction() {
				return nil, errors.New("DOCUMENT_SIGNING_SECRET must be set for local storage in production")
			}
			secret, err := randomSecret()
			if err != nil {
				return nil, fmt.Errorf("generate signing secret: %w", err)
			}
			cfg.Storage.SigningSecret = secret
			cfg.SigningSecretGenerated = true
		}
	default:
		return nil, fmt.Errorf("unknown STORAGE_DRIVER %q (use local or s3)", cfg.Storage.Driver)
	}

	return cfg, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getEnv(key, def))
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
