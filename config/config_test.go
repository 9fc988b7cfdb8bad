package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("DOCUMENT_SIGNING_SECRET", "")
	t.Setenv("APP_ENV", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CurrencyPrefix != "Rs." {
		t.Errorf("CurrencyPrefix = %q", cfg.CurrencyPrefix)
	}
	if cfg.Render.Concurrency != 4 || cfg.Render.Timeout != 30*time.Second {
		t.Errorf("render = %+v", cfg.Render)
	}
	if cfg.Storage.Driver != StorageLocal || cfg.Storage.SignedURLTTL != 15*time.Minute {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if !cfg.SigningSecretGenerated || len(cfg.Storage.SigningSecret) != 64 {
		t.Errorf("expected a generated 32-byte secret, got %q", cfg.Storage.SigningSecret)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CURRENCY_PREFIX", "INR")
	t.Setenv("RENDER_CONCURRENCY", "2")
	t.Setenv("RENDER_TIMEOUT", "5s")
	t.Setenv("SIGNED_URL_TTL", "1h")
	t.Setenv("STORAGE_DRIVER", "S3")
	t.Setenv("S3_BUCKET", "quotes")
	t.Setenv("S3_REGION", "ap-south-1")
	t.Setenv("PUBLIC_BASE_URL", "https://quotes.example.com/")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.CurrencyPrefix != "INR" || cfg.Render.Concurrency != 2 || cfg.Render.Timeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Storage.Driver != StorageS3 || cfg.S3.Bucket != "quotes" || cfg.Storage.SignedURLTTL != time.Hour {
		t.Errorf("storage = %+v s3 = %+v", cfg.Storage, cfg.S3)
	}
	if cfg.PublicBaseURL != "https://quotes.example.com" {
		t.Errorf("PublicBaseURL = %q", cfg.PublicBaseURL)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 3 {
		t.Errorf("redis = %+v", cfg.Redis)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"s3 without bucket", map[string]string{"STORAGE_DRIVER": "s3", "S3_BUCKET": "", "S3_REGION": "x"}, "S3_BUCKET"},
		{"unknown driver", map[string]string{"STORAGE_DRIVER": "ftp"}, "STORAGE_DRIVER"},
		{"bad duration", map[string]string{"RENDER_TIMEOUT": "soon"}, "RENDER_TIMEOUT"},
		{"zero concurrency", map[string]string{"RENDER_CONCURRENCY": "0"}, "RENDER_CONCURRENCY"},
		{"production needs secret", map[string]string{"APP_ENV": "production", "STORAGE_DRIVER": "local", "DOCUMENT_SIGNING_SECRET": ""}, "DOCUMENT_SIGNING_SECRET"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
