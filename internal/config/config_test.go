package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "5000" {
		t.Errorf("port = %q, want 5000", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadBytes != 50<<20 {
		t.Errorf("max upload = %d, want 50MB", cfg.Server.MaxUploadBytes)
	}
	if cfg.Extraction.MinTextLength != 100 {
		t.Errorf("min text length = %d, want 100", cfg.Extraction.MinTextLength)
	}
	if cfg.OCR.DPI != 300 || cfg.OCR.ImageFormat != "png" || cfg.OCR.Engine != "cli" {
		t.Errorf("unexpected OCR defaults: %+v", cfg.OCR)
	}
	if cfg.OCR.PageTimeout != 0 {
		t.Errorf("page timeout = %v, want disabled", cfg.OCR.PageTimeout)
	}
	if cfg.JWT.Expiration != 24*time.Hour {
		t.Errorf("jwt expiration = %v, want 24h", cfg.JWT.Expiration)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("PORT", "8080")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("SYNDICATEIQ_OCR_DPI", "150")
	t.Setenv("SYNDICATEIQ_OCR_PAGE_TIMEOUT", "45s")
	t.Setenv("SYNDICATEIQ_SERVER_CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ESG_KEYWORDS_FILE", "/etc/syndicateiq/keywords.csv")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Errorf("secret not read from JWT_SECRET")
	}
	if cfg.OCR.DPI != 150 {
		t.Errorf("dpi = %d, want 150", cfg.OCR.DPI)
	}
	if cfg.OCR.PageTimeout != 45*time.Second {
		t.Errorf("page timeout = %v, want 45s", cfg.OCR.PageTimeout)
	}
	if len(cfg.Server.CORSOrigins) != 2 || cfg.Server.CORSOrigins[1] != "https://b.example" {
		t.Errorf("unexpected cors origins: %v", cfg.Server.CORSOrigins)
	}
	if cfg.ESG.KeywordsFile != "/etc/syndicateiq/keywords.csv" {
		t.Errorf("keywords file = %q", cfg.ESG.KeywordsFile)
	}
}

func TestLoad_PageTimeoutAlias(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("OCR_PAGE_TIMEOUT", "2m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OCR.PageTimeout != 2*time.Minute {
		t.Errorf("page timeout = %v, want 2m", cfg.OCR.PageTimeout)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "ocr:\n  language: eng+fra\n  max_pages: 20\nlog:\n  format: text\n"
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_FILE", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OCR.Language != "eng+fra" || cfg.OCR.MaxPages != 20 || cfg.Log.Format != "text" {
		t.Errorf("config file not applied: %+v %+v", cfg.OCR, cfg.Log)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func validConfig() Config {
	return Config{
		Server:     ServerConfig{Port: "5000", MaxUploadBytes: 1},
		OCR:        OCRConfig{DPI: 300, ImageFormat: "png", Engine: "cli"},
		Extraction: ExtractionConfig{MinTextLength: 100},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no port", func(c *Config) { c.Server.Port = "" }},
		{"zero upload cap", func(c *Config) { c.Server.MaxUploadBytes = 0 }},
		{"negative min length", func(c *Config) { c.Extraction.MinTextLength = -1 }},
		{"zero dpi", func(c *Config) { c.OCR.DPI = 0 }},
		{"bad format", func(c *Config) { c.OCR.ImageFormat = "jpeg" }},
		{"bad engine", func(c *Config) { c.OCR.Engine = "cloud" }},
		{"secret without expiry", func(c *Config) { c.JWT.Secret = "x" }},
	}

	base := validConfig()
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			tt.mutate(&c)
			if err := c.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestSlogLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range tests {
		if got := (LogConfig{Level: in}).SlogLevel(); got != want {
			t.Errorf("SlogLevel(%q) = %v, want %v", in, got, want)
		}
	}
}
