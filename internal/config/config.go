package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig
	JWT           JWTConfig
	OCR           OCRConfig
	Extraction    ExtractionConfig
	ESG           ESGConfig
	Log           LogConfig
	Notifications NotificationsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string
	MaxUploadBytes  int64
	ReadTimeout     time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string
}

// JWTConfig holds token settings. An empty secret disables authentication.
type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

// OCRConfig holds the page rendering and OCR engine settings.
type OCRConfig struct {
	Engine      string // "cli" | "client"
	Pdftoppm    string
	Tesseract   string
	Language    string
	TessdataDir string
	DPI         int
	MaxPages    int
	ImageFormat string // "png" | "tiff"
	PageTimeout time.Duration
	TempDir     string
}

// ExtractionConfig holds the orchestrator thresholds.
type ExtractionConfig struct {
	MinTextLength int
}

// ESGConfig points at an optional CSV of custom keyword tables.
type ESGConfig struct {
	KeywordsFile string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string // "json" | "text"
}

// NotificationsConfig sizes the in-memory notification feed.
type NotificationsConfig struct {
	Capacity int
}

// envAliases maps config keys to the bare environment names used by
// deployments that predate the SYNDICATEIQ_ prefix.
var envAliases = map[string]string{
	"server.port":       "PORT",
	"jwt.secret":        "JWT_SECRET",
	"jwt.expiration":    "JWT_EXPIRATION",
	"ocr.tessdata_dir":  "TESSDATA_PREFIX",
	"ocr.page_timeout":  "OCR_PAGE_TIMEOUT",
	"log.level":         "LOG_LEVEL",
	"esg.keywords_file": "ESG_KEYWORDS_FILE",
}

// Load reads .env (if present), an optional YAML file named by CONFIG_FILE,
// and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("SYNDICATEIQ")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envAliases {
		if err := v.BindEnv(key, "SYNDICATEIQ_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetString("server.port"),
			MaxUploadBytes:  v.GetInt64("server.max_upload_bytes"),
			ReadTimeout:     v.GetDuration("server.read_timeout"),
			ShutdownTimeout: v.GetDuration("server.shutdown_timeout"),
			CORSOrigins:     splitList(v.GetString("server.cors_origins")),
		},
		JWT: JWTConfig{
			Secret:     v.GetString("jwt.secret"),
			Expiration: v.GetDuration("jwt.expiration"),
		},
		OCR: OCRConfig{
			Engine:      v.GetString("ocr.engine"),
			Pdftoppm:    v.GetString("ocr.pdftoppm"),
			Tesseract:   v.GetString("ocr.tesseract"),
			Language:    v.GetString("ocr.language"),
			TessdataDir: v.GetString("ocr.tessdata_dir"),
			DPI:         v.GetInt("ocr.dpi"),
			MaxPages:    v.GetInt("ocr.max_pages"),
			ImageFormat: v.GetString("ocr.image_format"),
			PageTimeout: v.GetDuration("ocr.page_timeout"),
			TempDir:     v.GetString("ocr.temp_dir"),
		},
		Extraction: ExtractionConfig{
			MinTextLength: v.GetInt("extraction.min_text_length"),
		},
		ESG: ESGConfig{
			KeywordsFile: v.GetString("esg.keywords_file"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		Notifications: NotificationsConfig{
			Capacity: v.GetInt("notifications.capacity"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "5000")
	v.SetDefault("server.max_upload_bytes", 50<<20)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors_origins", "*")

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")

	v.SetDefault("ocr.engine", "cli")
	v.SetDefault("ocr.pdftoppm", "pdftoppm")
	v.SetDefault("ocr.tesseract", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("ocr.image_format", "png")
	v.SetDefault("ocr.page_timeout", "0s")
	v.SetDefault("ocr.temp_dir", "")

	v.SetDefault("extraction.min_text_length", 100)

	v.SetDefault("esg.keywords_file", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("notifications.capacity", 100)
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("max upload bytes must be positive, got %d", c.Server.MaxUploadBytes)
	}
	if c.Extraction.MinTextLength < 0 {
		return fmt.Errorf("min text length must not be negative, got %d", c.Extraction.MinTextLength)
	}
	if c.OCR.DPI <= 0 {
		return fmt.Errorf("ocr dpi must be positive, got %d", c.OCR.DPI)
	}
	switch c.OCR.ImageFormat {
	case "png", "tiff":
	default:
		return fmt.Errorf("unsupported ocr image format: %q (allowed: png, tiff)", c.OCR.ImageFormat)
	}
	switch c.OCR.Engine {
	case "cli", "client":
	default:
		return fmt.Errorf("unsupported ocr engine: %q (allowed: cli, client)", c.OCR.Engine)
	}
	if c.JWT.Secret != "" && c.JWT.Expiration <= 0 {
		return fmt.Errorf("jwt expiration must be positive when a secret is set")
	}
	return nil
}

// SlogLevel maps the configured level name onto slog.
func (c LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger builds the process logger described by the config.
func (c LogConfig) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.Format, "text") {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
