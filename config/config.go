package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"quick-quote/logger"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	RendererBasic  = "basic"
	RendererChrome = "chrome"
)

// Config is the service configuration read from the environment
type Config struct {
	Port        string
	Environment string
	LogLevel    string

	// DatabaseURL is optional; empty disables saved quotes
	DatabaseURL string
	// RedisAddr is optional; empty keeps sessions in memory
	RedisAddr     string
	RedisPassword string
	SessionTTL    time.Duration

	GeminiAPIKey string
	GeminiModel  string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	PDFRenderer  string
	ChromePath   string
	BusinessName string
	LogoPath     string

	GoogleCredentialsFile string
	ConfigWorkbookPath    string
	ConfigDriveFileID     string
	// ConfigRefreshInterval re-reads the startup workbook periodically; zero disables it
	ConfigRefreshInterval time.Duration
}

// IsProduction reports whether ENVIRONMENT is production
func (c *Config) IsProduction() bool {
	return c.Environment == EnvProduction
}

var defaults = map[string]interface{}{
	"PORT":                           "8080",
	"ENVIRONMENT":                    EnvDevelopment,
	"LOG_LEVEL":                      "info",
	"DATABASE_URL":                   "",
	"REDIS_ADDR":                     "",
	"REDIS_PASSWORD":                 "",
	"SESSION_TTL":                    "24h",
	"GEMINI_API_KEY":                 "",
	"GEMINI_MODEL":                   "gemini-2.5-flash",
	"SENDGRID_API_KEY":               "",
	"SENDGRID_FROM_EMAIL":            "",
	"SENDGRID_FROM_NAME":             "Clean Carpets Inc.",
	"PDF_RENDERER":                   RendererBasic,
	"CHROME_PATH":                    "",
	"BUSINESS_NAME":                  "Clean Carpets Inc.",
	"LOGO_PATH":                      "",
	"GOOGLE_APPLICATION_CREDENTIALS": "",
	"CONFIG_WORKBOOK_PATH":           "",
	"CONFIG_DRIVE_FILE_ID":           "",
	"CONFIG_REFRESH_INTERVAL":        "0s",
}

// Load reads configuration from environment variables, applying defaults
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	ttl, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
	}
	refresh, err := time.ParseDuration(v.GetString("CONFIG_REFRESH_INTERVAL"))
	if err != nil {
		return nil, fmt.Errorf("invalid CONFIG_REFRESH_INTERVAL: %w", err)
	}

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		Environment:           strings.ToLower(v.GetString("ENVIRONMENT")),
		LogLevel:              v.GetString("LOG_LEVEL"),
		DatabaseURL:           v.GetString("DATABASE_URL"),
		RedisAddr:             v.GetString("REDIS_ADDR"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		SessionTTL:            ttl,
		GeminiAPIKey:          v.GetString("GEMINI_API_KEY"),
		GeminiModel:           v.GetString("GEMINI_MODEL"),
		SendGridAPIKey:        v.GetString("SENDGRID_API_KEY"),
		SendGridFromEmail:     v.GetString("SENDGRID_FROM_EMAIL"),
		SendGridFromName:      v.GetString("SENDGRID_FROM_NAME"),
		PDFRenderer:           strings.ToLower(v.GetString("PDF_RENDERER")),
		ChromePath:            v.GetString("CHROME_PATH"),
		BusinessName:          v.GetString("BUSINESS_NAME"),
		LogoPath:              v.GetString("LOGO_PATH"),
		GoogleCredentialsFile: v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		ConfigWorkbookPath:    v.GetString("CONFIG_WORKBOOK_PATH"),
		ConfigDriveFileID:     v.GetString("CONFIG_DRIVE_FILE_ID"),
		ConfigRefreshInterval: refresh,
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	logger.GetLogger().Infow("Configuration loaded",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"pdf_renderer", cfg.PDFRenderer,
		"database", logger.MaskConnectionString(cfg.DatabaseURL),
		"redis", cfg.RedisAddr != "",
		"gemini", cfg.GeminiAPIKey != "",
		"sendgrid", cfg.SendGridAPIKey != "",
	)
	return cfg, nil
}

func validate(cfg *Config) error {
	if cfg.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if cfg.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if cfg.ConfigRefreshInterval < 0 {
		return fmt.Errorf("CONFIG_REFRESH_INTERVAL must not be negative")
	}
	if cfg.PDFRenderer != RendererBasic && cfg.PDFRenderer != RendererChrome {
		return fmt.Errorf("PDF_RENDERER must be %q or %q", RendererBasic, RendererChrome)
	}
	if cfg.SendGridAPIKey != "" && cfg.SendGridFromEmail == "" {
		return fmt.Errorf("SENDGRID_FROM_EMAIL is required when SENDGRID_API_KEY is set")
	}
	return nil
}
