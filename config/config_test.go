package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quick-quote/logger"
)

func init() {
	logger.IsTest = true
}

func TestLoad_Defaults(t *testing.T) {
	// viper treats empty variables as unset
	for key := range defaults {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, EnvDevelopment, cfg.Environment)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Zero(t, cfg.ConfigRefreshInterval)
	assert.Equal(t, "gemini-2.5-flash", cfg.GeminiModel)
	assert.Equal(t, RendererBasic, cfg.PDFRenderer)
	assert.Equal(t, "Clean Carpets Inc.", cfg.BusinessName)
	assert.Empty(t, cfg.DatabaseURL)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ENVIRONMENT", "Production")
	t.Setenv("SESSION_TTL", "30m")
	t.Setenv("PDF_RENDERER", "chrome")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("SENDGRID_API_KEY", "SG.test")
	t.Setenv("SENDGRID_FROM_EMAIL", "quotes@example.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, RendererChrome, cfg.PDFRenderer)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, "quotes@example.com", cfg.SendGridFromEmail)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad ttl", map[string]string{"SESSION_TTL": "soon"}},
		{"negative ttl", map[string]string{"SESSION_TTL": "-1h"}},
		{"bad refresh interval", map[string]string{"CONFIG_REFRESH_INTERVAL": "hourly"}},
		{"negative refresh interval", map[string]string{"CONFIG_REFRESH_INTERVAL": "-5m"}},
		{"unknown renderer", map[string]string{"PDF_RENDERER": "latex"}},
		{"sendgrid without sender", map[string]string{"SENDGRID_API_KEY": "SG.test", "SENDGRID_FROM_EMAIL": ""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
