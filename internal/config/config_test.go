package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("API_BASE_URL", "https://api.homerent.test/")
	t.Setenv("DATABASE_URL", "postgres://localhost/homerent_web")
	t.Setenv("SESSION_SECRET", "cookie-secret")
	t.Setenv("SESSION_ENCRYPTION_KEY", strings.Repeat("ab", 32))
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "https://api.homerent.test", cfg.API.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.API.Timeout)
	assert.Equal(t, 3500*time.Millisecond, cfg.Booking.PollInterval)
	assert.Equal(t, 15*time.Minute, cfg.Booking.FlowIdleTimeout)
	assert.Equal(t, 30*time.Second, cfg.Auth.OTPResendCooldown)
	assert.Equal(t, "homerent_session", cfg.Session.CookieName)
	assert.False(t, cfg.Telegram.Enabled())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("BOOKING_POLL_INTERVAL_MS", "1000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test ,")
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("TELEGRAM_OPS_CHAT_ID", "-100200300")
	t.Setenv("SESSION_COOKIE_SECURE", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, time.Second, cfg.Booking.PollInterval)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Telegram.Enabled())
	assert.Equal(t, int64(-100200300), cfg.Telegram.OpsChatID)
	assert.True(t, cfg.Session.CookieSecure)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		message string
	}{
		{"Missing database", "DATABASE_URL", "", "DATABASE_URL is required"},
		{"Missing session secret", "SESSION_SECRET", "", "SESSION_SECRET is required"},
		{"Short encryption key", "SESSION_ENCRYPTION_KEY", "abcd", "SESSION_ENCRYPTION_KEY"},
		{"Relative API URL", "API_BASE_URL", "api.homerent.test", "absolute URL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestLoadCLI_OnlyNeedsAPI(t *testing.T) {
	t.Setenv("API_BASE_URL", "http://localhost:5000")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("HOMERENT_STATE_DIR", "/tmp/homerent-state")

	cfg, err := LoadCLI()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/homerent-state", cfg.CLI.StateDir)
}
