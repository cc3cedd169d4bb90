package config

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Server ServerConfig

	// Remote HomeRent API configuration
	API APIConfig

	// Database configuration (web session storage)
	Database DatabaseConfig

	// Session cookie and sealing configuration
	Session SessionConfig

	// Booking payment flow configuration
	Booking BookingConfig

	// Auth flow configuration
	Auth AuthConfig

	// CORS configuration
	CORS CORSConfig

	// Telegram ops alerts configuration
	Telegram TelegramConfig

	// Terminal client configuration
	CLI CLIConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port        string
	Environment string // development, staging, production
	LogLevel    string // debug, info, warn, error
}

// APIConfig holds the remote REST API location
type APIConfig struct {
	BaseURL string
	Timeout time.Duration // 0 means no client-side timeout
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	URL                string
	MaxConnections     int
	MaxIdleConnections int
	ConnMaxLifetime    time.Duration
}

// SessionConfig holds web session configuration
type SessionConfig struct {
	Secret        string // HMAC key for the session cookie JWT
	EncryptionKey string // hex key sealing API tokens at rest
	TTL           time.Duration
	CookieName    string
	CookieSecure  bool
}

// BookingConfig holds booking payment flow configuration
type BookingConfig struct {
	PollInterval    time.Duration
	FlowIdleTimeout time.Duration
	ReapInterval    time.Duration
}

// AuthConfig holds auth flow configuration
type AuthConfig struct {
	OTPResendCooldown time.Duration
}

// CORSConfig holds CORS-related configuration
type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// TelegramConfig holds the optional ops alert bot
type TelegramConfig struct {
	BotToken  string
	OpsChatID int64
}

// Enabled reports whether ops alerts should be sent
func (t TelegramConfig) Enabled() bool {
	return t.BotToken != "" && t.OpsChatID != 0
}

// CLIConfig holds terminal client configuration
type CLIConfig struct {
	StateDir string
}

// Load loads configuration for the web front-end server
func Load() (*Config, error) {
	cfg := load()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadCLI loads configuration for the terminal client, which needs neither a
// database nor session secrets
func LoadCLI() (*Config, error) {
	cfg := load()

	if err := cfg.validateAPI(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func load() *Config {
	// Load .env file if it exists (for local development)
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
			LogLevel:    getEnv("LOG_LEVEL", "info"),
		},
		API: APIConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT", 0)) * time.Second,
		},
		Database: DatabaseConfig{
			URL:                getEnv("DATABASE_URL", ""),
			MaxConnections:     getEnvAsInt("DATABASE_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("DATABASE_MAX_IDLE_CONNECTIONS", 5),
			ConnMaxLifetime:    time.Duration(getEnvAsInt("DATABASE_CONN_MAX_LIFETIME", 300)) * time.Second,
		},
		Session: SessionConfig{
			Secret:        getEnv("SESSION_SECRET", ""),
			EncryptionKey: getEnv("SESSION_ENCRYPTION_KEY", ""),
			TTL:           time.Duration(getEnvAsInt("SESSION_TTL", 604800)) * time.Second,
			CookieName:    getEnv("SESSION_COOKIE_NAME", "homerent_session"),
			CookieSecure:  getEnvAsBool("SESSION_COOKIE_SECURE", false),
		},
		Booking: BookingConfig{
			PollInterval:    time.Duration(getEnvAsInt("BOOKING_POLL_INTERVAL_MS", 3500)) * time.Millisecond,
			FlowIdleTimeout: time.Duration(getEnvAsInt("BOOKING_FLOW_IDLE_TIMEOUT", 900)) * time.Second,
			ReapInterval:    time.Duration(getEnvAsInt("BOOKING_FLOW_REAP_INTERVAL", 60)) * time.Second,
		},
		Auth: AuthConfig{
			OTPResendCooldown: time.Duration(getEnvAsInt("OTP_RESEND_COOLDOWN", 30)) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),
			AllowedMethods: getEnvAsSlice("CORS_ALLOWED_METHODS", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
			AllowedHeaders: getEnvAsSlice("CORS_ALLOWED_HEADERS", []string{"Content-Type", "Authorization"}),
		},
		Telegram: TelegramConfig{
			BotToken:  getEnv("TELEGRAM_BOT_TOKEN", ""),
			OpsChatID: getEnvAsInt64("TELEGRAM_OPS_CHAT_ID", 0),
		},
		CLI: CLIConfig{
			StateDir: getEnv("HOMERENT_STATE_DIR", defaultStateDir()),
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.validateAPI(); err != nil {
		return err
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	if len(c.Session.EncryptionKey) != 64 {
		return fmt.Errorf("SESSION_ENCRYPTION_KEY must be 64 hex characters")
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}

	if c.Booking.PollInterval <= 0 {
		return fmt.Errorf("BOOKING_POLL_INTERVAL_MS must be positive")
	}

	return nil
}

func (c *Config) validateAPI() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("API_BASE_URL is required")
	}

	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL must be an absolute URL, got %q", c.API.BaseURL)
	}

	return nil
}

func defaultStateDir() string {
	dir, err := os.UserHomeDir()
	if err != nil {
		return ".homerent"
	}
	return filepath.Join(dir, ".homerent")
}

// Helper functions to get environment variables

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		log.Printf("Invalid integer value for %s, using default: %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Invalid boolean value for %s, using default: %t", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var result []string
	for _, v := range strings.Split(valueStr, ",") {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	if len(result) == 0 {
		return defaultValue
	}
	return result
}
