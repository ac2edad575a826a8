package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the gateway
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	Upstream UpstreamConfig
	Session  SessionConfig
	Profile  ProfileConfig
}

// DatabaseConfig holds session-store database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// UpstreamConfig holds the practice backend API configuration
type UpstreamConfig struct {
	BaseURL string
	Timeout time.Duration
}

// SessionConfig holds gateway session configuration
type SessionConfig struct {
	Secret       string
	TTL          time.Duration
	CookieName   string
	CookieSecure bool
	SameSite     string
	Domain       string
}

// ProfileConfig holds role-profile refresh configuration
type ProfileConfig struct {
	RefreshInterval time.Duration
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "4000"),
		Database: loadDatabaseConfig(appMode),
		Upstream: loadUpstreamConfig(appMode),
		Session:  loadSessionConfig(appMode),
		Profile:  loadProfileConfig(),
	}

	if config.Upstream.BaseURL == "" {
		return nil, fmt.Errorf("UPSTREAM_BASE_URL is required")
	}

	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads session-store database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "physiohub_sessions"),
	}
}

// loadUpstreamConfig loads practice backend config based on mode
func loadUpstreamConfig(mode string) UpstreamConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	timeoutSecs, _ := strconv.Atoi(getEnv("UPSTREAM_TIMEOUT_SECONDS", "10"))

	return UpstreamConfig{
		BaseURL: getEnv(prefix+"UPSTREAM_BASE_URL", getEnv("UPSTREAM_BASE_URL", "")),
		Timeout: time.Duration(timeoutSecs) * time.Second,
	}
}

// loadSessionConfig loads session config based on mode
func loadSessionConfig(mode string) SessionConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	ttlHours, _ := strconv.Atoi(getEnv("SESSION_TTL_HOURS", "12"))
	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return SessionConfig{
		Secret:       getEnv(prefix+"SESSION_SECRET", "default_session_secret"),
		TTL:          time.Duration(ttlHours) * time.Hour,
		CookieName:   getEnv("SESSION_COOKIE_NAME", "ph_session"),
		CookieSecure: secure,
		SameSite:     getEnv("COOKIE_SAMESITE", "lax"),
		Domain:       getEnv("COOKIE_DOMAIN", ""),
	}
}

// loadProfileConfig loads role-profile refresh config
func loadProfileConfig() ProfileConfig {
	intervalSecs, _ := strconv.Atoi(getEnv("PROFILE_REFRESH_SECONDS", "30"))

	return ProfileConfig{
		RefreshInterval: time.Duration(intervalSecs) * time.Second,
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://app.physiohub.example"
	}
	return origins
}
