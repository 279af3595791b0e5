package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Fallback credentials and signing secret. These exist so the server can boot
// in a fresh development checkout; InsecureDefaults reports every one still
// in effect so operators see them at startup instead of relying on them
// silently.
const (
	DefaultAuthUsername = "admin"
	DefaultAuthPassword = "admin123"
	DefaultAuthSecret   = "nestegg-dev-secret"
)

// Token codec modes. "hmac" is the signed, expiring default; "legacy" is the
// unsigned reversible encoding kept for compatibility with old deployments.
const (
	TokenModeHMAC   = "hmac"
	TokenModeLegacy = "legacy"
)

type Config struct {
	// HTTP server
	Port      string
	APIPrefix string

	// Database
	SQLiteDBPath string

	// Authentication
	AuthUsername     string
	AuthPassword     string
	AuthPasswordHash string
	AuthSecret       string
	TokenMode        string
	TokenTTL         time.Duration

	// Exchange rates
	RatesProviderURL     string
	RatesRefreshInterval time.Duration

	// AMQP event publishing (optional, disabled when URL is empty)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
}

func Load() *Config {
	return &Config{
		Port:      getEnv("PORT", "8082"),
		APIPrefix: getEnv("API_PREFIX", "/api"),

		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/nestegg.db"),

		AuthUsername:     getEnv("AUTH_USERNAME", DefaultAuthUsername),
		AuthPassword:     getEnv("AUTH_PASSWORD", DefaultAuthPassword),
		AuthPasswordHash: getEnv("AUTH_PASSWORD_HASH", ""),
		AuthSecret:       getEnv("AUTH_SECRET", DefaultAuthSecret),
		TokenMode:        getEnv("AUTH_TOKEN_MODE", TokenModeHMAC),
		TokenTTL:         getEnvDuration("AUTH_TOKEN_TTL", 24*time.Hour),

		RatesProviderURL:     getEnv("RATES_PROVIDER_URL", "https://open.er-api.com/v6/latest/USD"),
		RatesRefreshInterval: getEnvDuration("RATES_REFRESH_INTERVAL", 12*time.Hour),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "nestegg"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "ledger_events"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.APIPrefix != "" && !strings.HasPrefix(c.APIPrefix, "/") {
		errors = append(errors, fmt.Sprintf("invalid API prefix '%s': must start with '/'", c.APIPrefix))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	if c.TokenMode != TokenModeHMAC && c.TokenMode != TokenModeLegacy {
		errors = append(errors, fmt.Sprintf("invalid token mode '%s': must be one of [%s %s]", c.TokenMode, TokenModeHMAC, TokenModeLegacy))
	}

	if c.TokenTTL < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid token TTL %v: must be at least 1 minute", c.TokenTTL))
	}

	if c.AuthUsername == "" {
		errors = append(errors, "auth username cannot be empty")
	}
	if c.AuthPassword == "" && c.AuthPasswordHash == "" {
		errors = append(errors, "either AUTH_PASSWORD or AUTH_PASSWORD_HASH must be set")
	}

	if parsedURL, err := url.Parse(c.RatesProviderURL); err != nil {
		errors = append(errors, fmt.Sprintf("invalid rates provider URL '%s': %v", c.RatesProviderURL, err))
	} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		errors = append(errors, fmt.Sprintf("invalid rates provider URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
	}

	if c.RatesRefreshInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid rates refresh interval %v: must be at least 1 minute", c.RatesRefreshInterval))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// InsecureDefaults reports every credential or secret still running on its
// hardcoded fallback. Callers are expected to log each entry at startup.
func (c *Config) InsecureDefaults() []string {
	var warnings []string

	if c.AuthUsername == DefaultAuthUsername {
		warnings = append(warnings, "AUTH_USERNAME is unset, using the insecure default username")
	}
	if c.AuthPasswordHash == "" && c.AuthPassword == DefaultAuthPassword {
		warnings = append(warnings, "AUTH_PASSWORD is unset, using the insecure default password")
	}
	if c.AuthSecret == DefaultAuthSecret {
		warnings = append(warnings, "AUTH_SECRET is unset, tokens are signed with the insecure default secret")
	}
	if c.TokenMode == TokenModeLegacy {
		warnings = append(warnings, "AUTH_TOKEN_MODE=legacy issues unsigned tokens with no expiry")
	}

	return warnings
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
