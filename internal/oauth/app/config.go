package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Issuer        string // Required: issuer claim for tokens
	TokenEndpoint string // Optional: absolute token endpoint URL (default: Issuer + /v1/oauth2/token)

	Scopes              []string      // Optional: server-wide scope vocabulary (default: openid profile email)
	AccessTokenTTL      time.Duration // Optional: access token lifetime (default: 5m)
	RefreshTokenTTL     time.Duration // Optional: refresh token lifetime (default: 720h)
	IDTokenTTL          time.Duration // Optional: ID token lifetime (default: access token TTL)
	RotateRefreshTokens bool          // Optional: rotate refresh tokens on use (default: true)
	DevicePollInterval  time.Duration // Optional: minimum device-code poll spacing (default: 5s)

	Algorithm string // Optional: JWT signing algorithm (RS256, ES256, EdDSA) (default: EdDSA)
	RSABits   int    // Optional: RSA key size for RS256 (default: 4096)
	NumKeys   int    // Optional: number of signing keys to generate (default: 3, min: 1, max: 10)

	DatabaseFile string // Optional: path to SQLite database file (default: ./sable.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Env                 string        // Environment (dev, staging, prod) (default: dev)
	LogLevel            string        // Log level (debug, info, warn, error) (default: info)
	LogFormat           string        // Log format (json, text) (default: json)
	Port                int           // HTTP server port (default: 8080)
	ShutdownGracePeriod time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	cfg := Config{
		Issuer:              os.Getenv("SABLE_ISSUER"),
		TokenEndpoint:       os.Getenv("SABLE_TOKEN_ENDPOINT"),
		AccessTokenTTL:      getEnvDurationOrDefault("SABLE_ACCESS_TOKEN_TTL", 5*time.Minute),
		RefreshTokenTTL:     getEnvDurationOrDefault("SABLE_REFRESH_TOKEN_TTL", 30*24*time.Hour),
		IDTokenTTL:          getEnvDurationOrDefault("SABLE_ID_TOKEN_TTL", 0),
		RotateRefreshTokens: getEnvBoolOrDefault("SABLE_ROTATE_REFRESH_TOKENS", true),
		DevicePollInterval:  getEnvDurationOrDefault("SABLE_DEVICE_POLL_INTERVAL", 5*time.Second),
		Algorithm:           getEnvOrDefault("SABLE_ALGORITHM", "EdDSA"),
		DatabaseFile:        getEnvOrDefault("SABLE_DATABASE_FILE", "sable.db"),
		PepperFile:          getEnvOrDefault("SABLE_PEPPER_FILE", "pepper"),
		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:           getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}

	if scopes := os.Getenv("SABLE_SCOPES"); scopes != "" {
		cfg.Scopes = strings.Fields(scopes)
	} else {
		cfg.Scopes = []string{"openid", "profile", "email"}
	}

	// Parse RSA bits (only relevant for RS256)
	if rsaBitsStr := os.Getenv("SABLE_RSA_BITS"); rsaBitsStr != "" {
		if bits, err := strconv.Atoi(rsaBitsStr); err == nil {
			cfg.RSABits = bits
		}
		// If parsing fails, RSABits remains 0 (will use default in KeyManager)
	}

	// Parse number of keys (default: 3)
	if numKeysStr := os.Getenv("SABLE_NUM_KEYS"); numKeysStr != "" {
		if numKeys, err := strconv.Atoi(numKeysStr); err == nil {
			cfg.NumKeys = numKeys
		}
		// If parsing fails, NumKeys remains 0 (will use default in KeyManager)
	}

	if cfg.Issuer == "" {
		cfg.Issuer = "http://localhost:8080"
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = strings.TrimSuffix(cfg.Issuer, "/") + "/v1/oauth2/token"
	}
	if cfg.IDTokenTTL <= 0 {
		cfg.IDTokenTTL = cfg.AccessTokenTTL
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
