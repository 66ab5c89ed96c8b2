package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Session state backends for the deny-list and failure counters.
const (
	SessionStateSQLite = "sqlite"
	SessionStateRedis  = "redis"
)

type Config struct {
	Issuer         string // issuer claim for tokens (default: growers-gate)
	BootstrapToken string // Optional: token required to create the first admin; empty disables bootstrap

	JWTSecret          string        // HMAC signing secret; generated per process when empty
	JWTPreviousSecrets []string      // Optional: retired secrets that still verify, as kid:secret or bare secret
	JWTKeyID           string        // kid of the signing secret (default: gate-hs256-1)
	SessionTTL         time.Duration // session token lifetime (default: 1h)
	ChallengeTTL       time.Duration // 2FA challenge lifetime (default: 5m)
	ResetTTL           time.Duration // password reset token lifetime (default: 1h)
	RefreshThreshold   time.Duration // remaining lifetime below which /refresh-token re-issues (default: 2m)
	TOTPIssuer         string        // name shown in authenticator apps (default: Growers Gate)

	DatabaseFile string // path to SQLite database file (default: ./gate.db)
	PepperFile   string // path to file containing pepper for password hashing (default: ./pepper)

	SessionState  string // sqlite or redis (default: sqlite)
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	HideUnknownResetEmail bool     // answer /forgot-password the same way for unknown addresses
	BlockedEmailDomains   []string // domains refused at registration
	CORSAllowedOrigins    []string // "*" allows any origin; empty sends no CORS headers
	TrustedProxies        []string // IPs or CIDRs whose X-Forwarded-For is believed; empty trusts none

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 3001)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		Issuer:         getEnvOrDefault("AUTH_ISSUER", "growers-gate"),
		BootstrapToken: os.Getenv("BOOTSTRAP_TOKEN"),

		JWTSecret:          os.Getenv("AUTH_JWT_SECRET"),
		JWTPreviousSecrets: getEnvList("AUTH_JWT_PREVIOUS_SECRETS"),
		JWTKeyID:           getEnvOrDefault("AUTH_JWT_KEY_ID", "gate-hs256-1"),
		SessionTTL:         getEnvDurationOrDefault("AUTH_TOKEN_TTL", time.Hour),
		ChallengeTTL:       getEnvDurationOrDefault("AUTH_CHALLENGE_TTL", 5*time.Minute),
		ResetTTL:           getEnvDurationOrDefault("AUTH_RESET_TTL", time.Hour),
		RefreshThreshold:   getEnvDurationOrDefault("AUTH_REFRESH_THRESHOLD", 2*time.Minute),
		TOTPIssuer:         getEnvOrDefault("AUTH_TOTP_ISSUER", "Growers Gate"),

		DatabaseFile: getEnvOrDefault("AUTH_DATABASE_FILE", "gate.db"),
		PepperFile:   getEnvOrDefault("AUTH_PEPPER_FILE", "pepper"),

		SessionState:  strings.ToLower(getEnvOrDefault("AUTH_SESSION_STATE", SessionStateSQLite)),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		HideUnknownResetEmail: getEnvBoolOrDefault("AUTH_RESET_HIDE_UNKNOWN_EMAIL", false),
		BlockedEmailDomains:   getEnvList("AUTH_BLOCKED_EMAIL_DOMAINS"),
		CORSAllowedOrigins:    getEnvList("CORS_ALLOWED_ORIGINS"),
		TrustedProxies:        getEnvList("TRUSTED_PROXIES"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 3001),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
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

	if b, err := strconv.ParseBool(value); err == nil {
		return b
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

	// Bare integers are minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string) []string {
	var out []string
	for part := range strings.SplitSeq(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
