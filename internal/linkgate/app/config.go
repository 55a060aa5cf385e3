package app

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultAllowedHost is the CDN origin download links may point at when no
// explicit allowlist is configured.
const DefaultAllowedHost = "kimdog-modding.b-cdn.net"

type Config struct {
	TokenSecret string // Required in prod: HMAC secret for token binding fingerprints
	GiftSecret  string // Optional: gift code signing secret (defaults to TokenSecret)
	MintKeyHash string // Optional: argon2id hash of the operator key required to mint gifts

	AllowedHosts []string // Optional: allowlisted download hosts (default: the studio CDN)
	MainHost     string   // Optional: default host for the status proxy builder form

	RedisAddr     string // Optional: enables the redis token store for multi-instance deployments
	RedisPassword string // Optional
	RedisDB       int    // Optional

	AuditDatabaseFile string // Optional: path to the SQLite audit database (empty disables auditing)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	SecureCookies        bool          // Secure attribute on the nonce cookie (default: true outside dev)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1m; tokens live seconds)
}

func LoadConfig() Config {
	env := getEnvOrDefault("ENV", "dev")

	cfg := Config{
		TokenSecret:          os.Getenv("DOWNLOAD_TOKEN_HMAC_SECRET"),
		GiftSecret:           os.Getenv("GIFT_CODE_SIGNING_SECRET"),
		MintKeyHash:          os.Getenv("GIFT_MINT_KEY_HASH"),
		MainHost:             os.Getenv("MAIN_HOST"),
		RedisAddr:            os.Getenv("REDIS_ADDR"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvIntOrDefault("REDIS_DB", 0),
		AuditDatabaseFile:    getEnvOrDefault("AUDIT_DATABASE_FILE", "linkgate-audit.db"),
		Env:                  env,
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		SecureCookies:        env != "dev",
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", time.Minute),
	}

	hosts := getEnvOrDefault("DOWNLOAD_ALLOWED_HOSTS", DefaultAllowedHost)
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			cfg.AllowedHosts = append(cfg.AllowedHosts, h)
		}
	}

	if v := os.Getenv("SECURE_COOKIES"); v != "" {
		cfg.SecureCookies = v != "0" && !strings.EqualFold(v, "false")
	}

	return cfg
}

// Validate rejects configurations that would silently weaken the token
// binding. A missing HMAC secret outside dev refuses to start rather than
// falling back to a guessable value.
func (cfg Config) Validate() error {
	if cfg.TokenSecret == "" && cfg.Env != "dev" {
		return errors.New("DOWNLOAD_TOKEN_HMAC_SECRET is required outside dev")
	}
	if len(cfg.AllowedHosts) == 0 {
		return errors.New("DOWNLOAD_ALLOWED_HOSTS must name at least one host")
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return errors.New("PORT must be a valid port number")
	}
	return nil
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are treated as seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}
