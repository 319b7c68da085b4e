package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// TokenTransport selects where the session token is expected first.
type TokenTransport string

const (
	TokenTransportCookie TokenTransport = "cookie"
	TokenTransportHeader TokenTransport = "header"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerPort      string
	ServerHost      string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	LogLevel        string

	// Database configuration. DatabaseDriver is "postgres" or "sqlite".
	DatabaseDriver string
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string

	// Redis is optional; the generation rate limiter is disabled without it.
	RedisURL string

	// Session tokens
	JWTSecret      string
	TokenTTL       time.Duration
	TokenTransport TokenTransport
	CookieDomain   string
	CookieSecure   bool

	// One-time passwords and mail
	OTPTTL       time.Duration
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string

	// Recipe generation
	LLMBaseURL         string
	LLMAPIKey          string
	LLMModel           string
	GenerateRateLimit  int
	GenerateRateWindow time.Duration

	// Profile images. S3Endpoint points at an S3-compatible store such as
	// MinIO in local setups.
	S3Bucket   string
	S3Endpoint string
	AWSRegion  string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()

	if env.readsDotEnv() {
		// A missing .env is fine; real environment variables still apply.
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	cfg, err := load(env)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s configuration: %w", env, err)
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func load(env Environment) (*Config, error) {
	cfg := &Config{
		Environment:    env,
		ServerPort:     getEnv("SERVER_PORT", "8080"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		LogLevel:       getEnv("LOG_LEVEL", "info"),

		DatabaseDriver: getEnv("DB_DRIVER", "postgres"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         readSecretOrEnv("DB_USER", "db_user", "postgres"),
		DBPassword:     readSecretOrEnv("DB_PASSWORD", "db_password", ""),
		DBName:         getEnv("DB_NAME", "recipe_creator"),
		DBSSLMode:      getEnv("DB_SSL_MODE", "disable"),
		SQLitePath:     getEnv("SQLITE_PATH", "recipe_creator.db"),

		RedisURL: readSecretOrEnv("REDIS_URL", "redis_url", ""),

		JWTSecret:      readSecretOrEnv("JWT_SECRET", "jwt_secret", ""),
		TokenTransport: TokenTransport(strings.ToLower(getEnv("TOKEN_TRANSPORT", string(TokenTransportCookie)))),
		CookieDomain:   getEnv("COOKIE_DOMAIN", ""),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: readSecretOrEnv("SMTP_USERNAME", "smtp_username", ""),
		SMTPPassword: readSecretOrEnv("SMTP_PASSWORD", "smtp_password", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@recipecreator.app"),

		LLMBaseURL: getEnv("LLM_BASE_URL", "https://api.deepseek.com/v1"),
		LLMAPIKey:  readSecretOrEnv("LLM_API_KEY", "llm_api_key", ""),
		LLMModel:   getEnv("LLM_MODEL", "deepseek-chat"),

		S3Bucket:   getEnv("S3_BUCKET_NAME", ""),
		S3Endpoint: getEnv("S3_ENDPOINT", ""),
		AWSRegion:  getEnv("AWS_REGION", "us-east-1"),
	}

	var err error
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.OTPTTL, err = getDuration("OTP_TTL", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.GenerateRateWindow, err = getDuration("GENERATE_RATE_WINDOW", time.Hour); err != nil {
		return nil, err
	}
	if cfg.GenerateRateLimit, err = getInt("GENERATE_RATE_LIMIT", 20); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getBool("COOKIE_SECURE", env == Production); err != nil {
		return nil, err
	}

	return cfg, nil
}

// DatabaseURL returns the postgres connection URL used by the pool and the migrator.
func (c *Config) DatabaseURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// Addr is the listen address of the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// SMTPConfigured reports whether outbound mail can be delivered.
func (c *Config) SMTPConfigured() bool {
	return c.SMTPHost != ""
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// readSecretOrEnv prefers the environment variable, then <KEY>_FILE, then the
// Docker secret of the given name.
func readSecretOrEnv(envKey, secretName, fallback string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if path := os.Getenv(envKey + "_FILE"); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			return strings.TrimSpace(string(data))
		}
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return fallback
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}
