package config

import (
	"fmt"
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
	ServerPort    string
	ServerHost    string
	PublicBaseURL string

	// Database configuration
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	// Redis configuration
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int
	RedisURL      string

	// JWT configuration
	JWTSecret string
	TokenTTL  time.Duration

	// Media storage. S3 is used when a bucket is configured, local disk otherwise.
	S3Bucket       string
	S3Region       string
	S3PublicURL    string
	MediaRoot      string
	MediaURLPrefix string

	// Short links
	HashIDSalt      string
	HashIDMinLength int

	// HTTP
	CORSOrigins        []string
	RecipeCreateLimit  int
	RecipeCreateWindow time.Duration

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadConfig creates a new Config instance with values from environment variables or secrets
func LoadConfig() (*Config, error) {
	env := GetEnvironment()
	cfg := &Config{}

	switch env {
	case CI:
		loadCIConfig(cfg)
	case Development, Test:
		// A missing .env file is fine; real environment variables still apply.
		_ = godotenv.Load()
		loadDevConfig(cfg)
	case Production:
		loadProdConfig(cfg)
	default:
		return nil, fmt.Errorf("unknown environment: %s", env)
	}

	if err := applyCommon(cfg); err != nil {
		return nil, err
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// loadCIConfig loads configuration for CI using environment variables only
func loadCIConfig(cfg *Config) {
	cfg.DBHost = os.Getenv("DB_HOST")
	cfg.DBPort = os.Getenv("DB_PORT")
	cfg.DBUser = os.Getenv("DB_USER")
	cfg.DBPassword = os.Getenv("DB_PASSWORD")
	cfg.DBName = os.Getenv("DB_NAME")
	cfg.DBSSLMode = getEnv("DB_SSL_MODE", "disable")
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	cfg.RedisPassword = os.Getenv("REDIS_PASSWORD")
	cfg.HashIDSalt = os.Getenv("HASHID_SALT")
}

// loadDevConfig loads configuration for development and test. Values come from
// the environment first, then Docker secrets, then local defaults.
func loadDevConfig(cfg *Config) {
	cfg.DBHost = lookup("DB_HOST", "db_host", "localhost")
	cfg.DBPort = lookup("DB_PORT", "db_port", "5432")
	cfg.DBUser = lookup("DB_USER", "db_user", "postgres")
	cfg.DBPassword = lookup("DB_PASSWORD", "db_password", "postgres")
	cfg.DBName = lookup("DB_NAME", "db_name", "foodgram")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "db_ssl_mode", "disable")
	cfg.JWTSecret = lookup("JWT_SECRET", "jwt_secret", "dev-jwt-secret")
	cfg.RedisPassword = lookup("REDIS_PASSWORD", "redis_password", "")
	cfg.HashIDSalt = lookup("HASHID_SALT", "hashid_salt", "foodgram-dev")
}

// loadProdConfig loads configuration for production. Sensitive values are read
// from Docker secrets only.
func loadProdConfig(cfg *Config) {
	cfg.DBHost = lookup("DB_HOST", "db_host", "")
	cfg.DBPort = lookup("DB_PORT", "db_port", "5432")
	cfg.DBUser = readSecret("db_user")
	cfg.DBPassword = readSecret("db_password")
	cfg.DBName = lookup("DB_NAME", "db_name", "")
	cfg.DBSSLMode = lookup("DB_SSL_MODE", "db_ssl_mode", "require")
	cfg.JWTSecret = readSecret("jwt_secret")
	cfg.RedisPassword = readSecret("redis_password")
	cfg.HashIDSalt = readSecret("hashid_salt")
}

// applyCommon fills the settings that are read the same way in every environment.
func applyCommon(cfg *Config) error {
	cfg.ServerPort = lookup("SERVER_PORT", "server_port", "8080")
	cfg.ServerHost = lookup("SERVER_HOST", "server_host", "0.0.0.0")
	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", ""), "/")

	cfg.DBDriver = strings.ToLower(getEnv("DB_DRIVER", "postgres"))
	cfg.SQLitePath = getEnv("SQLITE_PATH", "foodgram.db")

	cfg.RedisHost = lookup("REDIS_HOST", "redis_host", "")
	cfg.RedisPort = lookup("REDIS_PORT", "redis_port", "6379")
	cfg.RedisURL = lookup("REDIS_URL", "redis_url", "")

	cfg.S3Bucket = getEnv("S3_BUCKET_NAME", "")
	cfg.S3Region = getEnv("AWS_REGION", "")
	cfg.S3PublicURL = strings.TrimRight(getEnv("S3_PUBLIC_URL", ""), "/")
	cfg.MediaRoot = getEnv("MEDIA_ROOT", "media")
	cfg.MediaURLPrefix = "/" + strings.Trim(getEnv("MEDIA_URL", "/media/"), "/")

	cfg.CORSOrigins = splitList(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	cfg.LogLevel = getEnv("LOG_LEVEL", "info")
	cfg.LogFormat = getEnv("LOG_FORMAT", "json")

	var err error
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		return err
	}
	if cfg.HashIDMinLength, err = getInt("HASHID_MIN_LENGTH", 8); err != nil {
		return err
	}
	if cfg.RecipeCreateLimit, err = getInt("RECIPE_CREATE_LIMIT", 20); err != nil {
		return err
	}
	if cfg.RecipeCreateWindow, err = getDuration("RECIPE_CREATE_WINDOW", time.Hour); err != nil {
		return err
	}
	if cfg.TokenTTL, err = getDuration("JWT_TTL", 24*time.Hour); err != nil {
		return err
	}
	return nil
}

// DSN returns the Postgres connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return c.ServerHost + ":" + c.ServerPort
}

// UsesSQLite reports whether the configured driver is SQLite.
func (c *Config) UsesSQLite() bool {
	return c.DBDriver == "sqlite"
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

func lookup(envKey, secretName, def string) string {
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	if v := readSecret(secretName); v != "" {
		return v
	}
	return def
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, v)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
