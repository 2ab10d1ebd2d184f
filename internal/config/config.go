package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const defaultJWTSecret = "dev-secret-change-in-production"

var ErrDefaultSecret = errors.New("JWT_SECRET must be set in production environment")

// Storage backends.
const (
	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds the API server configuration.
type Config struct {
	Port            string
	Env             string
	DatabaseDSN     string
	RunMigrations   bool
	JWTSecret       string
	JWTExpiry       time.Duration
	RequireAuth     bool
	AutoCreateUsers bool
	MaxUploadBytes  int64

	Storage StorageConfig
	OpenAI  OpenAIConfig

	// RedisAddr enables Redis-backed chat memory when set.
	RedisAddr string
}

// StorageConfig selects where uploaded images are written.
type StorageConfig struct {
	Backend   string
	ImageDir  string
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
	BaseURL   string
	PathStyle bool
}

// OpenAIConfig configures the chat completion backend. An empty APIKey
// disables analysis and chat.
type OpenAIConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

// Load reads the server configuration from the environment.
func Load() (Config, error) {
	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("ENV", "development"),
		DatabaseDSN:     getEnv("DATABASE_DSN", "root:password@tcp(127.0.0.1:3306)/nutriscan?parseTime=true"),
		RunMigrations:   getBool("RUN_MIGRATIONS", true),
		JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
		JWTExpiry:       getDuration("JWT_EXPIRY", 24*time.Hour),
		RequireAuth:     getBool("REQUIRE_AUTH", false),
		AutoCreateUsers: getBool("AUTO_CREATE_USERS", false),
		MaxUploadBytes:  getInt64("MAX_UPLOAD_BYTES", 10<<20),
		Storage: StorageConfig{
			Backend:   getEnv("STORAGE_BACKEND", StorageLocal),
			ImageDir:  getEnv("IMAGE_DIR", "uploads"),
			Bucket:    os.Getenv("S3_BUCKET"),
			Region:    getEnv("S3_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			AccessKey: os.Getenv("S3_ACCESS_KEY"),
			SecretKey: os.Getenv("S3_SECRET_KEY"),
			BaseURL:   os.Getenv("S3_BASE_URL"),
			PathStyle: getBool("S3_PATH_STYLE", false),
		},
		OpenAI: OpenAIConfig{
			APIKey:  os.Getenv("OPENAI_API_KEY"),
			BaseURL: os.Getenv("OPENAI_BASE_URL"),
			Model:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		},
		RedisAddr: os.Getenv("REDIS_ADDR"),
	}

	if cfg.Env == "production" && cfg.JWTSecret == defaultJWTSecret {
		return cfg, ErrDefaultSecret
	}
	if cfg.Env == "production" && cfg.AutoCreateUsers {
		slog.Warn("AUTO_CREATE_USERS is enabled in production")
	}

	return cfg, nil
}

// ClientConfig holds the terminal client configuration.
type ClientConfig struct {
	APIBaseURL string
	StateFile  string
}

// LoadClient reads the client configuration from the environment.
func LoadClient() ClientConfig {
	stateFile := os.Getenv("NUTRISCAN_STATE_FILE")
	if stateFile == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			stateFile = filepath.Join(dir, "nutriscan", "state.json")
		} else {
			stateFile = ".nutriscan-state.json"
		}
	}

	return ClientConfig{
		APIBaseURL: getEnv("NUTRISCAN_API_BASE_URL", "http://localhost:8080"),
		StateFile:  stateFile,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getInt64(key string, fallback int64) int64 {
	v, err := strconv.ParseInt(os.Getenv(key), 10, 64)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
