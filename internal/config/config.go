package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendAPI   = "api"
	BackendMySQL = "mysql"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppPort string
	AppURL  string

	// Logging
	LogLevel string

	// Database
	DBHost            string
	DBPort            string
	DBDatabase        string
	DBUsername        string
	DBPassword        string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// Upload
	UploadMaxSize          int
	UploadPath             string
	AsyncValidationMinSize int

	// Masterlist collaborator
	MasterlistBackend    string
	MasterlistAPIURL     string
	MasterlistAPITimeout time.Duration

	// Import sessions
	SessionTTL        time.Duration
	SessionLockTTL    time.Duration
	SubmitConcurrency int
	SessionLogEnabled bool

	// Worker
	WorkerConcurrency int

	// Asynq
	AsynqRedisAddr     string
	AsynqRedisPassword string
	AsynqRedisDB       int
}

func Load() (*Config, error) {
	// Load .env file if exists
	// Try to load from current dir first, then parent dirs
	_ = godotenv.Load()
	_ = godotenv.Load("../../.env") // For when running from cmd/web or cmd/worker

	cfg := &Config{
		AppName: getEnv("APP_NAME", "Masterlist Onboarding"),
		AppEnv:  getEnv("APP_ENV", "development"),
		AppPort: getEnv("APP_PORT", "8080"),
		AppURL:  getEnv("APP_URL", "http://localhost:8080"),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		DBHost:            getEnv("DB_HOST", "127.0.0.1"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBDatabase:        getEnv("DB_DATABASE", "masterlist"),
		DBUsername:        getEnv("DB_USERNAME", "masterlist"),
		DBPassword:        getEnv("DB_PASSWORD", ""),
		DBMaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
		DBConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),

		RedisHost:     getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		UploadMaxSize:          getEnvAsInt("UPLOAD_MAX_SIZE", 20971520), // 20MB
		UploadPath:             getEnv("UPLOAD_PATH", "./storage/uploads"),
		AsyncValidationMinSize: getEnvAsInt("ASYNC_VALIDATION_MIN_SIZE", 2097152), // 2MB

		MasterlistBackend:    strings.ToLower(getEnv("MASTERLIST_BACKEND", BackendAPI)),
		MasterlistAPIURL:     getEnv("MASTERLIST_API_URL", "https://api-assignment.inveesync.in"),
		MasterlistAPITimeout: getEnvAsDuration("MASTERLIST_API_TIMEOUT", 30*time.Second),

		SessionTTL:        getEnvAsDuration("SESSION_TTL", 72*time.Hour),
		SessionLockTTL:    getEnvAsDuration("SESSION_LOCK_TTL", 10*time.Second),
		SubmitConcurrency: getEnvAsInt("SUBMIT_CONCURRENCY", 8),
		SessionLogEnabled: getEnvAsBool("SESSION_LOG_ENABLED", true),

		WorkerConcurrency: getEnvAsInt("WORKER_CONCURRENCY", 4),

		AsynqRedisAddr:     getEnv("ASYNQ_REDIS_ADDR", "127.0.0.1:6379"),
		AsynqRedisPassword: getEnv("ASYNQ_REDIS_PASSWORD", ""),
		AsynqRedisDB:       getEnvAsInt("ASYNQ_REDIS_DB", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects settings the services cannot start with.
func (c *Config) Validate() error {
	switch c.MasterlistBackend {
	case BackendAPI:
		if c.MasterlistAPIURL == "" {
			return fmt.Errorf("MASTERLIST_API_URL is required for the %q backend", BackendAPI)
		}
	case BackendMySQL:
	default:
		return fmt.Errorf("unsupported MASTERLIST_BACKEND: %s", c.MasterlistBackend)
	}
	if c.SubmitConcurrency < 1 {
		return fmt.Errorf("SUBMIT_CONCURRENCY must be positive, got %d", c.SubmitConcurrency)
	}
	return nil
}

func (c *Config) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=Local",
		c.DBUsername,
		c.DBPassword,
		c.DBHost,
		c.DBPort,
		c.DBDatabase,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
