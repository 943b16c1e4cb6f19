package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/arenalink/auth-service/internal/domain"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string

	// Redis configuration; empty address means the Postgres limiter is used
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// JWT configuration
	JWTSecret          string
	JWTIssuer          string
	JWTAccessDuration  time.Duration
	JWTRefreshDuration time.Duration

	// Login protection
	MaxLoginAttempts int
	LockoutDuration  time.Duration

	// Session lifetimes
	UserSessionDuration  time.Duration
	AdminSessionDuration time.Duration

	// Server configuration
	ServerPort int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() (*Config, error) {
	// Load .env from project root
	_ = godotenv.Load()

	accessDuration, err := time.ParseDuration(getEnv("JWT_ACCESS_TOKEN_DURATION", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_DURATION: %w", err)
	}

	refreshDuration, err := time.ParseDuration(getEnv("JWT_REFRESH_TOKEN_DURATION", "720h"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_REFRESH_TOKEN_DURATION: %w", err)
	}

	lockoutDuration, err := time.ParseDuration(getEnv("LOCKOUT_DURATION", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCKOUT_DURATION: %w", err)
	}

	userSession, err := time.ParseDuration(getEnv("SESSION_DURATION_USER", "168h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_DURATION_USER: %w", err)
	}

	adminSession, err := time.ParseDuration(getEnv("SESSION_DURATION_ADMIN", "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_DURATION_ADMIN: %w", err)
	}

	secret := getEnv("JWT_SECRET", "")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnvInt("DB_PORT", 5432),
		DBUser:     getEnv("DB_USER", "auth"),
		DBPassword: getEnv("DB_PASSWORD", "auth"),
		DBName:     getEnv("DB_NAME", "auth"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		JWTSecret:          secret,
		JWTIssuer:          getEnv("JWT_ISSUER", "https://auth.arenalink.io"),
		JWTAccessDuration:  accessDuration,
		JWTRefreshDuration: refreshDuration,

		MaxLoginAttempts: getEnvInt("MAX_LOGIN_ATTEMPTS", domain.DefaultMaxLoginAttempts),
		LockoutDuration:  lockoutDuration,

		UserSessionDuration:  userSession,
		AdminSessionDuration: adminSession,

		ServerPort: getEnvInt("PORT", 8080),
	}, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as an integer or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
