package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

const defaultJWTSecret = "default-jwt-secret-change-me"

type Config struct {
	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string
	SQLitePath string

	Port     string
	GinMode  string
	LogLevel string

	JWTSecret            string
	JWTIssuer            string
	AccessTokenTTL       time.Duration
	VerificationTokenTTL time.Duration
	// ExposeVerificationToken returns the raw verification token in the
	// request-verification response instead of relying on the notifier alone.
	ExposeVerificationToken bool
	BcryptCost              int

	CORSOrigins  []string
	OpenAIAPIKey string
}

func Load() *Config {
	return &Config{
		DBDriver:   getEnv("DB_DRIVER", "mysql"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "taskuser"),
		DBPassword: getEnv("DB_PASSWORD", "taskpassword"),
		DBName:     getEnv("DB_NAME", "taskaza"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "taskaza.db"),

		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		JWTSecret:               getEnv("JWT_SECRET", defaultJWTSecret),
		JWTIssuer:               getEnv("JWT_ISSUER", "taskaza"),
		AccessTokenTTL:          getEnvDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
		VerificationTokenTTL:    getEnvDuration("VERIFICATION_TOKEN_TTL", time.Hour),
		ExposeVerificationToken: getEnvBool("EXPOSE_VERIFICATION_TOKEN", true),
		BcryptCost:              getEnvInt("BCRYPT_COST", 10),

		CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"http://localhost:3000"}),
		OpenAIAPIKey: getEnv("OPENAI_API_KEY", ""),
	}
}

// Validate rejects configurations that are unsafe to serve with.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	if c.GinMode == "release" && c.JWTSecret == defaultJWTSecret {
		return errors.New("JWT_SECRET must be set in release mode")
	}
	if c.AccessTokenTTL <= 0 {
		return errors.New("ACCESS_TOKEN_TTL must be positive")
	}
	if c.VerificationTokenTTL <= 0 {
		return errors.New("VERIFICATION_TOKEN_TTL must be positive")
	}
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return errors.New("DB_DRIVER must be one of mysql, postgres, sqlite")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
