package config

import (
	"os"
	"strconv"
	"strings"
)

// Config holds the application configuration.
type Config struct {
	ServerPort          int
	DatabasePath        string
	JWTSecret           string
	AutoProvisionLogins bool // first login with an unseen username creates the credential
	AllowedOrigins      []string
	LogLevel            string
}

// Load loads configuration from environment variables or sets defaults.
func Load() (*Config, error) {
	portStr := getEnv("PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, err
	}

	autoProvision, err := strconv.ParseBool(getEnv("AUTO_PROVISION_LOGINS", "false"))
	if err != nil {
		return nil, err
	}

	return &Config{
		ServerPort:          port,
		DatabasePath:        getEnv("DATABASE_PATH", "./kosar.db"),
		JWTSecret:           getEnv("JWT_SECRET", "dev_secret"),
		AutoProvisionLogins: autoProvision,
		AllowedOrigins:      strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:3000"), ","),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Helper to get an environment variable with a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
