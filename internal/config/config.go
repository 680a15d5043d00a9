package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	CORS      CORSConfig
	Scheduler SchedulerConfig
	Secure    SecureConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port string
	Host string
	Addr string // Combined host:port for convenience
}

// DatabaseConfig holds database-specific configuration
type DatabaseConfig struct {
	Path string
}

// CORSConfig holds CORS-specific configuration
type CORSConfig struct {
	AllowedOrigins []string
}

// SchedulerConfig controls the year-end dividend calculation job.
// The job runs calculateDividends for the previous calendar year; the
// HTTP endpoint remains available for manual runs either way.
type SchedulerConfig struct {
	Enabled  bool
	CronSpec string
}

// SecureConfig holds the fernet key used to encrypt dividend mailing
// addresses at rest. Empty means a process-local key is generated.
type SecureConfig struct {
	MailingAddressKey string
}

// Load reads configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "5001"),
			Host: getEnv("SERVER_HOST", "localhost"),
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/deposit_pool.db"),
		},
		CORS: CORSConfig{
			AllowedOrigins: strings.Split(
				getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost"),
				",",
			),
		},
		Scheduler: SchedulerConfig{
			Enabled: getEnv("SCHEDULER_ENABLED", "false") == "true",
			// Default: 06:00 on January 1st, once the year has closed.
			CronSpec: getEnv("SCHEDULER_CRON", "0 6 1 1 *"),
		},
		Secure: SecureConfig{
			MailingAddressKey: getEnv("MAILING_ADDRESS_KEY", ""),
		},
	}

	// Combine host and port
	config.Server.Addr = fmt.Sprintf("%s:%s", config.Server.Host, config.Server.Port)

	return config, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
