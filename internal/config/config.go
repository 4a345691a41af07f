package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds terminal configuration.
type Config struct {
	Port            string
	BackendURL      string
	StoreBackend    string // "file" or "postgres"
	CredentialsPath string
	DatabaseURL     string
	TerminalID      string
	RabbitMQURL     string // empty disables the audit trail
	AllowedOrigins  string
	PollInterval    time.Duration
	Environment     string // development, staging, production
}

// Load reads configuration from environment variables (and a .env file
// if one exists) and validates it.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		Port:            getEnv("PORT", "8090"),
		BackendURL:      getEnv("BACKEND_API_URL", "http://localhost:8080"),
		StoreBackend:    getEnv("STORE_BACKEND", "file"),
		CredentialsPath: getEnv("CREDENTIALS_PATH", defaultCredentialsPath()),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		TerminalID:      getEnv("TERMINAL_ID", ""),
		RabbitMQURL:     getEnv("RABBITMQ_URL", ""),
		AllowedOrigins:  getEnv("ALLOWED_ORIGINS", "http://localhost:8090"),
		PollInterval:    getEnvDuration("SESSION_POLL_SECONDS", 60),
		Environment:     getEnv("ENVIRONMENT", "development"),
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	return cfg
}

// Validate checks configuration for correctness.
func (c *Config) Validate() error {
	if c.BackendURL == "" {
		return fmt.Errorf("BACKEND_API_URL must be set")
	}

	switch c.StoreBackend {
	case "file":
		if c.CredentialsPath == "" {
			return fmt.Errorf("CREDENTIALS_PATH must be set for the file store")
		}
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set for the postgres store")
		}
		if c.TerminalID == "" {
			return fmt.Errorf("TERMINAL_ID must be set for the postgres store")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q (want file or postgres)", c.StoreBackend)
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("SESSION_POLL_SECONDS must be positive")
	}

	if c.IsProduction() && c.AllowedOrigins != "" {
		log.Println("WARNING: Ensure ALLOWED_ORIGINS uses HTTPS in production")
	}

	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev" || c.Environment == ""
}

func defaultCredentialsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".edhumeni/credentials.json"
	}
	return home + "/.edhumeni/credentials.json"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultSeconds int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
		log.Printf("Invalid %s value %q, using default", key, os.Getenv(key))
	}
	return time.Duration(defaultSeconds) * time.Second
}
