package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all configuration for the municipal reports service.
type Config struct {
	// Database configuration
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// RabbitMQ configuration
	RabbitMQHost     string
	RabbitMQPort     string
	RabbitMQUser     string
	RabbitMQPassword string
	RabbitMQExchange string
	RabbitMQEnabled  bool

	// Auth
	JWTSecret string

	// Server
	Port int

	// Logging
	LogLevel string
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret_app"),
		DBName:     getEnv("DB_NAME", "municipal_reports"),

		RabbitMQHost:     getEnv("AMQP_HOST", "localhost"),
		RabbitMQPort:     getEnv("AMQP_PORT", "5672"),
		RabbitMQUser:     getEnv("AMQP_USER", "guest"),
		RabbitMQPassword: getEnv("AMQP_PASSWORD", "guest"),
		RabbitMQExchange: getEnv("RABBITMQ_EXCHANGE", "report_events"),
		RabbitMQEnabled:  getBoolEnv("RABBITMQ_ENABLED", true),

		JWTSecret: getEnv("JWT_SECRET", ""),

		Port: getIntEnv("PORT", 8080),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// GetRabbitMQURL constructs the AMQP URL from individual components.
func (c *Config) GetRabbitMQURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", c.RabbitMQUser, c.RabbitMQPassword, c.RabbitMQHost, c.RabbitMQPort)
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value.
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getBoolEnv gets a boolean environment variable or returns a default value.
func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
