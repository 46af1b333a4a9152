package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// HTTP
	ListenAddress string

	// Application database
	MongoURI      string
	MongoDatabase string

	// Auth
	JWTSecret string

	// Event bus (optional; empty disables anomaly publishing)
	NatsURL string

	// Operational settings
	RecorderQueueSize int
}

func Load() (*Config, error) {
	// Try multiple .env locations
	envPaths := []string{
		".env",
		"../.env",
		"/app/.env", // Docker
	}

	envLoaded := false
	for _, path := range envPaths {
		if err := godotenv.Load(path); err == nil {
			log.Printf("Loaded config from: %s", path)
			envLoaded = true
			break
		}
	}

	if !envLoaded {
		log.Printf("No .env file found, using environment variables")
	}

	config := &Config{
		ListenAddress: getEnvOrDefault("LISTEN_ADDRESS", ":3001"),
		MongoURI:      os.Getenv("MONGO_URI"),
		MongoDatabase: getEnvOrDefault("MONGO_DATABASE", "dbpulse"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		NatsURL:       os.Getenv("NATS_URL"),
	}

	queueStr := getEnvOrDefault("RECORDER_QUEUE_SIZE", "256")
	queueSize, err := strconv.Atoi(queueStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RECORDER_QUEUE_SIZE: %w", err)
	}
	config.RecorderQueueSize = queueSize

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func (c *Config) Validate() error {
	// Required fields
	required := map[string]string{
		"MONGO_URI":  c.MongoURI,
		"JWT_SECRET": c.JWTSecret,
	}

	for name, value := range required {
		if value == "" {
			return fmt.Errorf("%s is required", name)
		}
	}

	if c.RecorderQueueSize < 1 {
		return fmt.Errorf("RECORDER_QUEUE_SIZE must be at least 1")
	}

	return nil
}

// Helper function for defaults
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
