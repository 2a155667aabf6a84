package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// DefaultDataFile is where the fleet document lives when no override
// is configured.
const DefaultDataFile = "fleet_data.json"

// Config holds the application configuration
type Config struct {
	DataFile string
	LogLevel logrus.Level
}

// Load loads the configuration from environment variables and .env file
func Load() (*Config, error) {
	// Try to load .env file, but don't fail if it doesn't exist
	_ = godotenv.Load()

	dataFile := os.Getenv("FLEET_DATA_FILE")
	if dataFile == "" {
		dataFile = DefaultDataFile
	}

	level := logrus.InfoLevel
	if raw := os.Getenv("FLEET_LOG_LEVEL"); raw != "" {
		parsed, err := logrus.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid FLEET_LOG_LEVEL %q: %w", raw, err)
		}
		level = parsed
	}

	return &Config{
		DataFile: dataFile,
		LogLevel: level,
	}, nil
}
