package config

import (
	"os"
	"strconv"

	"gocausal/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig
	Simulation SimulationConfig
	Data       DataConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	UIPort  string
	APIPort string
	GinMode string
}

// SimulationConfig holds engine defaults
type SimulationConfig struct {
	DefaultTrials int
	DefaultSeed   int64
	MaxTrials     int
}

// DataConfig holds data loading settings
type DataConfig struct {
	DatasetFile string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			UIPort:  getEnvOrDefault("PORT", "8080"),
			APIPort: getEnvOrDefault("API_PORT", "8081"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		Simulation: SimulationConfig{
			DefaultTrials: getEnvIntOrDefault("DEFAULT_TRIALS", 10000),
			DefaultSeed:   getEnvInt64OrDefault("DEFAULT_SEED", 42),
			MaxTrials:     getEnvIntOrDefault("MAX_TRIALS", 1000000),
		},
		Data: DataConfig{
			DatasetFile: getEnvOrDefault("DATASET_FILE", ""),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}
	return config, nil
}

func validateConfig(config *Config) error {
	if config.Simulation.DefaultTrials <= 0 {
		return errors.ConfigInvalid("DEFAULT_TRIALS must be positive")
	}
	if config.Simulation.MaxTrials < config.Simulation.DefaultTrials {
		return errors.ConfigInvalid("MAX_TRIALS must be at least DEFAULT_TRIALS")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
