package server

import (
	"os"
	"strconv"
)

// Config holds the drafterd runtime settings, loaded from environment
// variables with sensible defaults.
type Config struct {
	Port         string
	Environment  string
	DataDir      string
	DBPath       string
	ReadTimeout  int
	WriteTimeout int
}

// LoadConfig reads configuration from the environment.
func LoadConfig() *Config {
	return &Config{
		Port:         getEnv("PORT", "5000"),
		Environment:  getEnv("ENV", "development"),
		DataDir:      getEnv("DRAFTER_DATA_DIR", "data/sessions"),
		DBPath:       getEnv("DRAFTER_DB_PATH", "data/db/drafter.db"),
		ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
		WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
	}
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}
