package config

import (
	"strconv"

	"github.com/joho/godotenv"
)

// LoadEnv reads a .env file and returns a map of key-value pairs.
func LoadEnv(path string) (map[string]string, error) {
	return godotenv.Read(path)
}

// ApplyEnvOverrides updates the configuration based on environment variables.
func ApplyEnvOverrides(cfg *Config, env map[string]string) {
	if val, ok := env["PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}
	if val, ok := env["SERVER_PORT"]; ok {
		if port, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = port
		}
	}

	if val, ok := env["DATABASE_URL"]; ok {
		cfg.Database.URL = val
	}

	if val, ok := env["MAX_CONVERSATION_HISTORY"]; ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Conversation.MaxHistory = n
		}
	}
	if val, ok := env["MAX_MESSAGE_LENGTH"]; ok {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			cfg.Conversation.MaxMessageLength = n
		}
	}

	if val, ok := env["LOG_LEVEL"]; ok {
		cfg.Log.Level = val
	}
}
