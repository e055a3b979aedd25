package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenAddr   string
	DBPath       string
	PhotoPath    string
	OCRBackend   string
	OllamaHost   string
	OllamaModel  string
	ClaudeAPIKey string
	ClaudeModel  string
	LogLevel     string
	LogFile      string
	AppVersion   string
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first if present; variables already set win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ListenAddr:   getEnv("LISTEN_ADDR", ":8080"),
		DBPath:       getEnv("DB_PATH", "/data/nestory.db"),
		PhotoPath:    getEnv("PHOTO_LOCAL_PATH", "/data/photos"),
		OCRBackend:   getEnv("OCR_BACKEND", "ollama"),
		OllamaHost:   getEnv("OLLAMA_HOST", "http://localhost:11434"),
		OllamaModel:  getEnv("OLLAMA_MODEL", "llava"),
		ClaudeAPIKey: getEnv("CLAUDE_API_KEY", ""),
		ClaudeModel:  getEnv("CLAUDE_MODEL", "claude-sonnet-4-5"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		LogFile:      getEnv("LOG_FILE", ""),
		AppVersion:   getEnv("APP_VERSION", "dev"),
	}
}

func getEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}
