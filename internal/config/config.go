package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string

	// Ollama
	OllamaURL    string
	DefaultModel string

	// Chat behavior: when true the backend keeps the conversation history
	// and sends only the newest turn per request.
	HistoryMode bool

	// Persistence add-on (Postgres + Redis). When disabled the backend runs
	// fully in-memory and neither store is contacted.
	PersistenceEnabled bool
	DatabaseURL        string
	RedisURL           string
	WorkerCount        int

	// Local API auth. An empty key disables auth entirely (local dev).
	LocalAPIKey string
	JWTSecret   string

	// Frontend
	FrontendURL string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	cfg := &Config{
		Port:               getEnvOrDefault("PORT", "8080"),
		Env:                getEnvOrDefault("ENV", "development"),
		OllamaURL:          getEnvOrDefault("OLLAMA_URL", "http://127.0.0.1:11434"),
		DefaultModel:       getEnvOrDefault("OLLAMA_MODEL", "llama3"),
		HistoryMode:        getEnvAsBoolOrDefault("HISTORY_MODE", true),
		PersistenceEnabled: getEnvAsBoolOrDefault("PERSISTENCE_ENABLED", false),
		DatabaseURL:        getEnvOrDefault("DATABASE_URL", "postgres://localhost:5432/llamadesk?sslmode=disable"),
		RedisURL:           getEnvOrDefault("REDIS_URL", "redis://localhost:6379/0"),
		WorkerCount:        getEnvAsIntOrDefault("WORKER_COUNT", 2),
		LocalAPIKey:        getEnvOrDefault("LOCAL_API_KEY", ""),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		FrontendURL:        getEnvOrDefault("FRONTEND_URL", "http://localhost:1420"),
	}

	if cfg.LocalAPIKey != "" && cfg.JWTSecret == "" {
		cfg.JWTSecret = mustGetEnv("JWT_SECRET")
	}

	return cfg
}

// AuthEnabled reports whether the local API requires session tokens.
func (c *Config) AuthEnabled() bool {
	return c.LocalAPIKey != ""
}

func mustGetEnv(key string) string {
	val := os.Getenv(key)
	if val == "" {
		panic("required environment variable " + key + " is not set")
	}
	return val
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}
	return n
}

func getEnvAsBoolOrDefault(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}
