package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Sessions
	SessionIdleMinutes     int
	IdleWorkerPollInterval int // seconds
	MaxSessions            int
	TickRate               int // frames per second

	// Table
	TableConfigPath string

	// Achievements
	AchievementStore string // file, redis or postgres
	AchievementFile  string

	// Security
	JWTSecret       string
	SessionTokenMin int
	AdminTokenHash  string
	AdminAllowedIPs []string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Sessions
		SessionIdleMinutes:     getEnvInt("SESSION_IDLE_MINUTES", 30),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 30),
		MaxSessions:            getEnvInt("MAX_SESSIONS", 500),
		TickRate:               getEnvInt("TICK_RATE", 60),

		// Table
		TableConfigPath: getEnv("TABLE_CONFIG", ""),

		// Achievements
		AchievementStore: getEnv("ACHIEVEMENT_STORE", "file"),
		AchievementFile:  getEnv("ACHIEVEMENT_FILE", "achievements.json"),

		// Security
		JWTSecret:       getEnv("JWT_SECRET", "change-me-in-production"),
		SessionTokenMin: getEnvInt("SESSION_TOKEN_MINUTES", 240),
		AdminTokenHash:  getEnv("ADMIN_TOKEN_HASH", ""),
		AdminAllowedIPs: getEnvList("ADMIN_ALLOWED_IPS"),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getEnvList splits a comma separated value, dropping empty entries.
func getEnvList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
