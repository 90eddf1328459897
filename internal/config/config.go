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
	LogLevel    string

	// Database
	DatabaseURL    string
	MigrateOnStart bool

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	TickRate         int // physics ticks per second
	FrameRate        int // runner frames per second
	MaxTicksPerFrame int
	TableProfile     string // optional YAML file

	// Match lifecycle
	IdlePauseSeconds       int
	IdleWorkerPollInterval int
	SnapshotTTLMinutes     int

	// Security
	JWTSecret           string
	SeatTokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnvBool("MIGRATE_ON_START", true),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		TickRate:         getEnvInt("TICK_RATE", 120),
		FrameRate:        getEnvInt("FRAME_RATE", 60),
		MaxTicksPerFrame: getEnvInt("MAX_TICKS_PER_FRAME", 240),
		TableProfile:     getEnv("TABLE_PROFILE", ""),

		// Match lifecycle
		IdlePauseSeconds:       getEnvInt("IDLE_PAUSE_SECONDS", 300),
		IdleWorkerPollInterval: getEnvInt("IDLE_WORKER_POLL_SECONDS", 5),
		SnapshotTTLMinutes:     getEnvInt("SNAPSHOT_TTL_MINUTES", 60),

		// Security
		JWTSecret:           getEnv("JWT_SECRET", "change-me-in-production"),
		SeatTokenTTLMinutes: getEnvInt("SEAT_TOKEN_TTL_MINUTES", 180),
	}
}

// IsProduction reports whether the server runs with APP_ENV=production.
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
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}
