package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	ServerPort string

	JWTSecret      string
	JWTExpiryHours int

	AppEnv   string
	LogLevel string

	StorageDriver string
	AutoMigrate   bool

	RedisURL          string
	RealtimeChannel   string
	WorkspaceAudience string

	TracesExporter string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}
	return FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "taskboard"),
		DBPassword: getEnv("DB_PASSWORD", "taskboard"),
		DBName:     getEnv("DB_NAME", "taskboard"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		JWTSecret:      getEnv("JWT_SECRET", "supersecretkey"),
		JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),

		AppEnv:   getEnv("APP_ENV", "local"),
		LogLevel: getEnv("LOG_LEVEL", ""),

		StorageDriver: getEnv("STORAGE_DRIVER", StoragePostgres),
		AutoMigrate:   getEnvBool("AUTO_MIGRATE", true),

		RedisURL:          getEnv("REDIS_URL", ""),
		RealtimeChannel:   getEnv("REALTIME_CHANNEL", "taskboard:notifications"),
		WorkspaceAudience: getEnv("WORKSPACE_AUDIENCE", "scoped"),

		TracesExporter: getEnv("OTEL_TRACES_EXPORTER", "none"),
	}
}

// DSN is the libpq connection string used by gorm.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}

// MigrateURL is the golang-migrate URL for the pgx/v5 driver.
func (c *Config) MigrateURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
	)
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}
