package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	ServerPort string
	GinMode    string
	LogLevel   string

	JWTSecret  string
	JWTTTL     time.Duration
	RefreshTTL time.Duration

	RedisURL string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "feedback_user"),
		DBPassword: getEnv("DB_PASSWORD", "feedback_pass"),
		DBName:     getEnv("DB_NAME", "feedback_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "release"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		JWTSecret:  getEnv("JWT_SECRET", "supersecretkey"),
		JWTTTL:     getDuration("JWT_TTL", 15*time.Minute),
		RefreshTTL: getDuration("REFRESH_TTL", 7*24*time.Hour),
		RedisURL:   getEnv("REDIS_URL", "redis://localhost:6379/0"),
	}
}

// DSN builds the postgres connection string.
func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" port=" + c.DBPort +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" sslmode=" + c.DBSSLMode
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

// getDuration accepts Go duration strings ("15m") or plain seconds.
func getDuration(key string, defaultVal time.Duration) time.Duration {
	raw, exists := os.LookupEnv(key)
	if !exists || raw == "" {
		return defaultVal
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	log.Printf("⚠️  Invalid duration for %s=%q, using %s", key, raw, defaultVal)
	return defaultVal
}
