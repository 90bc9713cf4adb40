package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDriver          string
	DBHost            string
	DBPort            string
	DBUser            string
	DBPassword        string
	DBName            string
	RedisHost         string
	RedisPort         string
	SessionSecret     string
	GinMode           string
	OpenAIAPIKey      string
	ScraperServiceURL string
}

func Load() *Config {
	// Optional; real env vars win over .env values
	_ = godotenv.Load()

	return &Config{
		DBDriver:          getEnv("DB_DRIVER", "mysql"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBPort:            getEnv("DB_PORT", "3306"),
		DBUser:            getEnv("DB_USER", "leaduser"),
		DBPassword:        getEnv("DB_PASSWORD", "leadpassword"),
		DBName:            getEnv("DB_NAME", "lead_management"),
		RedisHost:         getEnv("REDIS_HOST", "localhost"),
		RedisPort:         getEnv("REDIS_PORT", "6379"),
		SessionSecret:     getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		GinMode:           getEnv("GIN_MODE", "debug"),
		OpenAIAPIKey:      getEnv("OPENAI_API_KEY", ""),
		ScraperServiceURL: getEnv("SCRAPER_SERVICE_URL", ""),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
