package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost          string
	DBPort          string
	DBUser          string
	DBPassword      string
	DBName          string
	JWTSecret       string
	ServerPort      string
	GeneratorAPIURL string
	GeneratorAPIKey string
	ReconcileCron   string
	UploadsDir      string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "postgres"),
		DBName:          getEnv("DB_NAME", "lectoria"),
		JWTSecret:       getEnv("JWT_SECRET", "secret"),
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		GeneratorAPIURL: getEnv("GENERATOR_API_URL", "http://localhost:9090/v1/generate"),
		GeneratorAPIKey: getEnv("GENERATOR_API_KEY", ""),
		ReconcileCron:   getEnv("RECONCILE_CRON", "@hourly"),
		UploadsDir:      getEnv("UPLOADS_DIR", "./uploads"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
