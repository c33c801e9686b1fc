package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTSecret     string
	ServerPort    string
	AllowOrigins  string
	WebhookSecret string
	CronSecret    string

	AdminEmail    string
	AdminPassword string

	// SweepInterval is the in-process subscription-expiry sweep cadence in
	// minutes. Zero disables the sweeper; the cron endpoint still works.
	SweepInterval int
}

func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "postgres"),
		DBName:        getEnv("DB_NAME", "talaam"),
		JWTSecret:     getEnv("JWT_SECRET", "super-secret-key-change-me"),
		ServerPort:    getEnv("SERVER_PORT", "8080"),
		AllowOrigins:  getEnv("ALLOW_ORIGINS", "*"),
		WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
		CronSecret:    getEnv("CRON_SECRET", ""),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
		SweepInterval: getEnvInt("SWEEP_INTERVAL", 0),
	}
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}
