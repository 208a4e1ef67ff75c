package service

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Environment string
	Port        string
	BaseURL     string
	DBPath      string

	Session struct {
		Secret string
	}

	Clerk struct {
		SecretKey      string
		PublishableKey string
		FrontendAPI    string
	}

	Stripe struct {
		PublishableKey string
		SecretKey      string
		WebhookSecret  string
		PriceID        string
	}

	Provider struct {
		Timeout time.Duration
	}

	Jobs struct {
		NotificationRetention time.Duration
	}
}

func LoadConfig() (*Config, error) {
	config := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnv("PORT", "8000"),
		BaseURL:     getEnv("BASE_URL", "http://localhost:8000"),
		DBPath:      getEnv("DB_PATH", "./db/mobmail.db"),
	}

	config.Session.Secret = getEnv("SESSION_SECRET", "development-secret")

	config.Clerk.SecretKey = getEnv("CLERK_SECRET_KEY", "")
	config.Clerk.PublishableKey = getEnv("CLERK_PUBLISHABLE_KEY", "")
	config.Clerk.FrontendAPI = getEnv("CLERK_FRONTEND_API", "")

	config.Stripe.PublishableKey = getEnv("STRIPE_PUBLISHABLE_KEY", "")
	config.Stripe.SecretKey = getEnv("STRIPE_SECRET_KEY", "")
	config.Stripe.WebhookSecret = getEnv("STRIPE_WEBHOOK_SECRET", "")
	config.Stripe.PriceID = getEnv("STRIPE_PRICE_ID", "")

	config.Provider.Timeout = getIntEnv("PROVIDER_TIMEOUT_SECONDS", 10) * time.Second
	config.Jobs.NotificationRetention = getIntEnv("NOTIFICATION_RETENTION_DAYS", 30) * 24 * time.Hour

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) time.Duration {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return time.Duration(n)
		}
	}
	return time.Duration(defaultValue)
}
