package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds all runtime configuration for the application. It is built
// once in main from environment variables and passed to constructors; no
// package keeps its own copy of a secret.
type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string

	JWTSecret []byte

	PostmarkToken string
	EmailSender   string

	StripeSecretKey     string
	StripeWebhookSecret string
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	// MongoTransactions enables the transactional order-placement path.
	// Requires a replica-set deployment; standalone Mongo rejects it.
	MongoTransactions bool

	LogJSON bool
}

// Load reads configuration from the environment. Callers are expected to have
// loaded a .env file beforehand if one exists.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8000"),
		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:       getEnv("MONGO_DATABASE", "shopkart"),
		JWTSecret:           []byte(os.Getenv("JWT_SECRET")),
		PostmarkToken:       os.Getenv("POSTMARK_API_TOKEN"),
		EmailSender:         os.Getenv("EMAIL_SENDER"),
		StripeSecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
		StripeWebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
		CheckoutSuccessURL:  getEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success"),
		CheckoutCancelURL:   getEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel"),
		MongoTransactions:   getBool("MONGO_TRANSACTIONS"),
		LogJSON:             getBool("LOG_JSON"),
	}

	if len(cfg.JWTSecret) == 0 {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return false
	}
	return v
}
