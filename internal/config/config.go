// Package config reads the service configuration from the environment.
// main loads .env with godotenv before calling Load.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port           string
	AllowedOrigins []string

	DatabaseURL   string
	AutoMigrate   bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RabbitMQURL   string
	CatalogPath   string

	MaxSyncLeads        int
	GenerationChunkSize int
	DispatchRate        float64
	DispatchBurst       int
	DeclineProbability  float64
	SimulatedFailure    float64
	SchedulerInterval   time.Duration
	RateLimitPerMinute  int

	EmailProvider string
	MailHost      string
	MailPort      int
	MailUser      string
	MailPass      string
	MailFrom      string

	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	WhatsAppToken   string
	WhatsAppPhoneID string
	WhatsAppBaseURL string

	SocialWebhookURL   string
	SocialWebhookToken string

	CompanyName string
	AgentName   string

	BookingInbox string
	CheckoutURL  string
}

func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		DatabaseURL:   getEnv("DATABASE_URL", ""),
		AutoMigrate:   getEnvAsBool("DB_AUTO_MIGRATE", false),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		CatalogPath:   getEnv("CATALOG_PATH", ""),

		MaxSyncLeads:        getEnvAsInt("MAX_SYNC_LEADS", 5000),
		GenerationChunkSize: getEnvAsInt("GENERATION_CHUNK_SIZE", 1000),
		DispatchRate:        getEnvAsFloat("DISPATCH_RATE_PER_SECOND", 100),
		DispatchBurst:       getEnvAsInt("DISPATCH_BURST", 10),
		DeclineProbability:  getEnvAsFloat("DECLINE_PROBABILITY", 0.05),
		SimulatedFailure:    getEnvAsFloat("SIMULATED_FAILURE_RATE", 0),
		SchedulerInterval:   getEnvAsDuration("SCHEDULER_INTERVAL", time.Minute),
		RateLimitPerMinute:  getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),

		EmailProvider: strings.ToLower(getEnv("EMAIL_PROVIDER", "simulated")),
		MailHost:      getEnv("MAIL_HOST", ""),
		MailPort:      getEnvAsInt("MAIL_PORT", 587),
		MailUser:      getEnv("MAIL_USER", ""),
		MailPass:      getEnv("MAIL_PASS", ""),
		MailFrom:      getEnv("MAIL_FROM", "outreach@soliditminds.com"),

		SendGridAPIKey:    getEnv("SENDGRID_API_KEY", ""),
		SendGridFromEmail: getEnv("SENDGRID_FROM_EMAIL", "outreach@soliditminds.com"),
		SendGridFromName:  getEnv("SENDGRID_FROM_NAME", "SolidITMinds"),

		WhatsAppToken:   getEnv("WHATSAPP_ACCESS_TOKEN", ""),
		WhatsAppPhoneID: getEnv("WHATSAPP_PHONE_ID", ""),
		WhatsAppBaseURL: getEnv("WHATSAPP_BASE_URL", ""),

		SocialWebhookURL:   getEnv("SOCIAL_WEBHOOK_URL", ""),
		SocialWebhookToken: getEnv("SOCIAL_WEBHOOK_TOKEN", ""),

		CompanyName: getEnv("COMPANY_NAME", "SolidITMinds"),
		AgentName:   getEnv("AGENT_NAME", "SITM (SaiTim)"),

		BookingInbox: getEnv("BOOKING_INBOX", "contact@soliditminds.com"),
		CheckoutURL:  getEnv("CHECKOUT_URL", "https://payment.example.com/checkout"),
	}
}

// Sender returns the template sender fields.
func (c *Config) Sender() map[string]string {
	return map[string]string{
		"company_name": c.CompanyName,
		"agent_name":   c.AgentName,
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %d", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvAsFloat(key string, fallback float64) float64 {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %v", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvAsBool(key string, fallback bool) bool {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %t", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("⚠️ %s inválido (%q), usando %s", key, raw, fallback)
		return fallback
	}
	return v
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
