package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the release service
type Config struct {
	// Server configuration
	Port     string
	LogLevel string

	// CORS
	AllowedOrigins string

	// Directory source selection: "sheets" or "mysql"
	DirectorySource string

	// Google Sheets configuration (sheets source)
	SheetBaseURL      string
	SheetID           string
	PersonnelSheet    string
	NeighborhoodSheet string

	// Submission sink selection: "webhook" or "mysql"
	SubmitSink string

	// Apps Script web app endpoint (webhook sink)
	WebhookURL string

	// Database configuration (mysql source/sink)
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Text enhancement configuration
	OpenAIAPIKey   string
	OpenAIModel    string
	OpenAIBaseURL  string
	EnhanceTimeout time.Duration

	// Optional HS256 bearer auth; empty disables auth
	JWTSecret string

	// Optional fan-out of submitted reports
	RabbitMQURL        string
	RabbitMQExchange   string
	RabbitMQRoutingKey string

	// Form behavior. These mirror product decisions of the original
	// form and are deliberately configurable.
	LookupMinLength    int
	PhoneCountryPrefix string
	PhoneLocalDigits   int
	DefaultCity        string

	// Session housekeeping
	SessionTTL time.Duration

	// Rate limit for enhancement requests, per client IP per minute
	EnhanceRatePerMinute int
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnv("ALLOWED_ORIGINS", "*"),

		DirectorySource:   getEnv("DIRECTORY_SOURCE", "sheets"),
		SheetBaseURL:      getEnv("SHEET_BASE_URL", "https://docs.google.com/spreadsheets/d"),
		SheetID:           getEnv("SHEET_ID", ""),
		PersonnelSheet:    getEnv("PERSONNEL_SHEET", "MILITARES"),
		NeighborhoodSheet: getEnv("NEIGHBORHOOD_SHEET", "BAIRRO"),

		SubmitSink: getEnv("SUBMIT_SINK", "webhook"),
		WebhookURL: getEnv("WEBHOOK_URL", ""),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "3306"),
		DBUser:     getEnv("DB_USER", "server"),
		DBPassword: getEnv("DB_PASSWORD", "secret"),
		DBName:     getEnv("DB_NAME", "release"),

		OpenAIAPIKey:   getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:    getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:  getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		EnhanceTimeout: getDurationEnv("ENHANCE_TIMEOUT", 30*time.Second),

		JWTSecret: getEnv("JWT_SECRET", ""),

		RabbitMQURL:        getEnv("RABBITMQ_URL", ""),
		RabbitMQExchange:   getEnv("RABBITMQ_EXCHANGE", "release-reports"),
		RabbitMQRoutingKey: getEnv("RABBITMQ_ROUTING_KEY", "report.submitted"),

		LookupMinLength:    getIntEnv("LOOKUP_MIN_LENGTH", 4),
		PhoneCountryPrefix: getEnv("PHONE_COUNTRY_PREFIX", "55"),
		PhoneLocalDigits:   getIntEnv("PHONE_LOCAL_DIGITS", 11),
		DefaultCity:        getEnv("DEFAULT_CITY", "CONTAGEM/MG"),

		SessionTTL: getDurationEnv("SESSION_TTL", 4*time.Hour),

		EnhanceRatePerMinute: getIntEnv("ENHANCE_RATE_PER_MINUTE", 10),
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getIntEnv gets an integer environment variable or returns a default value
func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

// getDurationEnv gets a duration environment variable or returns a default value
func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
