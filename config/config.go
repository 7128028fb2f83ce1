package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	AppEnv string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	JWTAccessSecret   string
	JWTAccessTTLHours int

	// Redis backs the rate limiter; empty address means in-memory limits.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Kafka receives audit events; no brokers means audit rows are only stored.
	KafkaBrokers    []string
	KafkaAuditTopic string

	ReportTimeoutSeconds int
	ReportTimezone       string
	SybuntLimit          int

	RateLimitPerMinute int64
	CORSOrigins        []string
}

// Load reads environment variables and returns a Config object
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file, using environment variables")
	}

	return &Config{
		Port:   getEnv("PORT", "8080"),
		AppEnv: getEnv("APP_ENV", "production"),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     os.Getenv("DB_USER"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     os.Getenv("DB_NAME"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		JWTAccessSecret:   os.Getenv("JWT_ACCESS_SECRET"),
		JWTAccessTTLHours: getInt("JWT_ACCESS_TTL_HOURS", 12),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getInt("REDIS_DB", 0),

		KafkaBrokers:    getList("KAFKA_BROKERS"),
		KafkaAuditTopic: getEnv("KAFKA_AUDIT_TOPIC", "backoffice.audit"),

		ReportTimeoutSeconds: getInt("REPORT_TIMEOUT_SECONDS", 30),
		ReportTimezone:       getEnv("REPORT_TIMEZONE", "UTC"),
		SybuntLimit:          getInt("SYBUNT_LIMIT", 500),

		RateLimitPerMinute: int64(getInt("RATE_LIMIT_PER_MINUTE", 100)),
		CORSOrigins:        getList("CORS_ORIGINS"),
	}
}

// IsDev reports whether the service runs with development defaults.
func (c *Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

// ReportTimeout is the per-request budget of the analytics engine.
func (c *Config) ReportTimeout() time.Duration {
	return time.Duration(c.ReportTimeoutSeconds) * time.Second
}

// Location resolves REPORT_TIMEZONE, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		log.Printf("invalid REPORT_TIMEZONE %q, using UTC: %v", c.ReportTimezone, err)
		return time.UTC
	}
	return loc
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
