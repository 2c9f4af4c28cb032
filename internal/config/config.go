package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Backends accepted by CART_BACKEND.
const (
	BackendMemory   = "memory"
	BackendDynamoDB = "dynamodb"
	BackendRedis    = "redis"
)

type Config struct {
	AppEnv   string
	LogLevel string

	Backend          string
	CartID           string
	LinesTable       string
	IdempotencyTable string
	IdempotencyTTL   time.Duration
	RedisAddr        string

	EventsQueueURL   string
	MetricsNamespace string

	SerializeLineOps bool
	RunLocal         bool
	HTTPAddr         string
}

// Load reads the environment, after applying a .env file if one exists.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppEnv:   getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		Backend:          parseBackend(getEnv("CART_BACKEND", BackendMemory)),
		CartID:           getEnv("CART_ID", "default"),
		LinesTable:       getEnv("CART_LINES_TABLE", "cart_lines"),
		IdempotencyTable: os.Getenv("IDEMPOTENCY_TABLE"),
		IdempotencyTTL:   getEnvDuration("IDEMPOTENCY_TTL", 48*time.Hour),
		RedisAddr:        getEnv("REDIS_ADDR", "localhost:6379"),

		EventsQueueURL:   os.Getenv("CART_EVENTS_QUEUE_URL"),
		MetricsNamespace: getEnv("METRICS_NAMESPACE", "CartView"),

		SerializeLineOps: getEnvBool("SERIALIZE_LINE_OPS", false),
		RunLocal:         getEnvBool("RUN_LOCAL", false),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
	}
}

func parseBackend(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case BackendDynamoDB:
		return BackendDynamoDB
	case BackendRedis:
		return BackendRedis
	default:
		return BackendMemory
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
