// Package config loads service configuration from the environment with
// sensible local-development defaults.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr string
	LogLevel string

	RedisAddr     string
	RedisUsername string
	RedisPassword string
	RedisDB       int

	// PostgresURL selects the Postgres-backed order lookup; when empty the
	// service runs against the in-memory demo order store.
	PostgresURL string

	KafkaBrokerURL string
	SuccessTopic   string
	FailedTopic    string

	StreamMaxLen    int64
	ApproximateTrim bool

	GatewayDelay time.Duration

	OTLPEndpoint string

	RelayBlock     time.Duration
	IdempotencyTTL time.Duration
}

func Load() *Config {
	return &Config{
		HTTPAddr: getEnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel: getEnvOrDefault("LOG_LEVEL", "info"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisUsername: getEnvOrDefault("REDIS_USERNAME", ""),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		PostgresURL: getEnvOrDefault("PG_URL", ""),

		KafkaBrokerURL: getEnvOrDefault("KAFKA_BROKER_URL", "localhost:9092"),
		SuccessTopic:   getEnvOrDefault("PAYMENT_SUCCESS_TOPIC", "payment.success.events"),
		FailedTopic:    getEnvOrDefault("PAYMENT_FAILED_TOPIC", "payment.failed.events"),

		StreamMaxLen:    int64(getEnvAsInt("STREAM_MAXLEN", 3)),
		ApproximateTrim: getEnvAsBool("STREAM_APPROX_TRIM", true),

		GatewayDelay: getEnvAsDuration("GATEWAY_DELAY", 2*time.Second),

		OTLPEndpoint: getEnvOrDefault("OTLP_ENDPOINT", "http://localhost:4318"),

		RelayBlock:     getEnvAsDuration("RELAY_BLOCK", 2*time.Second),
		IdempotencyTTL: getEnvAsDuration("IDEMPOTENCY_TTL", 10*time.Minute),
	}
}

func (c *Config) KafkaBrokers() []string {
	return strings.Split(c.KafkaBrokerURL, ",")
}

func getEnvOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvAsInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsBool(key string, def bool) bool {
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

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
