// Package config loads runtime configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Scheduling constants shared across the pipeline.
const (
	// DefaultFetchInterval is how often the dispatcher cycles all feeds.
	DefaultFetchInterval = 30 * time.Minute

	// DefaultExtractInterval is how often pending articles get a content
	// extraction pass.
	DefaultExtractInterval = 5 * time.Minute
)

// Config holds everything the process reads from the environment. Zero
// values disable the optional integrations (Redis, Kafka, S3).
type Config struct {
	Port        string
	DatabaseURL string

	RedisAddr string

	KafkaBrokers []string
	KafkaTopic   string
	KafkaGroupID string

	S3Bucket       string
	S3Region       string
	S3Profile      string
	S3Prefix       string
	S3UsePathStyle bool

	FetchInterval   time.Duration
	ExtractInterval time.Duration
	Workers         int
}

// Load reads configuration from the environment. Only DATABASE_URL is
// required; everything else has a default or toggles a feature off.
func Load() Config {
	cfg := Config{
		Port:        GetEnvOrDefault("PORT", "8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),

		RedisAddr: strings.TrimSpace(os.Getenv("REDIS_ADDR")),

		KafkaTopic:   GetEnvOrDefault("KAFKA_TOPIC_FETCH_COMMANDS", "feed-fetch-commands"),
		KafkaGroupID: GetEnvOrDefault("KAFKA_CONSUMER_GROUP_ID", "rreader-ingest"),

		S3Bucket:       strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:       strings.TrimSpace(os.Getenv("S3_REGION")),
		S3Profile:      strings.TrimSpace(os.Getenv("S3_PROFILE")),
		S3Prefix:       strings.TrimSpace(os.Getenv("S3_PREFIX")),
		S3UsePathStyle: strings.EqualFold(strings.TrimSpace(os.Getenv("S3_USE_PATH_STYLE")), "true"),

		FetchInterval:   GetEnvDurationOrDefault("FETCH_INTERVAL", DefaultFetchInterval),
		ExtractInterval: GetEnvDurationOrDefault("EXTRACT_INTERVAL", DefaultExtractInterval),
		Workers:         GetEnvIntOrDefault("FETCH_WORKERS", 0),
	}

	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BOOTSTRAP_SERVERS")); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	return cfg
}

// GetEnvOrDefault returns the env value or a fallback when unset/empty.
func GetEnvOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// GetEnvIntOrDefault parses an integer env value, falling back on
// missing or malformed input.
func GetEnvIntOrDefault(key string, fallback int) int {
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

// GetEnvDurationOrDefault parses a time.Duration env value ("30m", "1h"),
// falling back on missing or malformed input.
func GetEnvDurationOrDefault(key string, fallback time.Duration) time.Duration {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return fallback
	}
	return d
}
