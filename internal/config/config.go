package config

import (
	"flag"
	"os"
	"strconv"
	"time"
)

// Config holds all odds-router configuration.
type Config struct {
	// Server
	HTTPPort int
	Host     string

	// Relational store (tenants + boost catalog)
	PostgresDSN string

	// Market mapping cache
	RedisAddr string
	RedisDB   int

	// Document store (feed archive)
	MongoURI string

	// Broker
	KafkaBrokers string // comma-separated seed brokers
	KafkaTopicFn string // topic template, "{tenant}" is substituted

	// Feed archival
	FeedLogEnabled        bool
	FeedLogRetainDays     int
	ArchiveBatchTimeout   time.Duration
	ArchiveOverflowDir    string // "" disables the local-disk overflow fallback
	ArchiveMaxOverflowGB  int
	ArchiveRotateInterval time.Duration

	// Tenant index
	TenantsRefreshInterval time.Duration

	// Ops telemetry
	OpsFeedSendBuffer int
}

func Load() *Config {
	c := &Config{}

	flag.IntVar(&c.HTTPPort, "port", envInt("ROUTER_PORT", 8100), "HTTP server port")
	flag.StringVar(&c.Host, "host", envStr("ROUTER_HOST", "0.0.0.0"), "Listen host")

	flag.StringVar(&c.PostgresDSN, "postgres-dsn", envStr("POSTGRES_DSN", "postgres://localhost:5432/oddsrouter?sslmode=disable"), "PostgreSQL connection string")

	flag.StringVar(&c.RedisAddr, "redis-addr", envStr("REDIS_ADDR", "localhost:6379"), "Redis address")
	flag.IntVar(&c.RedisDB, "redis-db", envInt("REDIS_DB", 0), "Redis logical database")

	flag.StringVar(&c.MongoURI, "mongo-uri", envStr("MONGO_URI", "mongodb://localhost:27017/oddsrouter"), "MongoDB connection URI")

	flag.StringVar(&c.KafkaBrokers, "kafka-brokers", envStr("KAFKA_BROKERS", "localhost:9092"), "Comma-separated Kafka seed brokers")
	flag.StringVar(&c.KafkaTopicFn, "kafka-topic-template", envStr("KAFKA_TOPIC_TEMPLATE", "odds.tenant.{tenant}"), "Kafka topic name template")

	flag.BoolVar(&c.FeedLogEnabled, "feed-log-enabled", envBool("FEED_LOG_ENABLED", false), "Enable archival of published messages to the document store")
	flag.IntVar(&c.FeedLogRetainDays, "feed-log-retain-days", envInt("FEED_LOG_RETAIN_DAYS", 30), "Feed log retention in days (0 = keep forever)")
	flag.StringVar(&c.ArchiveOverflowDir, "archive-overflow-dir", envStr("ARCHIVE_OVERFLOW_DIR", ""), "Local-disk overflow directory for archive writes when the document store is unreachable (empty disables)")
	flag.IntVar(&c.ArchiveMaxOverflowGB, "archive-max-overflow-gb", envInt("ARCHIVE_MAX_OVERFLOW_GB", 5), "Size budget in GB for the archive overflow directory")

	flag.DurationVar(&c.TenantsRefreshInterval, "tenants-refresh-interval", envDuration("TENANTS_REFRESH_INTERVAL", 10*time.Minute), "Tenant/profile index refresh interval")

	flag.IntVar(&c.OpsFeedSendBuffer, "ops-feed-send-buffer", envInt("OPS_FEED_SEND_BUFFER", 256), "Per-client send buffer size for the operational telemetry feed")

	flag.Parse()

	c.ArchiveBatchTimeout = 10 * time.Second
	c.ArchiveRotateInterval = 1 * time.Hour

	return c
}

func envStr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func envBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
