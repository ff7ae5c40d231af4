// Package config loads service settings from environment variables.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v9"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	KafkaBrokers     []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaSourceTopic string   `env:"KAFKA_SOURCE_TOPIC" envDefault:"raw-alerts"`
	KafkaSinkTopic   string   `env:"KAFKA_SINK_TOPIC" envDefault:"enriched-alerts"`
	KafkaGroupID     string   `env:"KAFKA_GROUP_ID" envDefault:"alert-enrichment"`

	HTTPAddr        string        `env:"HTTP_ADDR" envDefault:":8080"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"json"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
	BatchSize       int           `env:"BATCH_SIZE" envDefault:"50"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// SPC report source.
	SPCBaseURL   string        `env:"SPC_BASE_URL" envDefault:"http://localhost:8090"`
	SPCTimeout   time.Duration `env:"SPC_TIMEOUT" envDefault:"5s"`
	SPCCacheDays int           `env:"SPC_CACHE_DAYS" envDefault:"14"`

	// Webhook delivery.
	WebhookTimeout      time.Duration `env:"WEBHOOK_TIMEOUT" envDefault:"10s"`
	WebhookMaxAttempts  int           `env:"WEBHOOK_MAX_ATTEMPTS" envDefault:"5"`
	WebhookBaseBackoff  time.Duration `env:"WEBHOOK_BASE_BACKOFF" envDefault:"30s"`
	WebhookMaxBackoff   time.Duration `env:"WEBHOOK_MAX_BACKOFF" envDefault:"15m"`
	WebhookPollInterval time.Duration `env:"WEBHOOK_POLL_INTERVAL" envDefault:"5s"`
	WebhookBatchLimit   int           `env:"WEBHOOK_BATCH_LIMIT" envDefault:"100"`

	// Optional hail size lexicon override (JSON file). Empty uses the
	// built-in NWS spotter chart.
	LexiconPath string `env:"LEXICON_PATH"`
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	if len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_BROKERS is required")
	}
	if cfg.KafkaSourceTopic == "" {
		return nil, errors.New("KAFKA_SOURCE_TOPIC is required")
	}
	if cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}
	if cfg.BatchSize <= 0 {
		return nil, errors.New("BATCH_SIZE must be positive")
	}
	if cfg.ShutdownTimeout <= 0 {
		return nil, errors.New("SHUTDOWN_TIMEOUT must be positive")
	}
	if cfg.SPCTimeout <= 0 || cfg.WebhookTimeout <= 0 {
		return nil, errors.New("timeouts must be positive")
	}
	if cfg.WebhookMaxAttempts <= 0 {
		return nil, errors.New("WEBHOOK_MAX_ATTEMPTS must be positive")
	}
	if cfg.WebhookBaseBackoff <= 0 || cfg.WebhookMaxBackoff < cfg.WebhookBaseBackoff {
		return nil, errors.New("webhook backoff bounds invalid")
	}

	return cfg, nil
}
