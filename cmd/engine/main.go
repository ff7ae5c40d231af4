package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"
	"github.com/redis/go-redis/v9"

	httpadapter "github.com/couchcryptid/alert-enrichment/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/alert-enrichment/internal/adapter/kafka"
	"github.com/couchcryptid/alert-enrichment/internal/adapter/spc"
	"github.com/couchcryptid/alert-enrichment/internal/config"
	"github.com/couchcryptid/alert-enrichment/internal/enrich"
	"github.com/couchcryptid/alert-enrichment/internal/observability"
	"github.com/couchcryptid/alert-enrichment/internal/radar"
	"github.com/couchcryptid/alert-enrichment/internal/rules"
	"github.com/couchcryptid/alert-enrichment/internal/store"
	"github.com/couchcryptid/alert-enrichment/internal/webhook"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	lexicon := radar.DefaultLexicon()
	if cfg.LexiconPath != "" {
		lexicon, err = radar.LoadLexicon(cfg.LexiconPath)
		if err != nil {
			logger.Error("failed to load hail lexicon", "path", cfg.LexiconPath, "error", err)
			os.Exit(1)
		}
		logger.Info("hail lexicon loaded", "path", cfg.LexiconPath, "entries", len(lexicon))
	}

	// Engine state lives in Redis so delivery retries and the stale-update
	// watermark survive restarts. An empty REDIS_ADDR falls back to in-memory
	// state for single-instance runs without durability.
	var (
		deliveries store.DeliveryStore
		watermarks store.WatermarkStore
		ruleSource rules.Source
	)
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		defer rdb.Close()
		deliveries = store.NewRedisDeliveryStore(rdb)
		watermarks = store.NewRedisWatermarkStore(rdb)
		ruleSource = store.NewRedisRuleSource(rdb)
		logger.Info("redis state store enabled", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
	} else {
		deliveries = store.NewMemoryDeliveryStore()
		watermarks = store.NewMemoryWatermarkStore()
		ruleSource = store.NewMemoryRuleSource(nil)
		logger.Warn("no redis configured, engine state is in-memory and non-durable")
	}

	spcClient := spc.NewClient(cfg.SPCBaseURL, cfg.SPCTimeout, logger)
	reportSource := spc.NewCachedSource(spcClient, cfg.SPCCacheDays, clock)

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)

	orchestrator := enrich.NewOrchestrator(
		radar.NewParser(lexicon),
		reportSource,
		ruleSource,
		deliveries,
		watermarks,
		logger,
		metrics,
	)
	pipeline := enrich.NewPipeline(reader, orchestrator, writer, watermarks, logger, metrics, cfg.BatchSize)

	dispatcher := webhook.NewDispatcher(
		deliveries,
		webhook.NewSender(cfg.WebhookTimeout, logger),
		logger,
		metrics,
		clock,
		webhook.DispatcherConfig{
			PollInterval: cfg.WebhookPollInterval,
			MaxAttempts:  cfg.WebhookMaxAttempts,
			BaseBackoff:  cfg.WebhookBaseBackoff,
			MaxBackoff:   cfg.WebhookMaxBackoff,
			BatchLimit:   cfg.WebhookBatchLimit,
		},
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, pipeline, deliveries, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	go func() {
		if err := dispatcher.Run(ctx); err != nil {
			logger.Error("dispatcher error", "error", err)
		}
	}()

	go func() {
		if err := pipeline.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
