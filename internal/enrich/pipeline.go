package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
	"github.com/couchcryptid/alert-enrichment/internal/observability"
	"github.com/couchcryptid/alert-enrichment/internal/store"
)

// BatchExtractor reads up to batchSize raw events from the feed source.
type BatchExtractor interface {
	ExtractBatch(ctx context.Context, batchSize int) ([]domain.RawEvent, error)
}

// Enricher converts one raw event into a finalized enriched record.
type Enricher interface {
	Enrich(ctx context.Context, raw domain.RawEvent) (domain.EnrichedAlert, error)
}

// BatchPublisher writes finalized records to the alert store.
type BatchPublisher interface {
	PublishBatch(ctx context.Context, records []domain.EnrichedAlert) error
}

// Pipeline drives the extract-enrich-publish loop. It owns the watermark
// write: a sent timestamp is recorded as seen only after the finalized
// record has been published, so a failed publish never turns a live event
// into a duplicate.
type Pipeline struct {
	extractor  BatchExtractor
	enricher   Enricher
	publisher  BatchPublisher
	watermarks store.WatermarkStore
	logger     *slog.Logger
	metrics    *observability.Metrics
	ready      atomic.Bool
	batchSize  int
}

// NewPipeline creates a Pipeline with the given stages and observability.
func NewPipeline(e BatchExtractor, enricher Enricher, p BatchPublisher, watermarks store.WatermarkStore, logger *slog.Logger, metrics *observability.Metrics, batchSize int) *Pipeline {
	return &Pipeline{
		extractor:  e,
		enricher:   enricher,
		publisher:  p,
		watermarks: watermarks,
		logger:     logger,
		metrics:    metrics,
		batchSize:  batchSize,
	}
}

// CheckReadiness returns nil once the pipeline has published at least one
// record, or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("pipeline has not processed any alerts yet")
	}
	return nil
}

// Run executes the batch loop until the context is cancelled.
func (p *Pipeline) Run(ctx context.Context) error {
	p.logger.Info("pipeline started", "batch_size", p.batchSize)
	p.metrics.PipelineRunning.Set(1)
	defer p.metrics.PipelineRunning.Set(0)

	// Exponential backoff: start at 200ms, double each retry, cap at 5s.
	// Keeps retry storms short while avoiding tight loops during broker
	// outages.
	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("pipeline stopping", "reason", ctx.Err())
			return nil
		default:
		}

		if !p.processBatch(ctx, &backoff, maxBackoff) {
			return nil
		}
	}
}

// processBatch runs one extract-enrich-publish cycle. Returns false if the
// pipeline should stop.
func (p *Pipeline) processBatch(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	start := time.Now()

	rawBatch, err := p.extractor.ExtractBatch(ctx, p.batchSize)
	if err != nil {
		if ctx.Err() != nil {
			return false
		}
		p.logger.Error("extract batch failed", "error", err)
		return p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	if len(rawBatch) == 0 {
		return ctx.Err() == nil
	}

	p.metrics.AlertsConsumed.Add(float64(len(rawBatch)))
	p.metrics.BatchSize.Observe(float64(len(rawBatch)))
	*backoff = 200 * time.Millisecond

	published, ok := p.enrichAndPublish(ctx, rawBatch, backoff, maxBackoff)
	if !ok {
		return false
	}

	if published > 0 {
		p.metrics.BatchProcessingDuration.Observe(time.Since(start).Seconds())
		p.ready.Store(true)
	}
	return true
}

// enrichAndPublish enriches each event in the batch, publishes the
// successes, and commits offsets. Stale and invalid events are counted and
// committed without blocking the batch. Returns the number of published
// records and false if the pipeline should stop.
func (p *Pipeline) enrichAndPublish(ctx context.Context, rawBatch []domain.RawEvent, backoff *time.Duration, maxBackoff time.Duration) (int, bool) {
	outBatch := make([]domain.EnrichedAlert, 0, len(rawBatch))
	successfulRaws := make([]domain.RawEvent, 0, len(rawBatch))

	for _, raw := range rawBatch {
		enriched, err := p.enricher.Enrich(ctx, raw)
		if err != nil {
			p.recordEnrichFailure(raw, err)
			p.commitOffset(ctx, raw)
			continue
		}
		outBatch = append(outBatch, enriched)
		successfulRaws = append(successfulRaws, raw)
	}

	if len(outBatch) == 0 {
		return 0, true
	}

	if err := p.publisher.PublishBatch(ctx, outBatch); err != nil {
		p.logger.Error("publish batch failed", "error", err, "batch_size", len(outBatch))
		return 0, p.backoffOrStop(ctx, backoff, maxBackoff)
	}

	p.metrics.AlertsEnriched.Add(float64(len(outBatch)))

	for i, raw := range successfulRaws {
		record := outBatch[i]
		if _, err := p.watermarks.Advance(ctx, record.ID, record.Sent); err != nil {
			// The record is already published; a lost watermark only means a
			// future duplicate gets re-enriched, which is idempotent.
			p.logger.Error("advance watermark failed", "alert_id", record.ID, "error", err)
		}
		p.commitOffset(ctx, raw)
	}

	return len(outBatch), true
}

// recordEnrichFailure classifies a per-event failure. A stale update is the
// normal outcome of at-least-once redelivery, so it logs at debug; genuine
// failures log at warn.
func (p *Pipeline) recordEnrichFailure(raw domain.RawEvent, err error) {
	switch {
	case errors.Is(err, domain.ErrStaleAlert):
		p.metrics.StaleAlertsDiscarded.Inc()
		p.logger.Debug("stale alert discarded", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	case errors.Is(err, domain.ErrInvalidAlert):
		p.metrics.InvalidAlerts.Inc()
		p.logger.Warn("invalid alert rejected", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	default:
		p.metrics.EnrichErrors.Inc()
		p.logger.Warn("enrich failed, skipping event", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

// backoffOrStop checks for context cancellation, sleeps with the current
// backoff, and advances it. Returns false if the pipeline should stop.
func (p *Pipeline) backoffOrStop(ctx context.Context, backoff *time.Duration, maxBackoff time.Duration) bool {
	if ctx.Err() != nil {
		return false
	}
	if !sleepWithContext(ctx, *backoff) {
		return false
	}
	*backoff = nextBackoff(*backoff, maxBackoff)
	return true
}

// commitOffset commits the event offset if a commit function is available.
func (p *Pipeline) commitOffset(ctx context.Context, raw domain.RawEvent) {
	if raw.Commit == nil {
		return
	}
	if err := raw.Commit(ctx); err != nil {
		p.logger.Warn("commit offset failed", "error", err,
			"topic", raw.Topic, "partition", raw.Partition, "offset", raw.Offset)
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
