package webhook

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
	"github.com/couchcryptid/alert-enrichment/internal/observability"
	"github.com/couchcryptid/alert-enrichment/internal/store"
)

// DispatcherConfig bounds the delivery lifecycle.
type DispatcherConfig struct {
	// PollInterval is how often the dispatcher looks for due deliveries.
	PollInterval time.Duration
	// MaxAttempts is the retry cap; reaching it moves a delivery to
	// Exhausted, which is terminal.
	MaxAttempts int
	// BaseBackoff and MaxBackoff bound the exponential retry delay.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// BatchLimit caps how many due deliveries one poll claims.
	BatchLimit int
}

// Dispatcher drives webhook deliveries through their state machine:
// Pending → Delivered, or Pending → Failed → (retry) → Pending, or Failed →
// Exhausted once the attempt cap is hit. It is timer-driven, never blocking
// alert enrichment: the orchestrator only creates Pending records, the
// dispatcher owns every transition after that.
type Dispatcher struct {
	deliveries store.DeliveryStore
	sender     *Sender
	logger     *slog.Logger
	metrics    *observability.Metrics
	clock      clockwork.Clock
	cfg        DispatcherConfig
}

// NewDispatcher wires a dispatcher. Pass a fake clock in tests to step the
// poll timer deterministically.
func NewDispatcher(deliveries store.DeliveryStore, sender *Sender, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		deliveries: deliveries,
		sender:     sender,
		logger:     logger,
		metrics:    metrics,
		clock:      clock,
		cfg:        cfg,
	}
}

// Run polls for due deliveries until the context is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	d.logger.Info("webhook dispatcher started",
		"poll_interval", d.cfg.PollInterval,
		"max_attempts", d.cfg.MaxAttempts,
	)

	ticker := d.clock.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("webhook dispatcher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
			if err := d.Poll(ctx); err != nil {
				d.logger.Error("delivery poll failed", "error", err)
			}
		}
	}
}

// Poll runs one dispatch pass: claim due deliveries and attempt each.
// Attempts within a pass run sequentially; one slow endpoint delays its
// peers by at most the per-attempt timeout, and the next pass picks up
// whatever this one didn't reach.
func (d *Dispatcher) Poll(ctx context.Context) error {
	due, err := d.deliveries.Due(ctx, d.clock.Now(), d.cfg.BatchLimit)
	if err != nil {
		return err
	}

	for _, delivery := range due {
		if ctx.Err() != nil {
			return nil
		}
		d.attempt(ctx, delivery)
	}
	return nil
}

// attempt makes one delivery attempt and commits the resulting transition.
func (d *Dispatcher) attempt(ctx context.Context, del domain.WebhookDelivery) {
	now := d.clock.Now().UTC()
	del.Attempts++
	del.LastAttempt = now

	start := time.Now()
	err := d.sender.Send(ctx, del)
	d.metrics.DeliveryDuration.Observe(time.Since(start).Seconds())

	// A send cut short by shutdown is not an endpoint verdict: leave the
	// stored record untouched so the next run retries with the same attempt
	// count instead of exhausting on a cancelled context.
	if err != nil && ctx.Err() != nil {
		d.logger.Info("delivery attempt abandoned by shutdown",
			"rule_id", del.RuleID, "alert_id", del.AlertID)
		return
	}

	switch {
	case err == nil:
		del.State = domain.DeliveryDelivered
		del.NextRetry = time.Time{}
		d.metrics.DeliveryAttempts.WithLabelValues("delivered").Inc()
		d.logger.Info("webhook delivered",
			"rule_id", del.RuleID, "alert_id", del.AlertID, "attempts", del.Attempts)

	case del.Attempts >= d.cfg.MaxAttempts:
		del.State = domain.DeliveryExhausted
		del.NextRetry = time.Time{}
		d.metrics.DeliveryAttempts.WithLabelValues("exhausted").Inc()
		d.logger.Error("webhook delivery exhausted",
			"rule_id", del.RuleID, "alert_id", del.AlertID,
			"attempts", del.Attempts, "error", err)

	default:
		del.State = domain.DeliveryFailed
		del.NextRetry = now.Add(retryDelay(del.Attempts, d.cfg.BaseBackoff, d.cfg.MaxBackoff))
		d.metrics.DeliveryAttempts.WithLabelValues("failed").Inc()
		d.logger.Warn("webhook delivery failed, will retry",
			"rule_id", del.RuleID, "alert_id", del.AlertID,
			"attempts", del.Attempts, "next_retry", del.NextRetry, "error", err)
	}

	if err := d.deliveries.Update(ctx, del); err != nil {
		d.logger.Error("persist delivery state failed",
			"rule_id", del.RuleID, "alert_id", del.AlertID, "error", err)
	}
}
