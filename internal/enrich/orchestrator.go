// Package enrich runs the per-alert enrichment flow and the batch pipeline
// that feeds it.
package enrich

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
	"github.com/couchcryptid/alert-enrichment/internal/geometry"
	"github.com/couchcryptid/alert-enrichment/internal/observability"
	"github.com/couchcryptid/alert-enrichment/internal/radar"
	"github.com/couchcryptid/alert-enrichment/internal/rules"
	"github.com/couchcryptid/alert-enrichment/internal/store"
	"github.com/couchcryptid/alert-enrichment/internal/verify"
	"github.com/couchcryptid/alert-enrichment/internal/webhook"
)

// Orchestrator turns one raw feed event into a finalized enriched record and
// schedules any webhook deliveries the record triggers.
type Orchestrator struct {
	parser     *radar.Parser
	reports    domain.ReportSource
	rules      rules.Source
	deliveries store.DeliveryStore
	watermarks store.WatermarkStore
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// NewOrchestrator wires the enrichment stages together.
func NewOrchestrator(
	parser *radar.Parser,
	reports domain.ReportSource,
	ruleSource rules.Source,
	deliveries store.DeliveryStore,
	watermarks store.WatermarkStore,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Orchestrator {
	return &Orchestrator{
		parser:     parser,
		reports:    reports,
		rules:      ruleSource,
		deliveries: deliveries,
		watermarks: watermarks,
		logger:     logger,
		metrics:    metrics,
	}
}

// Enrich processes one raw alert event end to end: validate, discard stale
// updates, summarize geometry and extract radar-indicated measurements,
// reconcile against SPC ground truth, assemble the record, and schedule
// webhook deliveries for satisfied rules.
//
// Stale updates return domain.ErrStaleAlert; malformed payloads wrap
// domain.ErrInvalidAlert. Geometry failures are non-fatal: the record
// proceeds without a summary. A ground-truth fetch failure is fatal for the
// alert so it is skipped rather than published unverified.
//
// Enrich only reads the watermark. The pipeline advances it once the record
// has reached the alert store, so a failed publish leaves the event
// re-processable: nothing was stored, so the event is not yet a duplicate.
func (o *Orchestrator) Enrich(ctx context.Context, raw domain.RawEvent) (domain.EnrichedAlert, error) {
	alert, err := domain.ParseAlert(raw.Value)
	if err != nil {
		return domain.EnrichedAlert{}, err
	}

	stale, err := o.watermarks.IsStale(ctx, alert.ID, alert.Sent)
	if err != nil {
		return domain.EnrichedAlert{}, fmt.Errorf("read watermark for %s: %w", alert.ID, err)
	}
	if stale {
		return domain.EnrichedAlert{}, fmt.Errorf("%w: %s sent %s", domain.ErrStaleAlert, alert.ID, alert.Sent.UTC().Format("2006-01-02T15:04:05Z"))
	}

	summary, indicated, candidates, err := o.gather(ctx, alert)
	if err != nil {
		return domain.EnrichedAlert{}, err
	}

	match := verify.Match(alert, summary, candidates)
	o.metrics.MatchOutcomes.WithLabelValues(string(match.Method)).Inc()

	enriched := domain.NewEnrichedAlert(alert, indicated, summary, match)

	o.schedule(ctx, enriched)
	return enriched, nil
}

// gather runs the independent enrichment stages concurrently: geometry
// summarization, narrative extraction, and the ground-truth candidate fetch.
func (o *Orchestrator) gather(ctx context.Context, alert domain.Alert) (*domain.GeometrySummary, *domain.RadarIndicated, []domain.SPCReport, error) {
	var (
		summary    *domain.GeometrySummary
		indicated  *domain.RadarIndicated
		candidates []domain.SPCReport
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s, err := geometry.Summarize(alert.Geometry)
		if err != nil {
			// Malformed geometry downgrades the record, it does not block it.
			o.metrics.GeometryFailures.Inc()
			o.logger.Warn("geometry summarize failed", "alert_id", alert.ID, "error", err)
			return nil
		}
		summary = &s
		return nil
	})

	g.Go(func() error {
		indicated = o.parser.Parse(alert.Event, alert.Narrative)
		if indicated == nil {
			o.metrics.RadarMisses.Inc()
			return nil
		}
		if indicated.HailInches != nil {
			o.metrics.RadarExtractions.WithLabelValues(string(domain.HazardHail)).Inc()
		}
		if indicated.WindMPH != nil {
			o.metrics.RadarExtractions.WithLabelValues(string(domain.HazardWind)).Inc()
		}
		return nil
	})

	g.Go(func() error {
		from, to := verify.WindowFor(alert)
		reports, err := o.reports.ReportsBetween(gctx, from, to)
		if err != nil {
			return fmt.Errorf("fetch reports for %s: %w", alert.ID, err)
		}
		candidates = reports
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return summary, indicated, candidates, nil
}

// schedule evaluates the enriched record against the current rule snapshot
// and creates a pending delivery per satisfied rule. The store's Create is
// the idempotency gate, so re-processing the same alert schedules nothing
// new. Failures here are logged, not returned: the enriched record is
// already final and must still be published.
func (o *Orchestrator) schedule(ctx context.Context, enriched domain.EnrichedAlert) {
	snap, err := o.rules.Snapshot(ctx)
	if err != nil {
		o.logger.Error("rule snapshot failed, skipping webhook evaluation",
			"alert_id", enriched.ID, "error", err)
		return
	}
	for _, skipErr := range snap.Skipped() {
		o.metrics.RulesSkipped.Inc()
		o.logger.Warn("webhook rule skipped", "error", skipErr)
	}

	for _, d := range rules.Evaluate(enriched, snap) {
		payload, err := webhook.NewDeliveryPayload(d, enriched)
		if err != nil {
			o.logger.Error("delivery payload failed", "rule_id", d.RuleID, "alert_id", d.AlertID, "error", err)
			continue
		}
		d.Payload = payload

		created, err := o.deliveries.Create(ctx, d)
		if err != nil {
			o.logger.Error("delivery create failed", "rule_id", d.RuleID, "alert_id", d.AlertID, "error", err)
			continue
		}
		if !created {
			continue
		}
		o.metrics.DeliveriesCreated.Inc()
		o.logger.Info("webhook delivery scheduled",
			"delivery_id", d.ID,
			"rule_id", d.RuleID,
			"alert_id", d.AlertID,
			"hazard", d.Hazard,
			"trigger_value", d.TriggerValue,
		)
	}
}
