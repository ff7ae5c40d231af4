// Package store holds the engine-side state that must survive re-processing
// and restarts: webhook delivery records with their retry schedule, and the
// per-alert sent watermark used to discard stale updates.
//
// Redis-backed implementations serve production; in-memory equivalents back
// tests and single-process deployments.
package store

import (
	"context"
	"time"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// DeliveryStore persists webhook delivery records.
//
// Create is the idempotency gate: the first writer for a (rule, alert,
// trigger) pairing creates the record, later writers are told it already
// exists and must not schedule anything. Update rewrites a record and its
// due-time index entry. Due returns records whose next attempt time has
// passed, oldest first.
type DeliveryStore interface {
	Create(ctx context.Context, d domain.WebhookDelivery) (created bool, err error)
	Update(ctx context.Context, d domain.WebhookDelivery) error
	Due(ctx context.Context, now time.Time, limit int) ([]domain.WebhookDelivery, error)
	List(ctx context.Context, state domain.DeliveryState) ([]domain.WebhookDelivery, error)
}

// WatermarkStore tracks the latest published sent timestamp per alert.
//
// IsStale is the read side, consulted before enrichment; Advance is the
// write side, called only once the finalized record has reached the alert
// store. Keeping the write after publish means a failed publish leaves the
// event re-processable instead of recorded as seen.
type WatermarkStore interface {
	// IsStale reports whether sent is equal to or earlier than the stored
	// watermark for alertID. An alert with no watermark is never stale.
	IsStale(ctx context.Context, alertID string, sent time.Time) (bool, error)

	// Advance records sent as the new watermark for alertID and returns
	// true. When sent is equal to or earlier than the stored watermark it
	// returns false and leaves the watermark unchanged.
	Advance(ctx context.Context, alertID string, sent time.Time) (bool, error)
}
