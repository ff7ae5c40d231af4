package domain

import (
	"context"
	"time"
)

// ReportSource supplies ground-truth SPC reports for a time window. The
// backing collection is append-only and externally owned; implementations
// return a point-in-time snapshot, never a live view.
type ReportSource interface {
	ReportsBetween(ctx context.Context, from, to time.Time) ([]SPCReport, error)
}
