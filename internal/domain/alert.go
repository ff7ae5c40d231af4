package domain

import (
	"context"
	"time"
)

// Severity is the ordered NWS severity scale carried on an alert.
type Severity string

const (
	SeverityMinor    Severity = "Minor"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
	SeverityExtreme  Severity = "Extreme"
)

// Rank maps a severity to its position on the ordered scale.
// Unknown values rank below Minor so comparisons stay total.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	case SeverityExtreme:
		return 4
	default:
		return 0
	}
}

// Coordinate is a WGS-84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// RawGeometry is the alert area as delivered by the feed: one ring per
// polygon, a single one-point ring for point alerts. The shape is classified
// downstream; the feed does not tag it.
type RawGeometry struct {
	Rings [][]Coordinate `json:"rings,omitempty"`
}

// Alert is a weather warning instance from the upstream feed.
// The ID doubles as the idempotency key: a payload with the same ID and a
// later Sent timestamp supersedes the stored version, an equal-or-earlier
// Sent is a duplicate and is discarded.
type Alert struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Severity  Severity    `json:"severity,omitempty"`
	Effective time.Time   `json:"effective"`
	Expires   time.Time   `json:"expires"`
	Sent      time.Time   `json:"sent"`
	Narrative string      `json:"narrative,omitempty"`
	Geometry  RawGeometry `json:"geometry,omitempty"`
	Regions   []string    `json:"regions,omitempty"` // SAME/FIPS administrative-area codes
}

// RadarIndicated holds hazard measurements extracted from alert narrative
// text. It is attached to an alert only when at least one measurement was
// extracted; a record of all-nil measurements is never produced.
type RadarIndicated struct {
	HailInches      *float64 `json:"hail_inches,omitempty"`
	WindMPH         *float64 `json:"wind_mph,omitempty"`
	HailDetected    bool     `json:"hail_detected"`
	WindDetected    bool     `json:"wind_detected"`
	TornadoDetected bool     `json:"tornado_detected"`
}

// Geometry type tags produced by classification.
const (
	GeometryPoint        = "point"
	GeometryPolygon      = "polygon"
	GeometryMultiPolygon = "multipolygon"
)

// GeometrySummary is the normalized view of an alert's area.
// Invariants: MinLat ≤ MaxLat, MinLon ≤ MaxLon, CoordinateCount ≥ 3 for
// polygon types and = 1 for points.
type GeometrySummary struct {
	Type            string  `json:"type"`
	CoordinateCount int     `json:"coordinate_count"`
	MinLat          float64 `json:"min_lat"`
	MaxLat          float64 `json:"max_lat"`
	MinLon          float64 `json:"min_lon"`
	MaxLon          float64 `json:"max_lon"`
	AreaSqDeg       float64 `json:"area_sq_deg"`
}

// MatchMethod identifies which verification tier matched an alert.
type MatchMethod string

const (
	MatchAreaCode  MatchMethod = "area-code"
	MatchProximity MatchMethod = "proximity"
	MatchNone      MatchMethod = "none"
)

// MatchResult is the outcome of reconciling an alert against ground-truth
// SPC reports. Ephemeral: recomputed on every evaluation, persisted only as
// part of the enriched record.
type MatchResult struct {
	Verified   bool        `json:"spc_verified"`
	Confidence float64     `json:"spc_confidence_score"`
	Method     MatchMethod `json:"spc_match_method"`
	ReportIDs  []string    `json:"spc_report_ids,omitempty"`
}

// EnrichedAlert is the finalized record produced per processed alert.
type EnrichedAlert struct {
	Alert
	RadarIndicated *RadarIndicated  `json:"radar_indicated,omitempty"`
	Summary        *GeometrySummary `json:"geometry_summary,omitempty"`
	Match          MatchResult      `json:"match"`
	ProcessedAt    time.Time        `json:"processed_at"`
}

// RawEvent is an unprocessed message from the feed source.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}
