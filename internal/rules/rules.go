// Package rules evaluates enriched alerts against webhook threshold
// subscriptions.
//
// Rule sets are read from an external store and handed to each evaluation as
// an immutable Snapshot, so one alert is always judged against a consistent
// rule set with no locking on the hot path.
package rules

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/google/uuid"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// Source provides the current webhook rule set.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Snapshot is an immutable view of the rule set, indexed by hazard so
// evaluation only touches rules that could possibly match.
type Snapshot struct {
	byHazard map[domain.Hazard][]domain.WebhookRule
	size     int
	skipped  []error
}

// NewSnapshot validates and indexes a rule set. Invalid rules are skipped,
// not fatal: each produces an error in Skipped() and every remaining rule
// still applies.
func NewSnapshot(all []domain.WebhookRule) Snapshot {
	s := Snapshot{byHazard: make(map[domain.Hazard][]domain.WebhookRule)}
	for _, r := range all {
		if err := Validate(r); err != nil {
			s.skipped = append(s.skipped, err)
			continue
		}
		s.byHazard[r.Hazard] = append(s.byHazard[r.Hazard], r)
		s.size++
	}
	return s
}

// ByHazard returns the valid rules subscribed to a hazard.
func (s Snapshot) ByHazard(h domain.Hazard) []domain.WebhookRule { return s.byHazard[h] }

// Len returns the number of valid rules in the snapshot.
func (s Snapshot) Len() int { return s.size }

// Skipped returns one error per rule rejected during snapshot construction.
func (s Snapshot) Skipped() []error { return s.skipped }

// Validate checks a rule's configuration. Failures wrap
// domain.ErrRuleConfigInvalid.
func Validate(r domain.WebhookRule) error {
	if r.ID == "" {
		return fmt.Errorf("%w: missing id", domain.ErrRuleConfigInvalid)
	}
	if r.Endpoint == "" {
		return fmt.Errorf("%w: rule %s: missing endpoint", domain.ErrRuleConfigInvalid, r.ID)
	}
	if math.IsNaN(r.Threshold) || math.IsInf(r.Threshold, 0) || r.Threshold < 0 {
		return fmt.Errorf("%w: rule %s: threshold %v not usable", domain.ErrRuleConfigInvalid, r.ID, r.Threshold)
	}
	switch r.Hazard {
	case domain.HazardHail, domain.HazardWind:
	case domain.HazardDamage:
		if r.Threshold > 1 {
			return fmt.Errorf("%w: rule %s: damage threshold %v outside [0,1]", domain.ErrRuleConfigInvalid, r.ID, r.Threshold)
		}
	default:
		return fmt.Errorf("%w: rule %s: unrecognized hazard %q", domain.ErrRuleConfigInvalid, r.ID, r.Hazard)
	}
	return nil
}

// Evaluate matches one enriched alert against a rule snapshot and returns a
// pending delivery per satisfied rule. A rule is satisfied when the alert's
// relevant measurement meets or exceeds its threshold and its location
// filter (if any) intersects the alert's affected regions.
//
// Returned deliveries are candidates: the delivery store decides whether a
// record already exists for the (rule, alert, trigger) pairing.
func Evaluate(e domain.EnrichedAlert, snap Snapshot) []domain.WebhookDelivery {
	var out []domain.WebhookDelivery
	for _, h := range []domain.Hazard{domain.HazardHail, domain.HazardWind, domain.HazardDamage} {
		value, ok := triggerValue(e, h)
		if !ok {
			continue
		}
		for _, r := range snap.ByHazard(h) {
			if value < r.Threshold {
				continue
			}
			if !locationMatches(r.LocationFilter, e.Regions) {
				continue
			}
			out = append(out, domain.WebhookDelivery{
				ID:           uuid.NewString(),
				RuleID:       r.ID,
				AlertID:      e.ID,
				Endpoint:     r.Endpoint,
				Hazard:       h,
				TriggerValue: value,
				State:        domain.DeliveryPending,
			})
		}
	}
	return out
}

// triggerValue picks the measurement a hazard's rules filter on: parsed hail
// diameter, parsed wind speed, or the SPC confidence score for
// damage-probability rules.
func triggerValue(e domain.EnrichedAlert, h domain.Hazard) (float64, bool) {
	switch h {
	case domain.HazardHail:
		if e.RadarIndicated == nil || e.RadarIndicated.HailInches == nil {
			return 0, false
		}
		return *e.RadarIndicated.HailInches, true
	case domain.HazardWind:
		if e.RadarIndicated == nil || e.RadarIndicated.WindMPH == nil {
			return 0, false
		}
		return *e.RadarIndicated.WindMPH, true
	case domain.HazardDamage:
		if !e.Match.Verified {
			return 0, false
		}
		return e.Match.Confidence, true
	default:
		return 0, false
	}
}

// locationMatches reports whether a filter intersects the affected-region
// set. An empty filter matches everything; otherwise any region equal to the
// filter or sharing it as a prefix counts ("48" covers all of Texas' FIPS
// codes, "TX" covers state-coded regions).
func locationMatches(filter string, regions []string) bool {
	if filter == "" {
		return true
	}
	for _, r := range regions {
		if r == filter || strings.HasPrefix(r, filter) {
			return true
		}
	}
	return false
}
