// Package verify reconciles alerts against ground-truth SPC storm reports.
package verify

import (
	"math"
	"time"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// ReportLag is how far the candidate window extends beyond the alert's
// effective/expires span on each side. SPC verification reports lag real
// time, often arriving the day after the event.
const ReportLag = 24 * time.Hour

// WindowFor returns the candidate report window for an alert:
// [effective − ReportLag, expires + ReportLag].
func WindowFor(a domain.Alert) (time.Time, time.Time) {
	return a.Effective.Add(-ReportLag), a.Expires.Add(ReportLag)
}

// proximityMarginMiles is the fixed margin added to the alert's bounding box
// for the proximity tier. 10 statute miles absorbs both report location
// coarseness ("8 ESE Chappel") and warned-polygon edge effects.
const proximityMarginMiles = 10.0

// milesPerDegreeLat converts the margin to degrees of latitude. The
// longitude margin is widened by 1/cos(mid-latitude) since meridians
// converge toward the poles.
const milesPerDegreeLat = 69.0

// Confidence constants for the tiered matcher. Area-code confidence decays
// linearly with each candidate beyond the first: extra candidates mean the
// corroboration is ambiguous between neighboring storms, so confidence is
// monotonically non-increasing in the candidate count, floored at 0.5.
const (
	areaCodeBase    = 0.9
	areaCodeDecay   = 0.1
	areaCodeFloor   = 0.5
	proximityScore  = 0.6
	unverifiedScore = 0.0
)

// Match reconciles one alert against its candidate report set, in priority
// order: administrative-area code overlap first, bounding-box proximity
// second. Every candidate satisfying the winning tier is listed, since one
// alert may be corroborated by several reports. Candidates must already be
// windowed (see WindowFor); geometry may be nil, which disables the
// proximity tier only.
func Match(alert domain.Alert, summary *domain.GeometrySummary, candidates []domain.SPCReport) domain.MatchResult {
	if byArea := areaCodeMatches(alert.Regions, candidates); len(byArea) > 0 {
		return domain.MatchResult{
			Verified:   true,
			Confidence: areaCodeConfidence(len(byArea)),
			Method:     domain.MatchAreaCode,
			ReportIDs:  byArea,
		}
	}

	if summary != nil {
		if byProximity := proximityMatches(*summary, candidates); len(byProximity) > 0 {
			return domain.MatchResult{
				Verified:   true,
				Confidence: proximityScore,
				Method:     domain.MatchProximity,
				ReportIDs:  byProximity,
			}
		}
	}

	return domain.MatchResult{
		Verified:   false,
		Confidence: unverifiedScore,
		Method:     domain.MatchNone,
	}
}

// areaCodeMatches returns the IDs of candidates whose administrative-area
// code is in the alert's affected-region set.
func areaCodeMatches(regions []string, candidates []domain.SPCReport) []string {
	if len(regions) == 0 {
		return nil
	}
	set := make(map[string]bool, len(regions))
	for _, r := range regions {
		set[r] = true
	}

	var ids []string
	for _, c := range candidates {
		if set[c.AreaCode] {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// proximityMatches returns the IDs of candidates whose point lies within the
// alert's bounding box expanded by proximityMarginMiles.
func proximityMatches(s domain.GeometrySummary, candidates []domain.SPCReport) []string {
	latMargin := proximityMarginMiles / milesPerDegreeLat

	midLat := (s.MinLat + s.MaxLat) / 2
	cos := math.Cos(midLat * math.Pi / 180)
	if cos < 0.1 {
		cos = 0.1 // near the poles a degree of longitude vanishes
	}
	lonMargin := latMargin / cos

	var ids []string
	for _, c := range candidates {
		if c.Lat >= s.MinLat-latMargin && c.Lat <= s.MaxLat+latMargin &&
			c.Lon >= s.MinLon-lonMargin && c.Lon <= s.MaxLon+lonMargin {
			ids = append(ids, c.ID)
		}
	}
	return ids
}

// areaCodeConfidence applies the linear decay: 0.9 for a single candidate,
// minus 0.1 per additional one, never below 0.5. The result is a heuristic
// signal bounded to [0,1], not a statistical estimate.
func areaCodeConfidence(n int) float64 {
	c := areaCodeBase - areaCodeDecay*float64(n-1)
	if c < areaCodeFloor {
		return areaCodeFloor
	}
	return c
}
