package verify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

var txSummary = &domain.GeometrySummary{
	Type:            domain.GeometryPolygon,
	CoordinateCount: 4,
	MinLat:          29.5,
	MaxLat:          30.5,
	MinLon:          -95.8,
	MaxLon:          -95.0,
}

func report(id, areaCode string, lat, lon float64) domain.SPCReport {
	return domain.SPCReport{
		ID:       id,
		Hazard:   domain.HazardHail,
		AreaCode: areaCode,
		Lat:      lat,
		Lon:      lon,
	}
}

func TestMatch(t *testing.T) {
	alert := domain.Alert{ID: "a1", Regions: []string{"48201"}}

	t.Run("area-code match", func(t *testing.T) {
		result := Match(alert, txSummary, []domain.SPCReport{
			report("r1", "48201", 29.8, -95.4),
		})

		assert.True(t, result.Verified)
		assert.Equal(t, domain.MatchAreaCode, result.Method)
		assert.GreaterOrEqual(t, result.Confidence, 0.5)
		assert.Equal(t, 0.9, result.Confidence)
		assert.Equal(t, []string{"r1"}, result.ReportIDs)
	})

	t.Run("area-code wins over proximity", func(t *testing.T) {
		result := Match(alert, txSummary, []domain.SPCReport{
			report("inside-box", "12345", 30.0, -95.4),
			report("in-region", "48201", 45.0, -120.0),
		})

		assert.Equal(t, domain.MatchAreaCode, result.Method)
		assert.Equal(t, []string{"in-region"}, result.ReportIDs)
	})

	t.Run("confidence decays with extra candidates", func(t *testing.T) {
		reports := []domain.SPCReport{report("r1", "48201", 0, 0)}
		last := 1.0
		for i := 2; i <= 10; i++ {
			reports = append(reports, report(string(rune('a'+i)), "48201", 0, 0))
			c := Match(alert, txSummary, reports).Confidence
			assert.LessOrEqual(t, c, last, "monotonically non-increasing")
			assert.GreaterOrEqual(t, c, 0.0)
			assert.LessOrEqual(t, c, 1.0)
			last = c
		}
		assert.InDelta(t, 0.5, last, 1e-9, "floors at 0.5")
	})

	t.Run("all winning-tier candidates listed", func(t *testing.T) {
		result := Match(alert, txSummary, []domain.SPCReport{
			report("r1", "48201", 0, 0),
			report("r2", "99999", 0, 0),
			report("r3", "48201", 0, 0),
		})

		assert.Equal(t, []string{"r1", "r3"}, result.ReportIDs)
		assert.InDelta(t, 0.8, result.Confidence, 1e-9)
	})

	t.Run("proximity match inside expanded box", func(t *testing.T) {
		// Just north of MaxLat, within the 10-mile margin.
		result := Match(alert, txSummary, []domain.SPCReport{
			report("near", "99999", 30.6, -95.4),
		})

		assert.True(t, result.Verified)
		assert.Equal(t, domain.MatchProximity, result.Method)
		assert.Equal(t, 0.6, result.Confidence)
		assert.Equal(t, []string{"near"}, result.ReportIDs)
	})

	t.Run("proximity miss outside margin", func(t *testing.T) {
		result := Match(alert, txSummary, []domain.SPCReport{
			report("far", "99999", 32.0, -95.4),
		})

		assert.False(t, result.Verified)
		assert.Equal(t, domain.MatchNone, result.Method)
		assert.Equal(t, 0.0, result.Confidence)
		assert.Empty(t, result.ReportIDs)
	})

	t.Run("nil summary disables proximity only", func(t *testing.T) {
		inRegion := Match(alert, nil, []domain.SPCReport{report("r1", "48201", 0, 0)})
		assert.Equal(t, domain.MatchAreaCode, inRegion.Method)

		inBox := Match(alert, nil, []domain.SPCReport{report("r2", "99999", 30.0, -95.4)})
		assert.Equal(t, domain.MatchNone, inBox.Method)
		assert.Equal(t, 0.0, inBox.Confidence)
	})

	t.Run("no candidates", func(t *testing.T) {
		result := Match(alert, txSummary, nil)

		assert.False(t, result.Verified)
		assert.Equal(t, domain.MatchNone, result.Method)
		assert.Equal(t, 0.0, result.Confidence)
	})
}

func TestWindowFor(t *testing.T) {
	effective := time.Date(2026, 5, 3, 18, 0, 0, 0, time.UTC)
	expires := time.Date(2026, 5, 3, 21, 0, 0, 0, time.UTC)

	from, to := WindowFor(domain.Alert{Effective: effective, Expires: expires})

	require.Equal(t, effective.Add(-24*time.Hour), from)
	require.Equal(t, expires.Add(24*time.Hour), to)
}
