package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

func f(v float64) *float64 { return &v }

func enriched(hail, wind *float64, confidence float64, regions ...string) domain.EnrichedAlert {
	e := domain.EnrichedAlert{
		Alert: domain.Alert{ID: "alert-1", Regions: regions},
	}
	if hail != nil || wind != nil {
		e.RadarIndicated = &domain.RadarIndicated{
			HailInches:   hail,
			WindMPH:      wind,
			HailDetected: hail != nil,
			WindDetected: wind != nil,
		}
	}
	if confidence > 0 {
		e.Match = domain.MatchResult{Verified: true, Confidence: confidence, Method: domain.MatchAreaCode}
	} else {
		e.Match = domain.MatchResult{Method: domain.MatchNone}
	}
	return e
}

func TestValidate(t *testing.T) {
	valid := domain.WebhookRule{ID: "r1", Endpoint: "https://example.com/hook", Hazard: domain.HazardHail, Threshold: 1.0}
	require.NoError(t, Validate(valid))

	tests := []struct {
		name   string
		mutate func(*domain.WebhookRule)
	}{
		{"missing id", func(r *domain.WebhookRule) { r.ID = "" }},
		{"missing endpoint", func(r *domain.WebhookRule) { r.Endpoint = "" }},
		{"negative threshold", func(r *domain.WebhookRule) { r.Threshold = -1 }},
		{"unrecognized hazard", func(r *domain.WebhookRule) { r.Hazard = "earthquake" }},
		{"damage threshold above 1", func(r *domain.WebhookRule) { r.Hazard = domain.HazardDamage; r.Threshold = 1.5 }},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := valid
			tc.mutate(&r)
			assert.ErrorIs(t, Validate(r), domain.ErrRuleConfigInvalid)
		})
	}
}

func TestNewSnapshot(t *testing.T) {
	snap := NewSnapshot([]domain.WebhookRule{
		{ID: "h1", Endpoint: "https://a", Hazard: domain.HazardHail, Threshold: 1},
		{ID: "bad", Endpoint: "https://b", Hazard: "volcano", Threshold: 1},
		{ID: "w1", Endpoint: "https://c", Hazard: domain.HazardWind, Threshold: 58},
	})

	assert.Equal(t, 2, snap.Len())
	assert.Len(t, snap.Skipped(), 1)
	assert.ErrorIs(t, snap.Skipped()[0], domain.ErrRuleConfigInvalid)
	assert.Len(t, snap.ByHazard(domain.HazardHail), 1)
	assert.Len(t, snap.ByHazard(domain.HazardWind), 1)
	assert.Empty(t, snap.ByHazard(domain.HazardDamage))
}

func TestEvaluate(t *testing.T) {
	t.Run("hail threshold met with location filter", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "r1", Endpoint: "https://hook", Hazard: domain.HazardHail, Threshold: 1.0, LocationFilter: "TX"},
		})

		out := Evaluate(enriched(f(1.25), nil, 0, "TX"), snap)

		require.Len(t, out, 1)
		d := out[0]
		assert.Equal(t, "r1", d.RuleID)
		assert.Equal(t, "alert-1", d.AlertID)
		assert.Equal(t, domain.HazardHail, d.Hazard)
		assert.Equal(t, 1.25, d.TriggerValue)
		assert.Equal(t, domain.DeliveryPending, d.State)
		assert.NotEmpty(t, d.ID)
	})

	t.Run("threshold is inclusive", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "r1", Endpoint: "https://hook", Hazard: domain.HazardWind, Threshold: 58},
		})

		assert.Len(t, Evaluate(enriched(nil, f(58), 0), snap), 1)
		assert.Empty(t, Evaluate(enriched(nil, f(57.9), 0), snap))
	})

	t.Run("location filter excludes", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "r1", Endpoint: "https://hook", Hazard: domain.HazardHail, Threshold: 1.0, LocationFilter: "OK"},
		})

		assert.Empty(t, Evaluate(enriched(f(2), nil, 0, "TX", "48201"), snap))
	})

	t.Run("region prefix filter", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "r1", Endpoint: "https://hook", Hazard: domain.HazardHail, Threshold: 1.0, LocationFilter: "48"},
		})

		assert.Len(t, Evaluate(enriched(f(2), nil, 0, "48201"), snap), 1)
	})

	t.Run("no measurement means no match", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "r1", Endpoint: "https://hook", Hazard: domain.HazardHail, Threshold: 0},
		})

		assert.Empty(t, Evaluate(enriched(nil, nil, 0), snap))
	})

	t.Run("damage rules read the confidence score", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "d1", Endpoint: "https://hook", Hazard: domain.HazardDamage, Threshold: 0.7},
		})

		out := Evaluate(enriched(nil, nil, 0.9), snap)
		require.Len(t, out, 1)
		assert.Equal(t, 0.9, out[0].TriggerValue)

		assert.Empty(t, Evaluate(enriched(nil, nil, 0.6), snap))
	})

	t.Run("unverified alerts never fire damage rules", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "d1", Endpoint: "https://hook", Hazard: domain.HazardDamage, Threshold: 0},
		})

		assert.Empty(t, Evaluate(enriched(nil, nil, 0), snap))
	})

	t.Run("multiple hazards fire independently", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "h1", Endpoint: "https://hook", Hazard: domain.HazardHail, Threshold: 1.0},
			{ID: "w1", Endpoint: "https://hook", Hazard: domain.HazardWind, Threshold: 58},
			{ID: "w2", Endpoint: "https://hook", Hazard: domain.HazardWind, Threshold: 100},
		})

		out := Evaluate(enriched(f(1.75), f(80), 0), snap)

		require.Len(t, out, 2)
		assert.Equal(t, "h1", out[0].RuleID)
		assert.Equal(t, "w1", out[1].RuleID)
	})

	t.Run("same pairing yields identical idempotency keys", func(t *testing.T) {
		snap := NewSnapshot([]domain.WebhookRule{
			{ID: "r1", Endpoint: "https://hook", Hazard: domain.HazardHail, Threshold: 1.0},
		})
		e := enriched(f(1.25), nil, 0)

		first := Evaluate(e, snap)
		second := Evaluate(e, snap)
		require.Len(t, first, 1)
		require.Len(t, second, 1)
		assert.Equal(t, first[0].IdempotencyKey(), second[0].IdempotencyKey())
		assert.NotEqual(t, first[0].ID, second[0].ID, "record IDs are fresh; dedup happens on the key")
	})
}
