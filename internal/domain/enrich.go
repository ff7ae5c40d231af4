package domain

// NewEnrichedAlert assembles the finalized record for one processed alert
// and stamps it with the package clock. When the feed omitted a severity
// and measurements were parsed, the severity is derived from them so the
// persisted record always carries one where possible.
func NewEnrichedAlert(a Alert, ri *RadarIndicated, gs *GeometrySummary, mr MatchResult) EnrichedAlert {
	if a.Severity == "" {
		a.Severity = DeriveSeverity(ri)
	}
	return EnrichedAlert{
		Alert:          a,
		RadarIndicated: ri,
		Summary:        gs,
		Match:          mr,
		ProcessedAt:    clock.Now().UTC(),
	}
}
