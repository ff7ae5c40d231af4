package domain

import (
	"encoding/json"
	"fmt"
)

// ParseAlert deserializes a raw feed payload into an Alert and validates it.
// Payloads with a missing identifier or an effective time after expires are
// rejected with ErrInvalidAlert rather than silently accepted.
func ParseAlert(payload []byte) (Alert, error) {
	var a Alert
	if err := json.Unmarshal(payload, &a); err != nil {
		return Alert{}, fmt.Errorf("parse alert payload: %w", err)
	}
	if err := a.Validate(); err != nil {
		return Alert{}, err
	}
	return a, nil
}

// Validate checks the invariants every persisted alert must hold.
func (a Alert) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: missing identifier", ErrInvalidAlert)
	}
	if a.Effective.After(a.Expires) {
		return fmt.Errorf("%w: effective %s after expires %s",
			ErrInvalidAlert, a.Effective.UTC().Format("2006-01-02T15:04:05Z"), a.Expires.UTC().Format("2006-01-02T15:04:05Z"))
	}
	return nil
}

// DeriveSeverity maps parsed measurements to a severity label using
// thresholds informed by NWS Severe Weather Criteria:
//   - hail: <0.75in minor, <1.5in moderate, <2.5in severe, else extreme
//   - wind: <50mph minor, <74mph moderate (tropical storm threshold),
//     <96mph severe (hurricane Cat 2), else extreme
//
// When both hazards are present the higher rank wins. Returns empty when no
// measurement is available; callers keep the feed-supplied severity in that
// case.
func DeriveSeverity(ri *RadarIndicated) Severity {
	if ri == nil {
		return ""
	}
	var s Severity
	if ri.HailInches != nil {
		s = maxSeverity(s, hailSeverity(*ri.HailInches))
	}
	if ri.WindMPH != nil {
		s = maxSeverity(s, windSeverity(*ri.WindMPH))
	}
	return s
}

func hailSeverity(inches float64) Severity {
	switch {
	case inches <= 0:
		return ""
	case inches < 0.75:
		return SeverityMinor
	case inches < 1.5:
		return SeverityModerate
	case inches < 2.5:
		return SeveritySevere
	default:
		return SeverityExtreme
	}
}

func windSeverity(mph float64) Severity {
	switch {
	case mph <= 0:
		return ""
	case mph < 50:
		return SeverityMinor
	case mph < 74:
		return SeverityModerate
	case mph < 96:
		return SeveritySevere
	default:
		return SeverityExtreme
	}
}

func maxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}
