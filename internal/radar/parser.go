// Package radar extracts radar-indicated hazard measurements from warning
// narrative text.
//
// NWS narrative phrasing is inconsistent, so extraction rarely succeeds
// (historically under 5% of eligible alerts) and an empty result is the
// common, normal outcome. The parser therefore never returns an error: it
// returns nil when nothing could be extracted.
package radar

import (
	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// eligibleEvents is the allow-list of severe-convective warning categories
// worth scanning. All other event types short-circuit to nil at zero cost.
var eligibleEvents = map[string]bool{
	"Severe Thunderstorm Warning": true,
	"Tornado Warning":             true,
	"Special Marine Warning":      true,
	"Severe Weather Statement":    true,
}

// tornadoEvents are the categories that flag tornado detection regardless of
// what the narrative says.
var tornadoEvents = map[string]bool{
	"Tornado Warning": true,
}

// Parser extracts measurements using an ordered rule table.
type Parser struct {
	rules []Rule
}

// NewParser builds a parser from the given hail size lexicon. Pass
// DefaultLexicon() unless a deployment override is configured.
func NewParser(lex Lexicon) *Parser {
	return &Parser{rules: defaultRules(lex)}
}

// Rules exposes the rule table for per-rule testing and auditability.
func (p *Parser) Rules() []Rule { return p.rules }

// Parse scans an alert's narrative for hazard measurements. For each hazard
// the first rule (in table order) that extracts a value wins; later mentions
// are ignored. Returns nil when the event type is not eligible or no rule
// extracted a measurement: absence of a RadarIndicated record means
// "nothing detected", never "all nulls".
func (p *Parser) Parse(event, narrative string) *domain.RadarIndicated {
	if !eligibleEvents[event] {
		return nil
	}

	var hail, wind *float64
	for _, r := range p.rules {
		switch r.Hazard {
		case domain.HazardHail:
			if hail != nil {
				continue
			}
		case domain.HazardWind:
			if wind != nil {
				continue
			}
		}
		if v, ok := r.Extract(narrative); ok {
			v := v
			switch r.Hazard {
			case domain.HazardHail:
				hail = &v
			case domain.HazardWind:
				wind = &v
			}
		}
	}

	// A record exists only when something measurable was extracted; the
	// tornado flag alone (derived from the event category) does not warrant
	// a record of nulls.
	if hail == nil && wind == nil {
		return nil
	}

	return &domain.RadarIndicated{
		HailInches:      hail,
		WindMPH:         wind,
		HailDetected:    hail != nil && *hail > 0,
		WindDetected:    wind != nil && *wind > 0,
		TornadoDetected: tornadoEvents[event],
	}
}
