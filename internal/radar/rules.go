package radar

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/couchcryptid/alert-enrichment/internal/domain"
)

// Rule is one extraction rule: a pure function from narrative text to an
// optional measurement for a single hazard. Rules are evaluated in table
// order and the first hit per hazard wins, so each rule stays independently
// testable and the priority between competing phrasings is explicit.
type Rule struct {
	Name    string
	Hazard  domain.Hazard
	Extract func(text string) (float64, bool)
}

var (
	// hailTagRe matches IBW-style product tags, e.g. "MAX HAIL SIZE...1.75 IN".
	hailTagRe = regexp.MustCompile(`(?i)MAX HAIL SIZE\.{2,}\s*(\d+(?:\.\d+)?)\s*IN`)

	// windTagRe matches "MAX WIND GUST...70 MPH".
	windTagRe = regexp.MustCompile(`(?i)MAX WIND GUST\.{2,}\s*(\d+(?:\.\d+)?)\s*MPH`)

	// hailInchesRe matches numeric diameters near the word hail, e.g.
	// "1.75 inch hail" or "hail up to 2 inches".
	hailInchesRe = regexp.MustCompile(`(?i)(?:(\d+(?:\.\d+)?)\s*inch(?:es)?(?:\s+diameter)?\s+hail|hail\s+(?:of\s+|up\s+to\s+)?(\d+(?:\.\d+)?)\s*inch(?:es)?)`)

	// windMPHRe matches wind speeds, e.g. "80 mph winds" or "gusts to 60 mph".
	windMPHRe = regexp.MustCompile(`(?i)\b(\d{2,3})\s*mph\b`)

	sentenceSplitRe = regexp.MustCompile(`[.!?\n]+`)
)

// defaultRules builds the extraction table. Order encodes priority: product
// tags are authoritative, then measurements bound to an "expected" clause,
// then anything mentioned elsewhere in the narrative. Forecast ranges and
// comparative asides ("penny size hail was reported nearby yesterday") lose
// to the primary hazard clause this way.
func defaultRules(lex Lexicon) []Rule {
	return []Rule{
		{Name: "hail-tag", Hazard: domain.HazardHail, Extract: extractTag(hailTagRe)},
		{Name: "hail-expected-inches", Hazard: domain.HazardHail, Extract: inSentences(requireExpected, extractHailInches)},
		{Name: "hail-expected-lexicon", Hazard: domain.HazardHail, Extract: inSentences(requireExpected, extractHailLexicon(lex))},
		{Name: "hail-inches", Hazard: domain.HazardHail, Extract: inSentences(anySentence, extractHailInches)},
		{Name: "hail-lexicon", Hazard: domain.HazardHail, Extract: inSentences(anySentence, extractHailLexicon(lex))},
		{Name: "wind-tag", Hazard: domain.HazardWind, Extract: extractTag(windTagRe)},
		{Name: "wind-expected-mph", Hazard: domain.HazardWind, Extract: inSentences(requireExpected, extractWindMPH)},
		{Name: "wind-mph", Hazard: domain.HazardWind, Extract: inSentences(anySentence, extractWindMPH)},
	}
}

// extractTag pulls the single capture group of a product-tag pattern.
func extractTag(re *regexp.Regexp) func(string) (float64, bool) {
	return func(text string) (float64, bool) {
		m := re.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		return parsePositive(m[1])
	}
}

// inSentences applies an extractor sentence by sentence, keeping rules
// scoped to one clause so incidental mentions elsewhere don't bleed in.
func inSentences(filter func(string) bool, extract func(string) (float64, bool)) func(string) (float64, bool) {
	return func(text string) (float64, bool) {
		for _, s := range sentenceSplitRe.Split(text, -1) {
			if !filter(s) {
				continue
			}
			if v, ok := extract(s); ok {
				return v, true
			}
		}
		return 0, false
	}
}

func requireExpected(sentence string) bool {
	return strings.Contains(strings.ToLower(sentence), "expected")
}

func anySentence(string) bool { return true }

func extractHailInches(sentence string) (float64, bool) {
	m := hailInchesRe.FindStringSubmatch(sentence)
	if m == nil {
		return 0, false
	}
	for _, group := range m[1:] {
		if group != "" {
			return parsePositive(group)
		}
	}
	return 0, false
}

// extractHailLexicon matches a size-descriptor phrase with the word "hail"
// nearby (within the same clause, 60 characters either side). The proximity
// requirement keeps "quarter mile" and similar non-hail uses out.
func extractHailLexicon(lex Lexicon) func(string) (float64, bool) {
	return func(sentence string) (float64, bool) {
		lower := strings.ToLower(sentence)
		hailIdx := strings.Index(lower, "hail")
		if hailIdx < 0 {
			return 0, false
		}
		for _, e := range lex {
			idx := strings.Index(lower, strings.ToLower(e.Phrase))
			if idx < 0 {
				continue
			}
			dist := hailIdx - (idx + len(e.Phrase))
			if dist < 0 {
				dist = idx - (hailIdx + len("hail"))
			}
			if dist <= 60 {
				return e.Inches, true
			}
		}
		return 0, false
	}
}

func extractWindMPH(sentence string) (float64, bool) {
	lower := strings.ToLower(sentence)
	if !strings.Contains(lower, "wind") && !strings.Contains(lower, "gust") {
		return 0, false
	}
	m := windMPHRe.FindStringSubmatch(sentence)
	if m == nil {
		return 0, false
	}
	return parsePositive(m[1])
}

func parsePositive(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}
