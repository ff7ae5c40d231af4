package radar

import (
	"encoding/json"
	"fmt"
	"os"
)

// LexiconEntry maps an NWS hail size descriptor phrase to its canonical
// diameter in inches.
type LexiconEntry struct {
	Phrase string  `json:"phrase"`
	Inches float64 `json:"inches"`
}

// Lexicon is the ordered set of size-descriptor phrases recognized in
// narrative text. It is configuration data: the NWS spotter glossary gets
// revised, so deployments can override it without touching the extraction
// rules. Longer, more specific phrases must come before their substrings
// ("half dollar" before "dollar") since extraction takes the first hit.
type Lexicon []LexiconEntry

// DefaultLexicon returns the NWS spotter-report hail size chart.
func DefaultLexicon() Lexicon {
	return Lexicon{
		{Phrase: "softball", Inches: 4.5},
		{Phrase: "grapefruit", Inches: 4.0},
		{Phrase: "tea cup", Inches: 3.0},
		{Phrase: "baseball", Inches: 2.75},
		{Phrase: "tennis ball", Inches: 2.5},
		{Phrase: "hen egg", Inches: 2.0},
		{Phrase: "golf ball", Inches: 1.75},
		{Phrase: "ping pong ball", Inches: 1.5},
		{Phrase: "walnut", Inches: 1.5},
		{Phrase: "half dollar", Inches: 1.25},
		{Phrase: "quarter", Inches: 1.0},
		{Phrase: "nickel", Inches: 0.88},
		{Phrase: "penny", Inches: 0.75},
		{Phrase: "dime", Inches: 0.7},
		{Phrase: "marble", Inches: 0.5},
		{Phrase: "pea", Inches: 0.25},
	}
}

// LoadLexicon reads a JSON lexicon override from disk. The file is a flat
// array of {"phrase": ..., "inches": ...} entries in match-priority order.
func LoadLexicon(path string) (Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read lexicon: %w", err)
	}
	var lex Lexicon
	if err := json.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("parse lexicon: %w", err)
	}
	for i, e := range lex {
		if e.Phrase == "" || e.Inches <= 0 {
			return nil, fmt.Errorf("parse lexicon: entry %d invalid", i)
		}
	}
	return lex, nil
}
