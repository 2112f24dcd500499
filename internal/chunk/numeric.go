package chunk

import (
	"regexp"
	"strings"

	"aedocs/internal/model"
	"aedocs/internal/units"
)

// quantityTerms maps a canonical numeric-fact name (spec.md §3: flow_rate,
// head, pressure, temperature, diameter) to the bilingual terms that
// introduce it in source text.
var quantityTerms = map[string][]string{
	"flow_rate":   {"производительность", "подача", "расход", "flow rate", "flowrate", "capacity"},
	"head":        {"напор", "head"},
	"pressure":    {"давление", "pressure"},
	"temperature": {"температура", "temperature"},
	"diameter":    {"диаметр", "diameter", "ду", "dn"},
}

// numberUnit matches a number (dot or comma decimal) followed, after
// optional whitespace only, by a canonical (Latin) unit symbol.
var numberUnit = regexp.MustCompile(`(\d[\d\s]*[.,]?\d*)\s*(m3/h|m³/h|mm|bar|°C|kW|m\b)`)

// NewFactExtractor returns the numeric-fact extraction function ChunkText
// expects (ExtractNumericFacts itself; nothing is captured), so callers never
// reimplement the keyword-to-canonical-unit lookup per document (SPEC_FULL.md C3/C4
// "numeric-fact extraction").
func NewFactExtractor() func(text string) map[string]model.NumericFact {
	return ExtractNumericFacts
}

// ExtractNumericFacts scans normalised text for the canonical quantity
// names spec.md §3 lists, each introduced by one of its bilingual terms and
// followed by a number+unit pair. A term with no matching number nearby, or
// a unit ExtractNumericFacts cannot normalise, is dropped rather than
// guessed (spec.md §4.3 invariant).
func ExtractNumericFacts(text string) map[string]model.NumericFact {
	lower := strings.ToLower(text)
	out := map[string]model.NumericFact{}

	for name, terms := range quantityTerms {
		for _, term := range terms {
			idx := strings.Index(lower, term)
			if idx < 0 {
				continue
			}
			window := text[idx:min(len(text), idx+len(term)+40)]
			m := numberUnit.FindStringSubmatch(window)
			if m == nil {
				continue
			}
			raw := strings.ReplaceAll(m[1], " ", "")
			value, err := units.ParseDecimal(raw)
			if err != nil {
				continue
			}
			out[name] = units.Normalize(value, m[2])
			break
		}
	}
	return out
}
