// Package intent implements the keyword-rule intent classifier and
// document-reference extractor of C8.
package intent

import (
	"regexp"
	"strings"
)

// Intent is one of the eight query intents spec.md §4.8 names.
type Intent string

const (
	Definition  Intent = "definition"
	Scope       Intent = "scope"
	Requirement Intent = "requirement"
	Reference   Intent = "reference"
	Comparison  Intent = "comparison"
	Relevance   Intent = "relevance"
	Analog      Intent = "analog"
	General     Intent = "general"
)

// Classification is the result of classifying one normalised query.
type Classification struct {
	Intent     Intent
	Confidence float64
}

type rule struct {
	intent     Intent
	keywords   []string
	confidence float64
}

// rules are checked in order; the first match wins, mirroring the
// teacher's ordered-rule classifiers elsewhere in the corpus.
var rules = []rule{
	{Definition, []string{"что такое", "определение", "what is", "definition of"}, 0.85},
	{Scope, []string{"область применения", "распространяется на", "scope of", "applies to"}, 0.8},
	{Requirement, []string{"должен", "требуется", "обязательно", "shall", "must", "required"}, 0.75},
	{Comparison, []string{"сравни", "разница между", "чем отличается", "compare", "difference between"}, 0.8},
	{Relevance, []string{"действует ли", "актуал", "still in force", "superseded", "is current"}, 0.75},
	{Analog, []string{"аналог", "подобрать", "equivalent", "analog", "substitute"}, 0.75},
}

// directCitation mirrors normalize's reference patterns loosely enough to
// detect a citation in a raw query without importing that package (which
// would create an import cycle back through the chunker).
var directCitation = regexp.MustCompile(`(?i)(ГОСТ|СП|СНиП|ФНП|ПУЭ)\s*[\d.]+[-–]?\d*`)

// Classify returns the single best-matching intent for a normalised query.
// A direct standard-citation match forces Reference at confidence 0.95,
// taking priority over every keyword rule (spec.md §4.8).
func Classify(normalizedQuery string) Classification {
	if directCitation.MatchString(normalizedQuery) {
		return Classification{Intent: Reference, Confidence: 0.95}
	}
	lower := strings.ToLower(normalizedQuery)
	for _, r := range rules {
		for _, kw := range r.keywords {
			if strings.Contains(lower, kw) {
				return Classification{Intent: r.intent, Confidence: r.confidence}
			}
		}
	}
	return Classification{Intent: General, Confidence: 0.5}
}
