// Package rewrite implements C8's query-rewrite half: synonym expansion,
// intent-hint reformulation, citation/unit spacing normalisation and a
// rewrite-set cache keyed by query hash.
package rewrite

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"

	"aedocs/internal/query/intent"
)

// Candidate is one member of a query's rewrite set.
type Candidate struct {
	Text       string
	Confidence float64
	Source     string // "original", "synonym", "intent_hint"
}

// SynonymMap is a bilingual domain term map: canonical term -> synonyms.
// The teacher's corpus loads comparable term tables at startup; here it is
// populated by LoadSynonyms at service wiring time.
type SynonymMap map[string][]string

// Rewriter expands, reformulates and caches rewrite sets.
type Rewriter struct {
	synonyms SynonymMap
	cache    sync.Map // string(query hash) -> []Candidate
}

// New builds a Rewriter over the given synonym map. A nil map disables
// synonym expansion but reformulation and normalisation still run.
func New(synonyms SynonymMap) *Rewriter {
	if synonyms == nil {
		synonyms = SynonymMap{}
	}
	return &Rewriter{synonyms: synonyms}
}

var (
	citationSpacing = regexp.MustCompile(`([А-ЯЁA-Z]+)\s{2,}([\d.]+)\s*-\s*(\d{2,4})`)
	unitSpacing     = regexp.MustCompile(`(\d)\s+(m3/h|м3/ч|mm|мм|bar|бар|°\s?C|kW|кВт)`)
	whitespaceRun   = regexp.MustCompile(`\s{2,}`)
)

var definitionWords = []string{"что такое", "определение", "what is", "definition"}

// Rewrite produces the query's rewrite set, consulting the cache first.
func (r *Rewriter) Rewrite(rawQuery string) []Candidate {
	key := hashQuery(rawQuery)
	if cached, ok := r.cache.Load(key); ok {
		return cached.([]Candidate)
	}

	normalized := normalizeSpacing(rawQuery)
	candidates := []Candidate{{Text: normalized, Confidence: 1.0, Source: "original"}}
	candidates = append(candidates, r.expandSynonyms(normalized)...)
	if hint := reformulateByIntent(normalized); hint != "" {
		candidates = append(candidates, Candidate{Text: hint, Confidence: 0.8, Source: "intent_hint"})
	}

	r.cache.Store(key, candidates)
	return candidates
}

// normalizeSpacing collapses spacing around standard citations and units
// (spec.md §4.8 step 4), e.g. "ГОСТ  21.201 - 2011" -> "ГОСТ 21.201-2011".
func normalizeSpacing(raw string) string {
	text := citationSpacing.ReplaceAllString(raw, "$1 $2-$3")
	text = unitSpacing.ReplaceAllString(text, "$1 $2")
	text = whitespaceRun.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// expandSynonyms appends one rewrite candidate per synonym term whose
// canonical form appears in the query, replacing the term in place. Each
// expansion carries confidence < 1 since it is a lossy reformulation.
func (r *Rewriter) expandSynonyms(query string) []Candidate {
	lower := strings.ToLower(query)
	var out []Candidate
	for canonical, synonyms := range r.synonyms {
		if !strings.Contains(lower, strings.ToLower(canonical)) {
			continue
		}
		for _, synonym := range synonyms {
			expanded := replaceCaseInsensitive(query, canonical, synonym)
			if expanded == query {
				continue
			}
			out = append(out, Candidate{Text: expanded, Confidence: 0.7, Source: "synonym"})
		}
	}
	return out
}

// reformulateByIntent prepends an intent-specific hint term when the
// normalised query matches a definition pattern, per spec.md §4.8 step 3.
func reformulateByIntent(query string) string {
	lower := strings.ToLower(query)
	for _, w := range definitionWords {
		if strings.Contains(lower, w) {
			if strings.Contains(lower, "определение") {
				return query
			}
			return "определение " + query
		}
	}
	return ""
}

func replaceCaseInsensitive(s, old, replacement string) string {
	re := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(old))
	return re.ReplaceAllString(s, replacement)
}

func hashQuery(q string) string {
	sum := sha256.Sum256([]byte(q))
	return hex.EncodeToString(sum[:])
}

// ClassifyAndExtract runs intent classification and reference extraction
// on the rewritten/raw query pair, matching the pipeline order spec.md
// §4.8 describes: classification on the normalised query, extraction on
// the raw one.
func ClassifyAndExtract(rawQuery, normalizedQuery string) (intent.Classification, []intent.DocReference) {
	return intent.Classify(normalizedQuery), intent.ExtractReferences(rawQuery)
}
