package chunk

import (
	"sort"
	"strings"

	"aedocs/internal/model"
	"aedocs/internal/normalize"
)

// requirementKeywords are bilingual high/medium-signal terms that raise a
// chunk's importance score, ported from the original pipeline's
// importance_keywords bands.
var requirementKeywords = map[string]float64{
	"должен": 0.3, "shall": 0.3, "required": 0.3, "обязательно": 0.3,
	"запрещается": 0.25, "not permitted": 0.25,
	"рекомендуется": 0.15, "recommended": 0.15, "should": 0.15,
	"допускается": 0.1, "may": 0.1,
}

// importanceScore derives an advisory [0,1] score from requirement-signal
// words, numeric-fact presence, length band, and reference presence
// (spec.md §4.4). The score is stored on the chunk payload; neither
// retrieval scoring nor answer assembly reads it.
func importanceScore(text string, numeric map[string]model.NumericFact, refs []normalize.Reference) float64 {
	lower := strings.ToLower(text)
	score := 0.0

	for kw, weight := range requirementKeywords {
		if strings.Contains(lower, kw) {
			score += weight
		}
	}
	if len(numeric) > 0 {
		score += 0.2
	}
	if len(refs) > 0 {
		score += 0.15
	}

	tokens := tokenCount(text)
	switch {
	case tokens >= MinTokens && tokens <= TargetTokens:
		score += 0.1
	case tokens > TargetTokens && tokens <= MaxTokens:
		score += 0.05
	}

	if score > 1 {
		score = 1
	}
	return score
}

var stopwordsRU = map[string]bool{
	"и": true, "в": true, "на": true, "с": true, "по": true, "для": true,
	"не": true, "от": true, "из": true, "к": true, "что": true, "это": true,
	"а": true, "или": true, "как": true, "то": true, "же": true, "при": true,
}

var stopwordsEN = map[string]bool{
	"the": true, "a": true, "an": true, "and": true, "or": true, "of": true,
	"to": true, "in": true, "on": true, "for": true, "with": true, "is": true,
	"are": true, "be": true, "by": true, "at": true, "this": true, "that": true,
}

// topKeywords returns the top-n non-stopword terms by frequency, ties
// broken by first appearance.
func topKeywords(text string, n int) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || 'а' <= r && r <= 'я' || '0' <= r && r <= '9')
	})

	counts := map[string]int{}
	var order []string
	for _, w := range fields {
		if len(w) < 3 || stopwordsRU[w] || stopwordsEN[w] {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, w)
		}
		counts[w]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}
