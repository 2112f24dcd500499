// Package rerank implements C10: cross-encoder re-ranking of the fused
// candidate set into spec.md §4.10's final ordering.
package rerank

import (
	"context"
	"sort"
	"strings"

	"aedocs/internal/correrr"
	"aedocs/internal/retrieve"
)

// Default tuning constants from spec.md §4.10.
const (
	FinalTopK      = 10
	SimilarityFloor = 0.7

	weightFused  = 0.3
	weightRerank = 0.7
)

// Pair is one (query, candidate text) unit scored by the cross-encoder.
type Pair struct {
	Query string
	Doc   string
}

// Reranker is the cross-encoder capability (spec.md §6 "Cross-encoder
// protocol"): score(list<(query, doc)>) -> list<float>, no normalisation
// required of the implementation.
type Reranker interface {
	Score(ctx context.Context, pairs []Pair) ([]float64, error)
}

// Result is one re-ranked candidate carrying both the fused and final
// scores, ready for the answer assembler (C11).
type Result struct {
	retrieve.Candidate
	RerankScore float64
	Final       float64
}

// candidateText builds the cross-encoder input: doc_title ⊕ section ⊕
// clause ⊕ content, truncated to maxChars (standing in for the re-ranker's
// context window, spec.md §4.10).
func candidateText(c retrieve.Candidate, maxChars int) string {
	var b strings.Builder
	p := c.Payload
	for _, part := range []string{p.DocTitle, p.Section, p.Clause, p.Content} {
		if part == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(" ")
		}
		b.WriteString(part)
	}
	text := b.String()
	if maxChars > 0 && len(text) > maxChars {
		text = text[:maxChars]
	}
	return text
}

// Run scores every candidate against query, combines fused+rerank scores
// per spec.md §4.10, drops results below SimilarityFloor, and truncates to
// FinalTopK with deterministic (doc_id, chunk_id) tie-breaking.
func Run(ctx context.Context, reranker Reranker, query string, candidates []retrieve.Candidate, contextChars int) ([]Result, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	pairs := make([]Pair, len(candidates))
	for i, c := range candidates {
		pairs[i] = Pair{Query: query, Doc: candidateText(c, contextChars)}
	}

	raw, err := reranker.Score(ctx, pairs)
	if err != nil {
		return nil, correrr.Transient(err)
	}
	if len(raw) != len(candidates) {
		return nil, correrr.Integrity("rerank_scores", errScoreCountMismatch{want: len(candidates), got: len(raw)})
	}

	normalized := minMaxNormalize(raw)

	results := make([]Result, 0, len(candidates))
	for i, c := range candidates {
		final := weightFused*c.Fused + weightRerank*normalized[i]
		if final < SimilarityFloor {
			continue
		}
		results = append(results, Result{Candidate: c, RerankScore: normalized[i], Final: final})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Final != results[j].Final {
			return results[i].Final > results[j].Final
		}
		if results[i].DocID != results[j].DocID {
			return results[i].DocID < results[j].DocID
		}
		return results[i].ChunkID < results[j].ChunkID
	})

	if len(results) > FinalTopK {
		results = results[:FinalTopK]
	}
	return results, nil
}

// minMaxNormalize rescales raw cross-encoder scores to [0,1] per call, as
// spec.md §4.10 requires ("min-max normalised to [0,1] per call").
func minMaxNormalize(raw []float64) []float64 {
	if len(raw) == 0 {
		return raw
	}
	min, max := raw[0], raw[0]
	for _, v := range raw {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	out := make([]float64, len(raw))
	if max == min {
		for i := range raw {
			out[i] = 1
		}
		return out
	}
	for i, v := range raw {
		out[i] = (v - min) / (max - min)
	}
	return out
}

type errScoreCountMismatch struct{ want, got int }

func (e errScoreCountMismatch) Error() string {
	return "rerank: score count mismatch"
}

// Noop is a pass-through Reranker used by dry runs and as the seed for
// deterministic tests: it scores every pair by normalized text-overlap
// length rather than a real cross-encoder call.
type Noop struct{}

func (Noop) Score(_ context.Context, pairs []Pair) ([]float64, error) {
	out := make([]float64, len(pairs))
	for i, p := range pairs {
		out[i] = float64(overlapLen(p.Query, p.Doc))
	}
	return out, nil
}

func overlapLen(a, b string) int {
	al, bl := strings.ToLower(a), strings.ToLower(b)
	count := 0
	for _, word := range strings.Fields(al) {
		if len(word) < 3 {
			continue
		}
		if strings.Contains(bl, word) {
			count++
		}
	}
	return count
}

var _ Reranker = Noop{}
