package retrieve

import (
	"sort"
	"sync"

	"aedocs/internal/model"
)

// fusionEntry accumulates per-source contributions for one deduplicated
// chunk, following spec.md §4.9's "sum contributions, clip to [0,1] per
// source, upgrade search_type to hybrid on collision" rule.
type fusionEntry struct {
	chunkID    string
	payload    model.CommonPayload
	bm25       float64
	dense      float64
	reference  float64
	searchType SearchType
}

// fusionPool is the concurrent-safe accumulator every fan-out goroutine
// writes into; Run drains it once all searches complete.
type fusionPool struct {
	mu      sync.Mutex
	entries map[string]*fusionEntry
}

func newFusionPool() *fusionPool {
	return &fusionPool{entries: make(map[string]*fusionEntry)}
}

// add records one scored hit under its dedupe key, summing same-source
// contributions and clipping each source's running total to [0,1].
func (p *fusionPool) add(chunkID string, payload model.CommonPayload, st SearchType, score, referenceScore float64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	key := dedupeKey(chunkID, payload)
	e, ok := p.entries[key]
	if !ok {
		e = &fusionEntry{chunkID: chunkID, payload: payload, searchType: st}
		p.entries[key] = e
	} else if e.searchType != st {
		e.searchType = SearchHybrid
	}

	switch st {
	case SearchDense:
		e.dense = clip01(e.dense + score)
	case SearchLexical:
		e.bm25 = clip01(e.bm25 + score)
	case SearchReference:
		e.reference = clip01(e.reference + referenceScore)
	}
}

func clip01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// fuse drains the pool into sorted Candidates. Reference hits keep their
// fixed score of 1.0; everything else is the sum of weighted bm25+dense
// contributions.
func (p *fusionPool) fuse() []Candidate {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]Candidate, 0, len(p.entries))
	for _, e := range p.entries {
		fused := e.bm25 + e.dense
		if e.reference > 0 {
			fused = 1.0
		}
		out = append(out, Candidate{
			ChunkID:    e.chunkID,
			DocID:      e.payload.DocNo,
			Section:    e.payload.Section,
			Clause:     e.payload.Clause,
			SearchType: e.searchType,
			Fused:      fused,
			Payload:    e.payload,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Fused != out[j].Fused {
			return out[i].Fused > out[j].Fused
		}
		if out[i].DocID != out[j].DocID {
			return out[i].DocID < out[j].DocID
		}
		return out[i].ChunkID < out[j].ChunkID
	})
	return out
}
