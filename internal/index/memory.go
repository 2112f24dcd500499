package index

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"

	"aedocs/internal/correrr"
	"aedocs/internal/model"
)

// MemoryVectorStore is a deterministic in-memory VectorStore used by tests.
// Similarity is cosine computed in pure Go; good enough to exercise
// ordering and filters without a real backend.
type MemoryVectorStore struct {
	collection string
	dimension  int

	mu       sync.Mutex
	points   map[string]model.VectorPoint
	hashSeen map[string]string
}

func NewMemoryVectorStore(collection string, dim int) *MemoryVectorStore {
	return &MemoryVectorStore{
		collection: collection,
		dimension:  dim,
		points:     make(map[string]model.VectorPoint),
		hashSeen:   make(map[string]string),
	}
}

func (m *MemoryVectorStore) Collection() string { return m.collection }
func (m *MemoryVectorStore) Dimension() int     { return m.dimension }

func (m *MemoryVectorStore) UpsertBatch(ctx context.Context, points []model.VectorPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range points {
		hash := contentHash(p.Payload.Content)
		if prior, seen := m.hashSeen[p.ID]; seen && prior != hash {
			return correrr.Integrity(p.ID, errCollision)
		}
		m.points[p.ID] = p
		m.hashSeen[p.ID] = hash
	}
	return nil
}

var errCollision = collisionErr{}

type collisionErr struct{}

func (collisionErr) Error() string { return "content hash differs from prior upsert" }

func (m *MemoryVectorStore) Search(ctx context.Context, vector []float32, topK int, ranges []RangeFilter, equality map[string]string) ([]VectorResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var results []VectorResult
	for id, p := range m.points {
		if !matchesEquality(p.Payload, equality) || !matchesRanges(p.Payload, ranges) {
			continue
		}
		results = append(results, VectorResult{ID: id, Score: cosine(vector, p.Vector), Payload: p.Payload})
	}
	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if topK > 0 && len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

func (m *MemoryVectorStore) DeleteByFilter(ctx context.Context, equality map[string]string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, p := range m.points {
		if matchesEquality(p.Payload, equality) {
			delete(m.points, id)
		}
	}
	return nil
}

func matchesEquality(p model.CommonPayload, equality map[string]string) bool {
	for k, v := range equality {
		switch k {
		case "project_id":
			if p.ProjectID != v {
				return false
			}
		case "discipline":
			if string(p.Discipline) != v {
				return false
			}
		case "confidentiality":
			if string(p.Confidentiality) != v {
				return false
			}
		case "doc_family":
			if p.DocFamily != v {
				return false
			}
		case "doc_no":
			if p.DocNo != v {
				return false
			}
		case "is_current":
			if strconv.FormatBool(p.IsCurrent) != v {
				return false
			}
		case "status":
			if p.Status != v {
				return false
			}
		}
	}
	return true
}

func matchesRanges(p model.CommonPayload, ranges []RangeFilter) bool {
	for _, r := range ranges {
		fact, ok := p.Numeric[r.Key]
		if !ok {
			return false
		}
		v, _ := fact.Value.Float64()
		if v < r.Min || v > r.Max {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (sqrt(na) * sqrt(nb)))
}

func sqrt(v float64) float64 {
	if v == 0 {
		return 0
	}
	x := v
	for i := 0; i < 40; i++ {
		x = 0.5 * (x + v/x)
	}
	return x
}

var _ VectorStore = (*MemoryVectorStore)(nil)

// MemoryLexical is a deterministic in-memory LexicalStore for tests:
// simple substring match scored by term frequency, no real tsvector.
type MemoryLexical struct {
	mu       sync.Mutex
	chunks   map[string]model.Chunk
	hashSeen map[string]string
}

func NewMemoryLexical() *MemoryLexical {
	return &MemoryLexical{chunks: make(map[string]model.Chunk), hashSeen: make(map[string]string)}
}

func (l *MemoryLexical) IndexBatch(ctx context.Context, chunks []model.Chunk) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range chunks {
		hash := contentHash(c.Payload().Content)
		if prior, seen := l.hashSeen[c.ID()]; seen && prior != hash {
			return correrr.Integrity(c.ID(), errCollision)
		}
		l.chunks[c.ID()] = c
		l.hashSeen[c.ID()] = hash
	}
	return nil
}

func (l *MemoryLexical) Search(ctx context.Context, query string, topK int, equality map[string]string) ([]LexicalResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	terms := strings.Fields(strings.ToLower(query))
	var out []LexicalResult
	for id, c := range l.chunks {
		payload := c.Payload()
		if !matchesEquality(payload, equality) {
			continue
		}
		content := strings.ToLower(payload.Content)
		score := 0
		for _, t := range terms {
			score += strings.Count(content, t)
		}
		if score == 0 {
			continue
		}
		out = append(out, LexicalResult{ID: id, Score: float32(score), Payload: payload})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if topK > 0 && len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (l *MemoryLexical) DeleteByFilter(ctx context.Context, equality map[string]string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, c := range l.chunks {
		if matchesEquality(c.Payload(), equality) {
			delete(l.chunks, id)
		}
	}
	return nil
}

var _ LexicalStore = (*MemoryLexical)(nil)
