package embed

import (
	"context"
	"hash/fnv"
	"math"
)

// Deterministic is a hash-based embedder with no external dependency, used
// by tests and local dry runs. Ported from the teacher's
// embedder.NewDeterministic: a rolling 3-gram byte hash scattered into a
// fixed-dimension vector, optionally L2-normalised.
type Deterministic struct {
	dim       int
	normalize bool
	seed      uint32
	name      string
}

// NewDeterministic builds a Deterministic embedder of the given dimension.
func NewDeterministic(name string, dim int, normalizeVec bool, seed uint32) *Deterministic {
	return &Deterministic{dim: dim, normalize: normalizeVec, seed: seed, name: name}
}

func (d *Deterministic) Name() string   { return d.name }
func (d *Deterministic) Dimension() int { return d.dim }
func (d *Deterministic) Ping(context.Context) error { return nil }

func (d *Deterministic) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = d.embedOne(t)
	}
	return out, nil
}

func (d *Deterministic) embedOne(text string) []float32 {
	vec := make([]float32, d.dim)
	if len(text) < 3 {
		text = text + "   "
	}
	for i := 0; i+3 <= len(text); i++ {
		gram := text[i : i+3]
		h := fnv.New32a()
		h.Write([]byte{byte(d.seed), byte(d.seed >> 8)})
		h.Write([]byte(gram))
		idx := int(h.Sum32()) % d.dim
		if idx < 0 {
			idx += d.dim
		}
		vec[idx] += 1
	}
	if d.normalize {
		normalizeL2(vec)
	}
	return vec
}

func normalizeL2(vec []float32) {
	var sumSq float64
	for _, v := range vec {
		sumSq += float64(v) * float64(v)
	}
	if sumSq == 0 {
		return
	}
	norm := float32(math.Sqrt(sumSq))
	for i := range vec {
		vec[i] /= norm
	}
}

var _ Embedder = (*Deterministic)(nil)
