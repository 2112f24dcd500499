// Package index implements C6: the dual-index writer over a per-collection
// VectorStore and a shared LexicalStore, with idempotent batch upsert and
// vector-first, lexical-second write ordering. No per-batch visibility
// marker is written.
package index

import (
	"context"

	"aedocs/internal/model"
)

// VectorResult is one nearest-neighbour hit.
type VectorResult struct {
	ID       string
	Score    float32
	Payload  model.CommonPayload
}

// RangeFilter narrows a vector search to payload.Numeric[Key] within
// [Min, Max] of the canonical unit, used by C12 analog search.
type RangeFilter struct {
	Key string
	Min float64
	Max float64
}

// VectorStore is one dense collection (text/table/drawing/IFC).
type VectorStore interface {
	Collection() string
	Dimension() int

	// UpsertBatch writes points idempotently: re-upserting the same id with
	// identical payload content hash is a no-op; a differing hash for an
	// existing id is an Integrity error (spec.md §4.6 collision rule).
	UpsertBatch(ctx context.Context, points []model.VectorPoint) error

	Search(ctx context.Context, vector []float32, topK int, ranges []RangeFilter, equalityFilters map[string]string) ([]VectorResult, error)

	DeleteByFilter(ctx context.Context, equalityFilters map[string]string) error
}

// LexicalResult is one BM25/tsvector hit.
type LexicalResult struct {
	ID      string
	Score   float32
	Payload model.CommonPayload
}

// LexicalStore is the shared Postgres full-text index across every chunk
// type.
type LexicalStore interface {
	// IndexBatch writes chunk content + filterable payload fields
	// idempotently (same semantics as VectorStore.UpsertBatch).
	IndexBatch(ctx context.Context, chunks []model.Chunk) error

	Search(ctx context.Context, query string, topK int, equalityFilters map[string]string) ([]LexicalResult, error)

	DeleteByFilter(ctx context.Context, equalityFilters map[string]string) error
}

// Writer is the dual-index writer: it fans a batch of chunks out to the
// correct VectorStore by collection, then the shared LexicalStore. It keeps
// no visibility marker: a chunk is searchable in each store as soon as that
// store's write returns, and a failed lexical write leaves the vector
// upserts of the batch in place.
type Writer struct {
	vectors map[string]VectorStore // keyed by model.ChunkType.Collection()
	lexical LexicalStore
	embed   embedderFor
}

// embedderFor resolves the Embedder for a chunk's collection; kept as a
// function type here to avoid importing internal/embed from internal/index
// (index stays a pure storage-fan-out layer; wiring happens in the service).
type embedderFor func(collection string) (func(ctx context.Context, texts []string) ([][]float32, error), error)

// NewWriter builds a Writer over the given per-collection vector stores and
// shared lexical store.
func NewWriter(vectors map[string]VectorStore, lexical LexicalStore, embed embedderFor) *Writer {
	return &Writer{vectors: vectors, lexical: lexical, embed: embed}
}

// WriteBatch embeds, then upserts vector-first, lexical-second, matching
// spec.md §4.6's ordering so a crash between the two legs never leaves a
// chunk lexically visible without its vector twin.
func (w *Writer) WriteBatch(ctx context.Context, chunks []model.Chunk) error {
	byCollection := map[string][]model.Chunk{}
	for _, c := range chunks {
		byCollection[c.Collection()] = append(byCollection[c.Collection()], c)
	}

	for collection, group := range byCollection {
		store, ok := w.vectors[collection]
		if !ok {
			continue
		}
		embedFn, err := w.embed(collection)
		if err != nil {
			return err
		}
		texts := make([]string, len(group))
		for i, c := range group {
			texts[i] = c.Payload().Content
		}
		vectors, err := embedFn(ctx, texts)
		if err != nil {
			return err
		}
		points := make([]model.VectorPoint, len(group))
		for i, c := range group {
			points[i] = model.VectorPoint{
				ID:         c.ID(),
				Collection: collection,
				Vector:     vectors[i],
				Payload:    c.Payload(),
			}
		}
		if err := store.UpsertBatch(ctx, points); err != nil {
			return err
		}
	}

	return w.lexical.IndexBatch(ctx, chunks)
}
