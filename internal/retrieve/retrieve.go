// Package retrieve implements C9: the hybrid retriever fanning a rewrite
// set out across dense and lexical collections in parallel, with
// reference-steered direct lookup and spec.md §4.9's weighted-sum fusion.
package retrieve

import (
	"context"
	"sort"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"aedocs/internal/correrr"
	"aedocs/internal/index"
	"aedocs/internal/model"
	"aedocs/internal/query/intent"
	"aedocs/internal/query/rewrite"
)

// Default tuning constants from spec.md §4.9.
const (
	DefaultDenseTopN   = 30
	DefaultLexicalTopN = 30
	DirectLookupLimit  = 10
	RerankTopK         = 50
	MaxFanout          = 32

	WeightBM25  = 0.3
	WeightDense = 0.4
)

// SearchType tags where a candidate's score contribution came from.
type SearchType string

const (
	SearchReference SearchType = "reference"
	SearchDense     SearchType = "dense"
	SearchLexical   SearchType = "lexical"
	SearchHybrid    SearchType = "hybrid"
)

// Candidate is one fused result ready for re-ranking (C10).
type Candidate struct {
	ChunkID    string
	DocID      string
	Section    string
	Clause     string
	SearchType SearchType
	Fused      float64
	Payload    model.CommonPayload
}

// EmbedQuery resolves an embedding function for a collection's query text.
type EmbedQuery func(collection string) (func(ctx context.Context, text string) ([]float32, error), error)

// Options configures one retrieval call.
type Options struct {
	Collections     []string
	EqualityFilters map[string]string
	Ranges          []index.RangeFilter
	DenseTopN       int
	LexicalTopN     int
}

// Retriever fans a rewrite set out across collections and fuses the
// results.
type Retriever struct {
	vectors map[string]index.VectorStore
	lexical index.LexicalStore
	embed   EmbedQuery
}

// New builds a Retriever over the given per-collection vector stores,
// shared lexical store and query embedder.
func New(vectors map[string]index.VectorStore, lexical index.LexicalStore, embed EmbedQuery) *Retriever {
	return &Retriever{vectors: vectors, lexical: lexical, embed: embed}
}

// Run executes direct reference lookup, dense search and lexical search in
// parallel (bounded fan-out) for every rewrite candidate across every
// requested collection, then fuses the results into up to RerankTopK
// candidates sorted by fused score.
func (r *Retriever) Run(ctx context.Context, rewrites []rewrite.Candidate, refs []intent.DocReference, opt Options) ([]Candidate, error) {
	collections := opt.Collections
	if len(collections) == 0 {
		collections = r.allCollections()
	}
	denseTopN := opt.DenseTopN
	if denseTopN <= 0 {
		denseTopN = DefaultDenseTopN
	}
	lexTopN := opt.LexicalTopN
	if lexTopN <= 0 {
		lexTopN = DefaultLexicalTopN
	}

	fanout := len(rewrites)*len(collections)*2 + len(refs)
	if fanout > MaxFanout {
		fanout = MaxFanout
	}
	if fanout <= 0 {
		fanout = 1
	}
	sem := semaphore.NewWeighted(int64(fanout))

	pool := newFusionPool()

	var wg errgroup.Group
	for _, ref := range refs {
		ref := ref
		wg.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return correrr.Timeout(err)
			}
			defer sem.Release(1)
			return r.directLookup(ctx, ref, pool)
		})
	}

	for _, rw := range rewrites {
		rw := rw
		for _, collection := range collections {
			collection := collection
			wg.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					return correrr.Timeout(err)
				}
				defer sem.Release(1)
				return r.denseSearch(ctx, rw, collection, denseTopN, opt, pool)
			})
			wg.Go(func() error {
				if err := sem.Acquire(ctx, 1); err != nil {
					return correrr.Timeout(err)
				}
				defer sem.Release(1)
				return r.lexicalSearch(ctx, rw, lexTopN, opt, pool)
			})
		}
	}

	if err := wg.Wait(); err != nil {
		return nil, err
	}

	candidates := pool.fuse()
	if len(candidates) > RerankTopK {
		candidates = candidates[:RerankTopK]
	}
	return candidates, nil
}

func (r *Retriever) allCollections() []string {
	out := make([]string, 0, len(r.vectors))
	for c := range r.vectors {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// directLookup resolves an extracted document reference to an equality
// filter (doc_family + doc_no) across every collection, entering hits into
// the pool with score 1.0 and SearchReference type (spec.md §4.9).
func (r *Retriever) directLookup(ctx context.Context, ref intent.DocReference, pool *fusionPool) error {
	if r.lexical == nil {
		return nil
	}
	filters := map[string]string{"doc_family": ref.Family, "doc_no": ref.Number}
	query := ref.Family + " " + ref.Number
	results, err := r.lexical.Search(ctx, query, DirectLookupLimit, filters)
	if err != nil {
		return err
	}
	for _, res := range results {
		pool.add(res.ID, res.Payload, SearchReference, 1.0, 1.0)
	}
	return nil
}

func (r *Retriever) denseSearch(ctx context.Context, rw rewrite.Candidate, collection string, topN int, opt Options, pool *fusionPool) error {
	store, ok := r.vectors[collection]
	if !ok || r.embed == nil {
		return nil
	}
	embedFn, err := r.embed(collection)
	if err != nil {
		return err
	}
	vector, err := embedFn(ctx, rw.Text)
	if err != nil {
		return err
	}
	results, err := store.Search(ctx, vector, topN, opt.Ranges, opt.EqualityFilters)
	if err != nil {
		return err
	}
	for _, res := range results {
		// Dense scores are already cosine similarity in [0,1] (spec.md §4.9);
		// unlike lexical/BM25 they are not rescaled by the top hit, or the
		// fixed WeightDense weight below would stop meaning what it says.
		pool.add(res.ID, res.Payload, SearchDense, float64(res.Score)*WeightDense*rw.Confidence, 0)
	}
	return nil
}

func (r *Retriever) lexicalSearch(ctx context.Context, rw rewrite.Candidate, topN int, opt Options, pool *fusionPool) error {
	if r.lexical == nil {
		return nil
	}
	results, err := r.lexical.Search(ctx, rw.Text, topN, opt.EqualityFilters)
	if err != nil {
		return err
	}
	var scores []float64
	for _, res := range results {
		scores = append(scores, float64(res.Score))
	}
	top := maxFloat(scores)
	for _, res := range results {
		normalized := normalizeScore(float64(res.Score), top)
		pool.add(res.ID, res.Payload, SearchLexical, normalized*WeightBM25*rw.Confidence, 0)
	}
	return nil
}

func maxFloat(values []float64) float64 {
	var top float64
	for _, v := range values {
		if v > top {
			top = v
		}
	}
	return top
}

func normalizeScore(score, top float64) float64 {
	if top <= 0 {
		return 0
	}
	return score / top
}

// dedupeKey matches spec.md §4.9: (doc_id, section, clause, chunk_id).
func dedupeKey(chunkID string, p model.CommonPayload) string {
	return p.DocNo + "\x00" + p.Section + "\x00" + p.Clause + "\x00" + chunkID
}
