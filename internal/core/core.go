// Package core wires C1-C12 into the four operations spec.md §6 names as
// the system's public API: Search, AnalogSearch, Ingest, JobStatus. It is
// the service layer the teacher's cmd/orchestrator and cmd/search built
// directly into main(); here the wiring is split out so both a query
// daemon and an ingest daemon can share one Core built from one Config.
package core

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"aedocs/internal/analog"
	"aedocs/internal/corelog"
	"aedocs/internal/correrr"
	"aedocs/internal/embed"
	"aedocs/internal/index"
	"aedocs/internal/ingest"
	"aedocs/internal/model"
	"aedocs/internal/normalize"
	"aedocs/internal/obs"
	"aedocs/internal/objectstore"
	"aedocs/internal/parse"
	"aedocs/internal/query/rewrite"
	"aedocs/internal/retrieve"
	"aedocs/internal/retrieve/rerank"
)

// Deps are the already-constructed capability implementations Core wires
// together. Callers (cmd/*) build these from config.Config and pass them
// in; Core never reaches for a global or constructs a backend itself.
type Deps struct {
	Objects  objectstore.Store
	Parsers  *parse.Registry
	Units    normalize.UnitTable

	Vectors   map[string]index.VectorStore // keyed by collection name
	Lexical   index.LexicalStore
	Embedders map[string]embed.Embedder // keyed by collection name

	Synonyms rewrite.SynonymMap
	Reranker rerank.Reranker

	JobStore ingest.JobStore
	Events   ingest.EventPublisher

	// Archives resolves re-uploads of an already-seen archive by content
	// hash (spec.md §3). A nil Archives disables the check: every upload
	// is ingested fresh, matching the teacher's deployments that never
	// configured idempotency either.
	Archives       ingest.ArchiveStore
	ReingestPolicy ingest.ReingestPolicy

	Log     corelog.Logger
	Metrics obs.Metrics

	Workers       int
	QueryDeadline time.Duration
}

// Core is the assembled retrieval platform: one instance per process,
// shared across every query/ingest request it serves.
type Core struct {
	objects objectstore.Store
	parsers *parse.Registry
	units   normalize.UnitTable

	vectors   map[string]index.VectorStore
	lexical   index.LexicalStore
	embedders map[string]embed.Embedder
	writer    *index.Writer

	rewriter  *rewrite.Rewriter
	retriever *retrieve.Retriever
	reranker  rerank.Reranker
	analogs   *analog.Searcher

	jobStore       ingest.JobStore
	archives       ingest.ArchiveStore
	reingestPolicy ingest.ReingestPolicy
	orch           *ingest.Orchestrator
	jobContexts    sync.Map // job id -> jobContext, populated for the lifetime of one Ingest call

	log     corelog.Logger
	metrics obs.Metrics

	queryDeadline time.Duration
}

// New assembles a Core from deps. Missing optional deps (Log, Metrics,
// Events) fall back to no-op implementations the way every C1-C12 package
// already does internally.
func New(deps Deps) *Core {
	log := deps.Log
	if log == nil {
		log = corelog.Noop{}
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = obs.Noop{}
	}
	deadline := deps.QueryDeadline
	if deadline <= 0 {
		deadline = 10 * time.Second
	}
	reingestPolicy := deps.ReingestPolicy
	if reingestPolicy == "" {
		reingestPolicy = ingest.ReingestSkipIfUnchanged
	}

	c := &Core{
		objects:        deps.Objects,
		parsers:        deps.Parsers,
		units:          deps.Units,
		vectors:        deps.Vectors,
		lexical:        deps.Lexical,
		embedders:      deps.Embedders,
		rewriter:       rewrite.New(deps.Synonyms),
		reranker:       deps.Reranker,
		jobStore:       deps.JobStore,
		archives:       deps.Archives,
		reingestPolicy: reingestPolicy,
		log:            log,
		metrics:        metrics,
		queryDeadline:  deadline,
	}

	c.writer = index.NewWriter(deps.Vectors, deps.Lexical, c.batchEmbedderFor)
	c.retriever = retrieve.New(deps.Vectors, deps.Lexical, c.queryEmbedderFor)
	c.analogs = analog.New(c.retriever, deps.Reranker)
	c.orch = ingest.New(deps.Workers, deps.JobStore, log, deps.Events, c.processDocument)
	return c
}

// batchEmbedderFor adapts Core's per-collection Embedder map to the
// function shape index.Writer expects.
func (c *Core) batchEmbedderFor(collection string) (func(ctx context.Context, texts []string) ([][]float32, error), error) {
	e, ok := c.embedders[collection]
	if !ok {
		return nil, correrr.InvalidInput("no embedder configured for collection %q", collection)
	}
	return e.EmbedBatch, nil
}

// queryEmbedderFor adapts the same map to retrieve.EmbedQuery's
// single-text shape, batching through EmbedBatch with one input.
func (c *Core) queryEmbedderFor(collection string) (func(ctx context.Context, text string) ([]float32, error), error) {
	e, ok := c.embedders[collection]
	if !ok {
		return nil, correrr.InvalidInput("no embedder configured for collection %q", collection)
	}
	return func(ctx context.Context, text string) ([]float32, error) {
		vectors, err := e.EmbedBatch(ctx, []string{text})
		if err != nil {
			return nil, err
		}
		if len(vectors) == 0 {
			return nil, correrr.Transient(errEmptyEmbedding{collection: collection})
		}
		return vectors[0], nil
	}, nil
}

type errEmptyEmbedding struct{ collection string }

func (e errEmptyEmbedding) Error() string {
	return "embedder returned no vector for collection " + e.collection
}

// PutObject uploads data at path into the configured object store ahead of
// an Ingest call, returning the content hash Ingest expects the caller to
// record as the document's ContentHash (spec.md §4.1).
func (c *Core) PutObject(ctx context.Context, path string, data []byte) (string, error) {
	return c.objects.Put(ctx, path, data)
}

// JobStatus returns the job record identified by jobID, including the
// resumable phase pointer, monotonic counters and any per-document
// failures (spec.md §6 "job_status").
func (c *Core) JobStatus(ctx context.Context, jobID string) (model.Job, error) {
	return c.jobStore.Load(ctx, jobID)
}

// newJobID mints a fresh job identifier; ids are opaque to every caller.
func newJobID() string { return uuid.NewString() }
