package core

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"aedocs/internal/config"
	"aedocs/internal/corelog"
	"aedocs/internal/embed"
	"aedocs/internal/index"
	"aedocs/internal/ingest"
	"aedocs/internal/model"
	"aedocs/internal/normalize"
	"aedocs/internal/obs"
	"aedocs/internal/objectstore"
	"aedocs/internal/parse"
	"aedocs/internal/query/rewrite"
	"aedocs/internal/retrieve/rerank"
)

// Providers carries the out-of-scope bytes-level format readers
// (spec.md §1 Non-goals: "bytes-level format readers ... are treated as
// text-extraction providers"). A deployment wires in whatever PDF/OCR/
// spreadsheet/IFC/DXF libraries it chooses; a nil provider simply leaves
// that media type unregistered, so archives containing it fail per-document
// rather than at startup.
type Providers struct {
	NativeText   parse.NativeTextExtractor
	OCR          parse.OCRProvider
	Spreadsheet  parse.SpreadsheetReader
	IFC          parse.IFCReader
	DXF          parse.DXFReader
}

// Bootstrap wires every concrete backend named in cfg into a Core, using
// providers for the format parsers cfg alone cannot configure. The
// returned close func releases every pool/connection Bootstrap opened; the
// caller defers it.
func Bootstrap(ctx context.Context, cfg config.Config, providers Providers, log corelog.Logger) (*Core, func() error, error) {
	var closers []func() error
	closeAll := func() error {
		var first error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && first == nil {
				first = err
			}
		}
		return first
	}

	objects, err := objectstore.NewS3Store(ctx, objectstore.Config{
		Bucket: cfg.ObjectStore.Bucket,
		Region: cfg.ObjectStore.Region,
		Endpoint: cfg.ObjectStore.Endpoint,
	})
	if err != nil {
		return nil, closeAll, fmt.Errorf("bootstrap object store: %w", err)
	}

	registry := parse.NewRegistry()
	registry.Register(parse.NewTextParser())
	if providers.NativeText != nil {
		registry.Register(parse.NewPDFParser(providers.NativeText, providers.OCR))
		registry.Register(parse.NewDOCXParser(providers.NativeText))
	}
	if providers.Spreadsheet != nil {
		registry.Register(parse.NewXLSXParser(providers.Spreadsheet))
	}
	if providers.IFC != nil {
		registry.Register(parse.NewIFCParser(providers.IFC))
	}
	if providers.DXF != nil {
		registry.Register(parse.NewDXFParser(providers.DXF))
	}

	units := normalize.DefaultUnitTable()
	if cfg.Query.UnitTablePath != "" {
		if loaded, err := normalize.LoadUnitTable(cfg.Query.UnitTablePath); err == nil {
			units = loaded
		} else {
			log.Error("load_unit_table_failed", corelog.Fields{"path": cfg.Query.UnitTablePath, "error": err.Error()})
		}
	}

	var lexicalPool *pgxpool.Pool
	lexicalPool, err = pgxpool.New(ctx, cfg.LexicalStore.DSN)
	if err != nil {
		return nil, closeAll, fmt.Errorf("connect lexical store: %w", err)
	}
	closers = append(closers, func() error { lexicalPool.Close(); return nil })
	lexical, err := index.NewPostgresLexical(ctx, lexicalPool)
	if err != nil {
		return nil, closeAll, fmt.Errorf("bootstrap lexical store: %w", err)
	}

	vectors, embedders, err := bootstrapCollections(ctx, cfg, &closers)
	if err != nil {
		return nil, closeAll, err
	}

	var events ingest.EventPublisher
	if len(cfg.Orchestrator.KafkaBrokers) > 0 {
		ke := ingest.NewKafkaEvents(cfg.Orchestrator.KafkaBrokers, cfg.Orchestrator.KafkaTopic, log)
		closers = append(closers, ke.Close)
		events = ke
	}

	// Jobs and the archive content-hash index share the lexical store's
	// Postgres instance; together they're the only first-class persisted
	// state beyond the two indices (spec.md §6, §3).
	jobStore := ingest.NewPostgresJobStore(lexicalPool)
	archives := ingest.NewPostgresArchiveStore(lexicalPool)

	synonyms := rewrite.DefaultSynonyms()
	if cfg.Query.SynonymsPath != "" {
		if loaded, err := rewrite.LoadSynonymsFile(cfg.Query.SynonymsPath); err == nil {
			synonyms = loaded
		} else {
			log.Error("load_synonyms_failed", corelog.Fields{"path": cfg.Query.SynonymsPath, "error": err.Error()})
		}
	}

	reranker := rerank.Reranker(rerank.NewRemote(rerank.RemoteConfig{
		Endpoint: cfg.Reranker.Endpoint,
		APIKey:   cfg.Reranker.APIKey,
		Timeout:  cfg.Reranker.Timeout,
	}))

	var metrics obs.Metrics
	if cfg.Telemetry.Enabled {
		metrics = obs.NewOtel(cfg.Telemetry.ServiceName)
	}

	c := New(Deps{
		Objects:        objects,
		Parsers:        registry,
		Units:          units,
		Vectors:        vectors,
		Lexical:        lexical,
		Embedders:      embedders,
		Synonyms:       synonyms,
		Reranker:       reranker,
		JobStore:       jobStore,
		Events:         events,
		Archives:       archives,
		ReingestPolicy: ingest.ReingestPolicy(cfg.Orchestrator.ReingestPolicy),
		Log:            log,
		Metrics:        metrics,
		Workers:        cfg.Orchestrator.Workers,
		QueryDeadline:  cfg.Query.Deadline,
	})
	return c, closeAll, nil
}

// bootstrapCollections provisions every canonical collection's vector store
// (Qdrant or pgvector, per cfg.VectorStore.Backend) and its embedder.
func bootstrapCollections(ctx context.Context, cfg config.Config, closers *[]func() error) (map[string]index.VectorStore, map[string]embed.Embedder, error) {
	vectors := make(map[string]index.VectorStore, len(cfg.VectorStore.Collections))
	embedders := make(map[string]embed.Embedder, len(cfg.VectorStore.Collections))

	modelByCollection := make(map[string]config.EmbedderModelConfig, len(cfg.Embedder.Models))
	for _, m := range cfg.Embedder.Models {
		modelByCollection[m.Collection] = m
	}

	var vectorPool *pgxpool.Pool
	if cfg.VectorStore.Backend == "pgvector" {
		pool, err := pgxpool.New(ctx, cfg.VectorStore.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect vector store: %w", err)
		}
		*closers = append(*closers, func() error { pool.Close(); return nil })
		vectorPool = pool
	}

	for _, cc := range cfg.VectorStore.Collections {
		collection := model.Collection{Name: cc.Name, ModelName: cc.ModelName, Dimensions: cc.Dimensions, Metric: cc.Metric}

		var store index.VectorStore
		var err error
		switch cfg.VectorStore.Backend {
		case "pgvector":
			store, err = index.NewPGVector(ctx, vectorPool, collection)
		default:
			store, err = index.NewQdrant(cfg.VectorStore.DSN, collection)
		}
		if err != nil {
			return nil, nil, fmt.Errorf("bootstrap collection %s: %w", cc.Name, err)
		}
		vectors[cc.Name] = store

		m := modelByCollection[cc.Name]
		remoteCfg := embed.RemoteConfig{Endpoint: m.Endpoint, APIKey: m.APIKey, BatchSize: m.BatchSize}
		if cc.ModelName == "clip" {
			embedders[cc.Name] = embed.NewCLIP(remoteCfg, cc.Dimensions)
		} else {
			embedders[cc.Name] = embed.NewBGEM3(remoteCfg, cc.Dimensions)
		}
	}

	return vectors, embedders, nil
}
