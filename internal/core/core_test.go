package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/correrr"
	"aedocs/internal/embed"
	"aedocs/internal/index"
	"aedocs/internal/ingest"
	"aedocs/internal/model"
	"aedocs/internal/objectstore"
	"aedocs/internal/parse"
	"aedocs/internal/retrieve/rerank"
)

// failingVectorStore always fails Search with a transient error, standing
// in for a collection whose backend is temporarily unreachable.
type failingVectorStore struct {
	collection string
}

func (f failingVectorStore) Collection() string { return f.collection }
func (f failingVectorStore) Dimension() int      { return 8 }
func (f failingVectorStore) UpsertBatch(context.Context, []model.VectorPoint) error { return nil }
func (f failingVectorStore) Search(context.Context, []float32, int, []index.RangeFilter, map[string]string) ([]index.VectorResult, error) {
	return nil, correrr.Transient(errors.New("collection unreachable"))
}
func (f failingVectorStore) DeleteByFilter(context.Context, map[string]string) error { return nil }

var _ index.VectorStore = failingVectorStore{}

func seedLexicalChunk(t *testing.T, lexical *index.MemoryLexical, docNo, content string) {
	t.Helper()
	payload := model.CommonPayload{
		ChunkID:   docNo + "-chunk",
		ChunkType: model.ChunkTypeText,
		DocNo:     docNo,
		Content:   content,
	}
	chunk := model.NewTextChunk(model.TextChunk{CommonPayload: payload})
	require.NoError(t, lexical.IndexBatch(context.Background(), []model.Chunk{chunk}))
}

func newTestCore(t *testing.T, vectors map[string]index.VectorStore, lexical index.LexicalStore) *Core {
	t.Helper()
	embedders := make(map[string]embed.Embedder, len(vectors))
	for name := range vectors {
		embedders[name] = embed.NewDeterministic(name, 8, true, 1)
	}
	return New(Deps{
		Objects:       objectstore.NewMemory(),
		Parsers:       parse.NewRegistry(),
		Vectors:       vectors,
		Lexical:       lexical,
		Embedders:     embedders,
		Reranker:      rerank.Noop{},
		JobStore:      ingest.NewMemoryJobStore(),
		Workers:       2,
		QueryDeadline: 5 * time.Second,
	})
}

func TestSearchDowngradesConfidenceOnPartialCollectionFailure(t *testing.T) {
	lexical := index.NewMemoryLexical()
	seedLexicalChunk(t, lexical, "ГОСТ 1.1-2011", "насос центробежный описание")

	vectors := map[string]index.VectorStore{
		"ae_text_m3": index.NewMemoryVectorStore("ae_text_m3", 8),
		"ae_tables":  failingVectorStore{collection: "ae_tables"},
	}
	c := newTestCore(t, vectors, lexical)

	ans, err := c.Search(context.Background(), "насос", nil, 10)
	require.NoError(t, err)

	assert.Contains(t, ans.Text, "неполный результат")
	assert.Contains(t, ans.Text, "1 из 4")
}

func TestSearchSucceedsWithoutDowngradeWhenAllCollectionsRespond(t *testing.T) {
	lexical := index.NewMemoryLexical()
	seedLexicalChunk(t, lexical, "ГОСТ 1.1-2011", "насос центробежный описание")

	vectors := map[string]index.VectorStore{
		"ae_text_m3": index.NewMemoryVectorStore("ae_text_m3", 8),
	}
	c := newTestCore(t, vectors, lexical)

	ans, err := c.Search(context.Background(), "насос", nil, 10)
	require.NoError(t, err)
	assert.NotContains(t, ans.Text, "неполный результат")
}

func TestIngestDispatchesTextDocumentThroughChunkTextAndIndexesIt(t *testing.T) {
	objects := objectstore.NewMemory()
	hash, err := objects.Put(context.Background(), "docs/spec.txt", []byte("Общие положения\n\nНасос центробежный ГОСТ 1.1-2011, производительность 120 m3/h."))
	require.NoError(t, err)

	registry := parse.NewRegistry()
	registry.Register(parse.NewTextParser())

	vectors := map[string]index.VectorStore{"ae_text_m3": index.NewMemoryVectorStore("ae_text_m3", 8)}
	lexical := index.NewMemoryLexical()
	embedders := map[string]embed.Embedder{"ae_text_m3": embed.NewDeterministic("ae_text_m3", 8, true, 1)}

	c := New(Deps{
		Objects:       objects,
		Parsers:       registry,
		Vectors:       vectors,
		Lexical:       lexical,
		Embedders:     embedders,
		Reranker:      rerank.Noop{},
		JobStore:      ingest.NewMemoryJobStore(),
		Workers:       1,
		QueryDeadline: 5 * time.Second,
	})

	archive := model.Archive{
		ID:        "archive-1",
		ProjectID: "proj-1",
		ObjectID:  "obj-1",
		Phase:     model.PhasePD,
		Manifest: model.Manifest{
			ProjectID:         "proj-1",
			ObjectID:          "obj-1",
			Phase:             model.PhasePD,
			Confidentiality:   model.ConfidentialityInternal,
			DefaultDiscipline: model.DisciplineProcess,
		},
	}
	documents := []IngestDocument{{
		LogicalPath: "docs/spec.txt",
		MediaType:   "text/plain",
		Discipline:  model.DisciplineProcess,
		ContentHash: hash,
	}}

	job, err := c.Ingest(context.Background(), archive, documents)
	require.NoError(t, err)
	assert.Equal(t, model.JobPhaseDone, job.Phase)
	assert.Equal(t, 1, job.Counters.DocumentsIndexed)
	assert.Equal(t, 0, job.Counters.DocumentsFailed)

	loaded, err := c.JobStatus(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobPhaseDone, loaded.Phase)
}

func TestIngestSkipsReuploadOfSameArchiveContentHash(t *testing.T) {
	objects := objectstore.NewMemory()
	hash, err := objects.Put(context.Background(), "docs/spec.txt", []byte("Общие положения о насосном оборудовании."))
	require.NoError(t, err)

	registry := parse.NewRegistry()
	registry.Register(parse.NewTextParser())

	vectors := map[string]index.VectorStore{"ae_text_m3": index.NewMemoryVectorStore("ae_text_m3", 8)}
	lexical := index.NewMemoryLexical()
	embedders := map[string]embed.Embedder{"ae_text_m3": embed.NewDeterministic("ae_text_m3", 8, true, 1)}
	archives := ingest.NewMemoryArchiveStore()

	c := New(Deps{
		Objects:   objects,
		Parsers:   registry,
		Vectors:   vectors,
		Lexical:   lexical,
		Embedders: embedders,
		Reranker:  rerank.Noop{},
		JobStore:  ingest.NewMemoryJobStore(),
		Archives:  archives,
		Workers:   1,
	})

	archive := model.Archive{
		ID:          "archive-1",
		ContentHash: "archive-hash-1",
		Manifest: model.Manifest{
			Confidentiality:   model.ConfidentialityInternal,
			DefaultDiscipline: model.DisciplineProcess,
		},
	}
	documents := []IngestDocument{{LogicalPath: "docs/spec.txt", MediaType: "text/plain", ContentHash: hash}}

	first, err := c.Ingest(context.Background(), archive, documents)
	require.NoError(t, err)
	assert.Equal(t, model.JobPhaseDone, first.Phase)
	assert.Equal(t, 1, first.Counters.DocumentsIndexed)

	reupload := model.Archive{
		ID:          "archive-2",
		ContentHash: "archive-hash-1",
		Manifest:    archive.Manifest,
	}
	second, err := c.Ingest(context.Background(), reupload, documents)
	require.NoError(t, err)
	assert.Equal(t, model.JobPhaseDone, second.Phase)
	assert.Equal(t, 0, second.Counters.DocumentsIndexed, "re-upload of an unchanged archive must not re-index")
}

func TestIngestRejectsInvalidManifest(t *testing.T) {
	c := newTestCore(t, map[string]index.VectorStore{}, index.NewMemoryLexical())
	_, err := c.Ingest(context.Background(), model.Archive{}, nil)
	require.Error(t, err)
	assert.True(t, correrr.IsInvalidInput(err))
}
