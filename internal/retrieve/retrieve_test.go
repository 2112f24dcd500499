package retrieve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/index"
	"aedocs/internal/model"
	"aedocs/internal/query/intent"
	"aedocs/internal/query/rewrite"
)

func TestRetrieverFusesAndDeduplicates(t *testing.T) {
	vec := index.NewMemoryVectorStore("ae_text_m3", 2)
	lex := index.NewMemoryLexical()
	ctx := context.Background()

	payload := model.CommonPayload{ChunkID: "c1", DocNo: "21.201-2011", Section: "4", Clause: "4.2", Content: "центробежный насос расход"}
	require.NoError(t, vec.UpsertBatch(ctx, []model.VectorPoint{
		{ID: "c1", Vector: []float32{1, 0}, Payload: payload},
	}))
	require.NoError(t, lex.IndexBatch(ctx, []model.Chunk{model.NewTextChunk(model.TextChunk{CommonPayload: payload})}))

	embed := func(collection string) (func(context.Context, string) ([]float32, error), error) {
		return func(ctx context.Context, text string) ([]float32, error) {
			return []float32{1, 0}, nil
		}, nil
	}

	r := New(map[string]index.VectorStore{"ae_text_m3": vec}, lex, embed)

	rewrites := []rewrite.Candidate{{Text: "насос расход", Confidence: 1.0, Source: "original"}}
	candidates, err := r.Run(ctx, rewrites, nil, Options{Collections: []string{"ae_text_m3"}})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, SearchHybrid, candidates[0].SearchType)
	assert.Greater(t, candidates[0].Fused, 0.0)
}

func TestRetrieverDirectLookupScoresOne(t *testing.T) {
	lex := index.NewMemoryLexical()
	ctx := context.Background()
	payload := model.CommonPayload{ChunkID: "c1", DocFamily: "ГОСТ", DocNo: "21.201", Content: "текст стандарта"}
	require.NoError(t, lex.IndexBatch(ctx, []model.Chunk{model.NewTextChunk(model.TextChunk{CommonPayload: payload})}))

	r := New(nil, lex, nil)
	refs := []intent.DocReference{{Family: "ГОСТ", Number: "21.201", Year: 2011}}
	candidates, err := r.Run(ctx, nil, refs, Options{})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, SearchReference, candidates[0].SearchType)
	assert.Equal(t, 1.0, candidates[0].Fused)
}

func TestRetrieverRespectsRerankTopKCap(t *testing.T) {
	vec := index.NewMemoryVectorStore("ae_text_m3", 2)
	ctx := context.Background()
	for i := 0; i < RerankTopK+10; i++ {
		id := "c" + string(rune('a'+i%26)) + string(rune('0'+i%10))
		require.NoError(t, vec.UpsertBatch(ctx, []model.VectorPoint{
			{ID: id, Vector: []float32{1, 0}, Payload: model.CommonPayload{ChunkID: id, DocNo: id}},
		}))
	}
	embed := func(collection string) (func(context.Context, string) ([]float32, error), error) {
		return func(ctx context.Context, text string) ([]float32, error) { return []float32{1, 0}, nil }, nil
	}
	r := New(map[string]index.VectorStore{"ae_text_m3": vec}, index.NewMemoryLexical(), embed)
	rewrites := []rewrite.Candidate{{Text: "query", Confidence: 1.0}}
	candidates, err := r.Run(ctx, rewrites, nil, Options{Collections: []string{"ae_text_m3"}, DenseTopN: RerankTopK + 10})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(candidates), RerankTopK)
}
