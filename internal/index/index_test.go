package index

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/correrr"
	"aedocs/internal/model"
)

func sampleTextChunk(id, content string) model.Chunk {
	return model.NewTextChunk(model.TextChunk{
		CommonPayload: model.CommonPayload{
			ChunkID:   id,
			ProjectID: "P1",
			ObjectID:  "O1",
			Content:   content,
			Numeric: map[string]model.NumericFact{
				"flow_rate": {Value: decimal.NewFromInt(1000), Unit: "m3/h"},
			},
		},
	})
}

func TestWriterWritesVectorThenLexical(t *testing.T) {
	vec := NewMemoryVectorStore("ae_text_m3", 4)
	lex := NewMemoryLexical()
	embedFn := func(collection string) (func(context.Context, []string) ([][]float32, error), error) {
		return func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 0, 0, 0}
			}
			return out, nil
		}, nil
	}
	w := NewWriter(map[string]VectorStore{"ae_text_m3": vec}, lex, embedFn)

	chunks := []model.Chunk{sampleTextChunk("c1", "centrifugal pump flow rate 1000")}
	require.NoError(t, w.WriteBatch(context.Background(), chunks))

	vresults, err := vec.Search(context.Background(), []float32{1, 0, 0, 0}, 5, nil, nil)
	require.NoError(t, err)
	require.Len(t, vresults, 1)
	assert.Equal(t, "c1", vresults[0].ID)

	lresults, err := lex.Search(context.Background(), "pump", 5, nil)
	require.NoError(t, err)
	require.Len(t, lresults, 1)
}

func TestMemoryVectorStoreRejectsHashCollision(t *testing.T) {
	vec := NewMemoryVectorStore("ae_text_m3", 4)
	ctx := context.Background()

	p1 := model.VectorPoint{ID: "c1", Vector: []float32{1, 0, 0, 0}, Payload: model.CommonPayload{Content: "original"}}
	require.NoError(t, vec.UpsertBatch(ctx, []model.VectorPoint{p1}))

	p2 := model.VectorPoint{ID: "c1", Vector: []float32{0, 1, 0, 0}, Payload: model.CommonPayload{Content: "different"}}
	err := vec.UpsertBatch(ctx, []model.VectorPoint{p2})
	assert.True(t, correrr.IsIntegrity(err))
}

func TestMemoryVectorStoreRangeFilter(t *testing.T) {
	vec := NewMemoryVectorStore("ae_text_m3", 2)
	ctx := context.Background()
	require.NoError(t, vec.UpsertBatch(ctx, []model.VectorPoint{
		{ID: "pump-1000", Vector: []float32{1, 0}, Payload: model.CommonPayload{
			Numeric: map[string]model.NumericFact{"flow_rate": {Value: decimal.NewFromInt(1000), Unit: "m3/h"}},
		}},
		{ID: "pump-5000", Vector: []float32{1, 0}, Payload: model.CommonPayload{
			Numeric: map[string]model.NumericFact{"flow_rate": {Value: decimal.NewFromInt(5000), Unit: "m3/h"}},
		}},
	}))

	results, err := vec.Search(ctx, []float32{1, 0}, 10, []RangeFilter{{Key: "flow_rate", Min: 800, Max: 1200}}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "pump-1000", results[0].ID)
}
