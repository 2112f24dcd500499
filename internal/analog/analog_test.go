package analog

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/index"
	"aedocs/internal/model"
	"aedocs/internal/retrieve"
	"aedocs/internal/retrieve/rerank"
)

func TestSearchRanksPumpAtRankOne(t *testing.T) {
	ctx := context.Background()
	vec := index.NewMemoryVectorStore("ae_text_m3", 2)
	lex := index.NewMemoryLexical()

	payload := model.CommonPayload{
		ChunkID:    "pump-1",
		DocNo:      "pump-1",
		Discipline: model.DisciplineProcess,
		Content:    "Центробежный насос для перекачки аммиака. Производительность 1000 м3/ч, напор 50 м.",
		Numeric: map[string]model.NumericFact{
			"flow_rate": {Value: decimal.NewFromInt(1000), Unit: "m3/h"},
			"head":      {Value: decimal.NewFromInt(50), Unit: "m"},
		},
	}
	require.NoError(t, vec.UpsertBatch(ctx, []model.VectorPoint{{ID: "pump-1", Vector: []float32{1, 0}, Payload: payload}}))
	require.NoError(t, lex.IndexBatch(ctx, []model.Chunk{model.NewTextChunk(model.TextChunk{CommonPayload: payload})}))

	embed := func(string) (func(context.Context, string) ([]float32, error), error) {
		return func(context.Context, string) ([]float32, error) { return []float32{1, 0}, nil }, nil
	}
	retriever := retrieve.New(map[string]index.VectorStore{"ae_text_m3": vec}, lex, embed)
	searcher := New(retriever, rerank.Noop{})

	hits, err := searcher.Search(ctx, Request{
		EquipmentType: "центробежный насос",
		NumericParams: map[string]Param{
			"flow_rate": {Value: decimal.NewFromInt(1000), Unit: "m3/h"},
			"head":      {Value: decimal.NewFromInt(50), Unit: "m"},
		},
		Filters: map[string]string{"discipline": "process"},
		Limit:   5,
	})
	require.NoError(t, err)
	require.NotEmpty(t, hits)
	assert.Equal(t, "pump-1", hits[0].ChunkID)
	assert.GreaterOrEqual(t, hits[0].AnalogScore, 0.5)
}

func TestParamSimilarityIgnoresUnmatchedUnits(t *testing.T) {
	query := map[string]model.NumericFact{"flow_rate": {Value: decimal.NewFromInt(1000), Unit: "m3/h"}}
	candidate := map[string]model.NumericFact{"flow_rate": {Value: decimal.NewFromInt(1000), Unit: "bar"}}
	sim := paramSimilarity(query, candidate, decimal.NewFromFloat(0.2))
	assert.Equal(t, 0.0, sim)
}

func TestSuppressDropsNonEquipmentLowScoreContent(t *testing.T) {
	assert.True(t, suppress("случайный текст без ключевых слов", 0.1))
	assert.False(t, suppress("случайный текст", 0.5))
	assert.False(t, suppress("насос для воды", 0.1))
}
