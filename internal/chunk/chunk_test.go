package chunk

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/model"
	"aedocs/internal/normalize"
	"aedocs/internal/parse"
)

func TestChunkIDDeterministic(t *testing.T) {
	a := ChunkID("hash1", 0)
	b := ChunkID("hash1", 0)
	c := ChunkID("hash1", 1)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)
}

func TestChunkTextRespectsOverlapAndBounds(t *testing.T) {
	doc := DocumentContext{ProjectID: "P1", ObjectID: "O1", SourceHash: "dochash"}
	longPara := strings.Repeat("насос работает в штатном режиме без отклонений. ", 40)
	blocks := []normalize.Block{
		{Text: longPara, Lang: normalize.LangRU},
		{Text: longPara, Lang: normalize.LangRU},
	}
	chunks := ChunkText(doc, blocks, nil)
	require.NotEmpty(t, chunks)
	for _, c := range chunks {
		require.Equal(t, model.ChunkTypeText, c.Type)
		assert.LessOrEqual(t, c.Text.TokenCount, MaxTokens)
	}
	if len(chunks) > 1 {
		assert.Greater(t, chunks[1].Text.OverlapSize, 0)
	}
}

func TestChunkTextMergesUndersizedChunkAcrossStructuralBoundary(t *testing.T) {
	doc := DocumentContext{ProjectID: "P1", ObjectID: "O1", SourceHash: "dochash"}
	shortPara := "Общие положения."
	heading := "1. ТРЕБОВАНИЯ К НАСОСНОМУ ОБОРУДОВАНИЮ"
	body := strings.Repeat("насос работает в штатном режиме без отклонений. ", 40)
	blocks := []normalize.Block{
		{Text: shortPara, Lang: normalize.LangRU},
		{Text: heading, Lang: normalize.LangRU},
		{Text: body, Lang: normalize.LangRU},
	}

	chunks := ChunkText(doc, blocks, nil)
	require.NotEmpty(t, chunks)
	for i, c := range chunks {
		if i == len(chunks)-1 {
			continue
		}
		assert.GreaterOrEqual(t, c.Text.TokenCount, MinTokens, "non-terminal chunk %d under MinTokens", i)
	}
	assert.Contains(t, chunks[0].Text.Content, shortPara)
	assert.Contains(t, chunks[0].Text.Content, heading)
}

func TestChunkTableOneRowPerChunk(t *testing.T) {
	doc := DocumentContext{SourceHash: "dochash"}
	blocks := []parse.Block{{
		Kind:  parse.BlockTable,
		Cells: [][]string{{"flow_rate", "1000"}, {"head", "50"}},
	}}
	chunks, next := ChunkTable(doc, 0, blocks)
	require.Len(t, chunks, 2)
	assert.Equal(t, 2, next)
	assert.NotEqual(t, chunks[0].Table.RowHash, chunks[1].Table.RowHash)
}

func TestChunkIFCGroupsByEntityType(t *testing.T) {
	doc := DocumentContext{SourceHash: "dochash"}
	blocks := []parse.Block{
		{Kind: parse.BlockIFCEntity, EntityType: "IfcPump", EntityGUID: "g1", EntityName: "P-01"},
		{Kind: parse.BlockIFCEntity, EntityType: "IfcPump", EntityGUID: "g2", EntityName: "P-02"},
		{Kind: parse.BlockIFCEntity, EntityType: "IfcValve", EntityGUID: "g3", EntityName: "V-01"},
	}
	chunks, _ := ChunkIFC(doc, 0, blocks)
	require.Len(t, chunks, 2)
	assert.Equal(t, 2, chunks[0].IFC.EntityCount)
	assert.Equal(t, 1, chunks[1].IFC.EntityCount)
}

func TestTopKeywordsFiltersStopwords(t *testing.T) {
	kws := topKeywords("the pump and the compressor are centrifugal centrifugal pump", 3)
	assert.Contains(t, kws, "pump")
	assert.Contains(t, kws, "centrifugal")
	assert.NotContains(t, kws, "the")
}
