package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkUnionDispatch(t *testing.T) {
	text := NewTextChunk(TextChunk{
		CommonPayload: CommonPayload{ChunkID: "c1", ProjectID: "P1"},
		TokenCount:    120,
	})
	require.Equal(t, ChunkTypeText, text.Type)
	assert.Equal(t, "c1", text.ID())
	assert.Equal(t, "ae_text_m3", text.Collection())

	table := NewTableChunk(TableChunk{
		CommonPayload: CommonPayload{ChunkID: "c2"},
		Cells:         []string{"a", "b"},
	})
	assert.Equal(t, "ae_tables", table.Collection())

	drawing := NewDrawingChunk(DrawingChunk{CommonPayload: CommonPayload{ChunkID: "c3"}})
	assert.Equal(t, "ae_drawings_clip", drawing.Collection())

	ifc := NewIFCChunk(IFCChunk{CommonPayload: CommonPayload{ChunkID: "c4"}, EntityType: "IfcPump"})
	assert.Equal(t, "ae_ifc", ifc.Collection())
}

func TestNumericFactCarriesCanonicalUnit(t *testing.T) {
	fact := NumericFact{Value: decimal.NewFromFloat(1000), Unit: "m3/h"}
	assert.True(t, fact.Value.Equal(decimal.NewFromInt(1000)))
	assert.Equal(t, NumericUnit("m3/h"), fact.Unit)
}
