package parse

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aedocs/internal/model"
)

func TestTextParserStripsBOMAndFindsTitle(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Насос центробежный НЦ-100\nпроизводительность 1000 м3/ч")...)
	res, err := NewTextParser().Parse(context.Background(), data)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, model.MethodNativeText, res.Blocks[0].Method)
	assert.Equal(t, "Насос центробежный НЦ-100", res.TitleGuess)
}

type fakeNative struct {
	pages []PageText
}

func (f fakeNative) ExtractText(context.Context, []byte) ([]PageText, error) { return f.pages, nil }

type fakeOCR struct{ text string }

func (f fakeOCR) RecognizePage(context.Context, []byte, int) (string, error) { return f.text, nil }

func TestPDFParserFallsBackToOCR(t *testing.T) {
	native := fakeNative{pages: []PageText{{Page: 1, Lines: []string{""}}}}
	ocr := fakeOCR{text: "scanned page text"}
	p := NewPDFParser(native, ocr)

	res, err := p.Parse(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	require.NotEmpty(t, res.Blocks)
	assert.Equal(t, model.MethodOCR, res.Blocks[0].Method)
	assert.Equal(t, "scanned page text", res.Blocks[0].Text)
}

func TestPDFParserKeepsNativeWhenAboveThreshold(t *testing.T) {
	native := fakeNative{pages: []PageText{{Page: 1, Lines: []string{"enough native text to pass the threshold check"}}}}
	p := NewPDFParser(native, fakeOCR{text: "should not be used"})

	res, err := p.Parse(context.Background(), []byte("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, model.MethodNativeText, res.Blocks[0].Method)
}

type fakeSpreadsheet struct{ sheets []Sheet }

func (f fakeSpreadsheet) ReadSheets(context.Context, []byte) ([]Sheet, error) { return f.sheets, nil }

func TestXLSXParserElidesTrailingBlankRows(t *testing.T) {
	reader := fakeSpreadsheet{sheets: []Sheet{{
		Name: "Sheet1",
		Rows: [][]Cell{
			{{Display: "flow_rate"}, {RawValue: "1000", IsNumber: true}},
			{{Display: ""}, {Display: ""}},
		},
	}}}
	res, err := NewXLSXParser(reader).Parse(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "1000", res.Blocks[0].Cells[0][1])
}

type fakeIFC struct{ entities []IFCEntity }

func (f fakeIFC) ReadEntities(context.Context, []byte) ([]IFCEntity, error) { return f.entities, nil }

func TestIFCParserSkipsEntitiesWithoutGUID(t *testing.T) {
	reader := fakeIFC{entities: []IFCEntity{
		{Type: "IfcPump", GUID: "g1", Name: "Pump-01", Properties: map[string]string{"flow_rate": "1000"}},
		{Type: "IfcPump", GUID: "", Name: ""},
	}}
	res, err := NewIFCParser(reader).Parse(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, res.Blocks, 1)
	assert.Equal(t, "g1", res.Blocks[0].EntityGUID)
}

func TestInferDocTypeFromTitle(t *testing.T) {
	assert.Equal(t, model.DocTypePID, InferDocType("P&ID Diagram Unit 100"))
	assert.Equal(t, model.DocType(""), InferDocType("random title"))
}
