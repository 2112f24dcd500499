package model

import "github.com/shopspring/decimal"

// ChunkType discriminates the Chunk tagged union.
type ChunkType string

const (
	ChunkTypeText    ChunkType = "text"
	ChunkTypeTable   ChunkType = "table"
	ChunkTypeDrawing ChunkType = "drawing"
	ChunkTypeIFC     ChunkType = "ifc"
)

// Collection returns the canonical vector collection name a chunk of this
// type is upserted into (spec.md §3 "Collection").
func (t ChunkType) Collection() string {
	switch t {
	case ChunkTypeText:
		return "ae_text_m3"
	case ChunkTypeTable:
		return "ae_tables"
	case ChunkTypeDrawing:
		return "ae_drawings_clip"
	case ChunkTypeIFC:
		return "ae_ifc"
	default:
		return ""
	}
}

// ExtractionMethod identifies which provider produced a block/chunk's text.
type ExtractionMethod string

const (
	MethodNativeText ExtractionMethod = "native-text"
	MethodOCR        ExtractionMethod = "ocr"
	MethodEmpty      ExtractionMethod = "empty"
)

// NumericUnit is a canonical-unit symbol, e.g. "m3/h", "m", "bar", "mm".
type NumericUnit string

// NumericFact is one canonical quantity on a chunk: a rational value plus the
// canonical unit it was normalised into. This map is the substrate for
// analog search (spec.md §4.12).
type NumericFact struct {
	Value decimal.Decimal
	Unit  NumericUnit
}

// CommonPayload is carried by every chunk variant.
type CommonPayload struct {
	ChunkID         string
	ChunkType       ChunkType
	ProjectID       string
	ObjectID        string
	Discipline      Discipline
	DocNo           string
	Revision        string
	Language        string
	SourcePath      string
	SourceHash      string
	IssuedAt        string // RFC3339; kept as string to round-trip through payload maps untouched
	Vendor          string
	Confidentiality Confidentiality
	Tags            []string
	Numeric         map[string]NumericFact
	Permissions     []string
	Content         string

	// Advisory fields produced by the chunker (spec.md §4.4); not used by
	// retrieval scoring.
	Importance float64
	Keywords   []string

	// IsCurrent/Status/EffectiveFrom/CanceledBy/SupersededBy back the
	// "relevance" intent answer shape (spec.md §4.11) for NTD-style corpora;
	// empty when not applicable to the source document.
	IsCurrent     bool
	Status        string
	EffectiveFrom string
	CanceledBy    string
	SupersededBy  string

	DocFamily string
	DocTitle  string
	Section   string
	Clause    string
	Page      int
}

// TextChunk is a prose/paragraph chunk.
type TextChunk struct {
	CommonPayload
	TokenCount  int
	Section     string
	OverlapSize int
}

// TableChunk is a single table row; rows are never merged across rows.
type TableChunk struct {
	CommonPayload
	Cells     []string
	RowHash   string
	SheetName string
}

// DrawingChunk is a caption/OCR region from a drawing sheet.
type DrawingChunk struct {
	CommonPayload
	PreviewRef string
}

// IFCChunk aggregates one entity type from an IFC model (spec.md §4.4:
// one chunk per entity type, carrying the entity count and a single
// representative's properties).
type IFCChunk struct {
	CommonPayload
	EntityType        string
	EntityCount       int
	RepresentativeGUID string
	Properties        map[string]string
}

// Chunk is the closed tagged union retrieval and indexing dispatch on.
// Exactly one of the typed fields is non-nil, matching ChunkType.
type Chunk struct {
	Type    ChunkType
	Text    *TextChunk
	Table   *TableChunk
	Drawing *DrawingChunk
	IFC     *IFCChunk
}

// Payload returns the common payload regardless of variant.
func (c Chunk) Payload() CommonPayload {
	switch c.Type {
	case ChunkTypeText:
		return c.Text.CommonPayload
	case ChunkTypeTable:
		return c.Table.CommonPayload
	case ChunkTypeDrawing:
		return c.Drawing.CommonPayload
	case ChunkTypeIFC:
		return c.IFC.CommonPayload
	default:
		return CommonPayload{}
	}
}

// ID returns the chunk's stable identifier.
func (c Chunk) ID() string { return c.Payload().ChunkID }

// Collection returns the dense collection this chunk belongs to.
func (c Chunk) Collection() string { return c.Type.Collection() }

// NewTextChunk wraps a TextChunk into the Chunk union.
func NewTextChunk(t TextChunk) Chunk {
	t.ChunkType = ChunkTypeText
	return Chunk{Type: ChunkTypeText, Text: &t}
}

// NewTableChunk wraps a TableChunk into the Chunk union.
func NewTableChunk(t TableChunk) Chunk {
	t.ChunkType = ChunkTypeTable
	return Chunk{Type: ChunkTypeTable, Table: &t}
}

// NewDrawingChunk wraps a DrawingChunk into the Chunk union.
func NewDrawingChunk(t DrawingChunk) Chunk {
	t.ChunkType = ChunkTypeDrawing
	return Chunk{Type: ChunkTypeDrawing, Drawing: &t}
}

// NewIFCChunk wraps an IFCChunk into the Chunk union.
func NewIFCChunk(t IFCChunk) Chunk {
	t.ChunkType = ChunkTypeIFC
	return Chunk{Type: ChunkTypeIFC, IFC: &t}
}
