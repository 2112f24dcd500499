// Package parse implements C2: one handler per media type, each producing
// a ParseResult of typed raw blocks from document bytes.
package parse

import (
	"context"

	"aedocs/internal/model"
)

// BlockKind discriminates a raw extracted block.
type BlockKind string

const (
	BlockParagraph  BlockKind = "paragraph"
	BlockPageBreak  BlockKind = "page_break"
	BlockTable      BlockKind = "table"
	BlockDrawing    BlockKind = "drawing_region"
	BlockIFCEntity  BlockKind = "ifc_entity"
)

// Block is one raw unit a parser emits, ahead of normalisation/chunking.
type Block struct {
	Kind   BlockKind
	Text   string          // paragraph text, cell text (joined), or OCR string
	Cells  [][]string      // table: 2-D cell grid, row-major
	Method model.ExtractionMethod
	Page   int

	// IFC-specific
	EntityType string
	EntityGUID string
	EntityName string
	Properties map[string]string
}

// ParseResult is the ordered sequence of blocks a handler produced for one
// document, plus a title/doc-type guess the normaliser/chunker may use when
// the archive manifest or logical path leave them ambiguous.
type ParseResult struct {
	Blocks       []Block
	TitleGuess   string
	DocTypeGuess model.DocType
}

// Parser extracts typed blocks from one media type's bytes.
type Parser interface {
	// MediaTypes lists the MIME types / extensions this parser handles.
	MediaTypes() []string
	Parse(ctx context.Context, data []byte) (ParseResult, error)
}

// Registry dispatches to the Parser registered for a document's media type.
type Registry struct {
	byMediaType map[string]Parser
}

// NewRegistry builds an empty registry; call Register for each parser.
func NewRegistry() *Registry {
	return &Registry{byMediaType: make(map[string]Parser)}
}

// Register adds parser under every media type it declares, overwriting any
// prior registration for the same type.
func (r *Registry) Register(parser Parser) {
	for _, mt := range parser.MediaTypes() {
		r.byMediaType[mt] = parser
	}
}

// Lookup returns the parser registered for mediaType, if any.
func (r *Registry) Lookup(mediaType string) (Parser, bool) {
	p, ok := r.byMediaType[mediaType]
	return p, ok
}

// Parse dispatches data of the given media type to its registered parser.
// Returns ok=false if no parser is registered; callers treat this as a
// document-level failure per spec (partial success, archive continues).
func (r *Registry) Parse(ctx context.Context, mediaType string, data []byte) (ParseResult, bool, error) {
	p, ok := r.byMediaType[mediaType]
	if !ok {
		return ParseResult{}, false, nil
	}
	res, err := p.Parse(ctx, data)
	return res, true, err
}
