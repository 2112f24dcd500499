package parse

import "context"

// DXFParser enumerates text and attribute entities; no geometry is
// extracted.
type DXFParser struct {
	Reader DXFReader
}

func NewDXFParser(reader DXFReader) DXFParser { return DXFParser{Reader: reader} }

func (DXFParser) MediaTypes() []string { return []string{"image/vnd.dxf", "application/dxf"} }

func (p DXFParser) Parse(ctx context.Context, data []byte) (ParseResult, error) {
	texts, err := p.Reader.ReadTextEntities(ctx, data)
	if err != nil {
		return ParseResult{}, err
	}

	blocks := make([]Block, 0, len(texts))
	for _, t := range texts {
		if t.Value == "" {
			continue
		}
		blocks = append(blocks, Block{Kind: BlockDrawing, Text: t.Value})
	}
	return ParseResult{Blocks: blocks}, nil
}
