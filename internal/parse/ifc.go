package parse

import "context"

// IFCParser enumerates entity instances; for each entity with a name and
// GUID it emits the entity's flattened property-set map.
type IFCParser struct {
	Reader IFCReader
}

func NewIFCParser(reader IFCReader) IFCParser { return IFCParser{Reader: reader} }

func (IFCParser) MediaTypes() []string { return []string{"application/x-step", "model/ifc"} }

func (p IFCParser) Parse(ctx context.Context, data []byte) (ParseResult, error) {
	entities, err := p.Reader.ReadEntities(ctx, data)
	if err != nil {
		return ParseResult{}, err
	}

	var blocks []Block
	for _, e := range entities {
		if e.Name == "" || e.GUID == "" {
			continue
		}
		blocks = append(blocks, Block{
			Kind:       BlockIFCEntity,
			EntityType: e.Type,
			EntityGUID: e.GUID,
			EntityName: e.Name,
			Properties: e.Properties,
		})
	}
	return ParseResult{Blocks: blocks}, nil
}
