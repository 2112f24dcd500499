package parse

import (
	"context"
	"strings"

	"aedocs/internal/model"
)

// DOCXParser emits every non-empty line the native extractor returns as a
// trimmed paragraph block. Table rows are not told apart from paragraphs:
// no table block is emitted.
type DOCXParser struct {
	Native NativeTextExtractor
}

func NewDOCXParser(native NativeTextExtractor) DOCXParser { return DOCXParser{Native: native} }

func (DOCXParser) MediaTypes() []string {
	return []string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}
}

func (p DOCXParser) Parse(ctx context.Context, data []byte) (ParseResult, error) {
	pages, err := p.Native.ExtractText(ctx, data)
	if err != nil {
		return ParseResult{}, err
	}

	var blocks []Block
	var title string
	for _, pg := range pages {
		for _, line := range pg.Lines {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" {
				continue
			}
			if title == "" {
				title = firstNonEmptyLine(trimmed)
			}
			blocks = append(blocks, Block{
				Kind:   BlockParagraph,
				Text:   trimmed,
				Method: model.MethodNativeText,
				Page:   pg.Page,
			})
		}
	}
	return ParseResult{Blocks: blocks, TitleGuess: title}, nil
}
