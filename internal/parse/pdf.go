package parse

import (
	"context"
	"strings"

	"aedocs/internal/model"
)

// MinNativeChars is the character-count threshold below which a page's
// native extraction is considered empty and OCR is attempted instead.
const MinNativeChars = 20

// PDFParser tries native text extraction first, falling back to per-page
// OCR when a page's native text is empty or below MinNativeChars.
type PDFParser struct {
	Native NativeTextExtractor
	OCR    OCRProvider
}

func NewPDFParser(native NativeTextExtractor, ocr OCRProvider) PDFParser {
	return PDFParser{Native: native, OCR: ocr}
}

func (PDFParser) MediaTypes() []string { return []string{"application/pdf"} }

func (p PDFParser) Parse(ctx context.Context, data []byte) (ParseResult, error) {
	pages, err := p.Native.ExtractText(ctx, data)
	if err != nil {
		return ParseResult{}, err
	}

	var blocks []Block
	var title string
	for _, pg := range pages {
		text := strings.Join(pg.Lines, "\n")
		method := model.MethodNativeText
		if len(strings.TrimSpace(text)) < MinNativeChars {
			ocrText, ocrErr := p.OCR.RecognizePage(ctx, data, pg.Page)
			if ocrErr != nil {
				return ParseResult{}, ocrErr
			}
			text = ocrText
			method = model.MethodOCR
			if strings.TrimSpace(text) == "" {
				method = model.MethodEmpty
			}
		}
		if title == "" {
			title = firstNonEmptyLine(text)
		}
		blocks = append(blocks, Block{Kind: BlockParagraph, Text: text, Method: method, Page: pg.Page})
		blocks = append(blocks, Block{Kind: BlockPageBreak, Method: method, Page: pg.Page})
	}
	return ParseResult{Blocks: blocks, TitleGuess: title}, nil
}
