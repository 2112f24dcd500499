package parse

import (
	"bytes"
	"context"
	"strings"

	"aedocs/internal/model"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// TextParser handles plain-text and Markdown sources: one text block per
// input, UTF-8, BOM stripped.
type TextParser struct{}

func NewTextParser() TextParser { return TextParser{} }

func (TextParser) MediaTypes() []string { return []string{"text/plain", "text/markdown"} }

func (TextParser) Parse(_ context.Context, data []byte) (ParseResult, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	text := string(data)
	title := firstNonEmptyLine(text)
	return ParseResult{
		Blocks: []Block{{
			Kind:   BlockParagraph,
			Text:   text,
			Method: model.MethodNativeText,
			Page:   1,
		}},
		TitleGuess: title,
	}, nil
}

// firstNonEmptyLine scans the first 10 non-empty lines for a title
// candidate, skipping page-number/date footers, matching the original
// pipeline's _extract_title heuristic.
func firstNonEmptyLine(text string) string {
	scanned := 0
	for _, line := range strings.Split(text, "\n") {
		if scanned >= 10 {
			break
		}
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		scanned++
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "страница") || strings.Contains(lower, "page") ||
			strings.Contains(lower, "дата") || strings.Contains(lower, "date") {
			continue
		}
		return trimmed
	}
	return ""
}
