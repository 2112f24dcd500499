package parse

import (
	"strings"

	"aedocs/internal/model"
)

// doctypeMarkers maps a terminology marker found in a title/path to the
// document type it implies, supplementing path-token inference when a
// file's logical path doesn't disambiguate it (ported from the original
// pipeline's document-type heuristic).
var doctypeMarkers = []struct {
	marker  string
	docType model.DocType
}{
	{"гост", model.DocTypeReport},
	{"снип", model.DocTypeReport},
	{"сп ", model.DocTypeReport},
	{"тз", model.DocTypeSpec},
	{"р&i", model.DocTypePID},
	{"p&id", model.DocTypePID},
	{"pfd", model.DocTypePFD},
	{"bom", model.DocTypeBOM},
	{"boq", model.DocTypeBOQ},
	{"manual", model.DocTypeManual},
}

// InferDocType guesses a document type from title text when the caller has
// no stronger signal (manifest override, path token). Returns "" when no
// marker matches.
func InferDocType(title string) model.DocType {
	lower := strings.ToLower(title)
	for _, m := range doctypeMarkers {
		if strings.Contains(lower, m.marker) {
			return m.docType
		}
	}
	return ""
}
