package parse

import "context"

// NativeTextExtractor pulls text runs out of a structured document (PDF,
// DOCX) without rasterising it. A production build wires an out-of-scope
// bytes-level library (e.g. pdfium, unidoc); tests use a deterministic fake.
type NativeTextExtractor interface {
	ExtractText(ctx context.Context, data []byte) ([]PageText, error)
}

// PageText is one page/section of native text.
type PageText struct {
	Page  int
	Lines []string
}

// OCRProvider rasterises a page image and returns recognised text. Used as
// the PDF fallback when native extraction is empty or below threshold.
type OCRProvider interface {
	RecognizePage(ctx context.Context, data []byte, page int) (string, error)
}

// SpreadsheetReader reads sheet/row/cell structure out of XLSX/XLS bytes.
type SpreadsheetReader interface {
	ReadSheets(ctx context.Context, data []byte) ([]Sheet, error)
}

// Sheet is one worksheet's row-major cell grid; numeric cells carry their
// raw value (not a display string) in RawValue.
type Sheet struct {
	Name string
	Rows [][]Cell
}

// Cell is a single spreadsheet cell.
type Cell struct {
	Display  string
	RawValue string
	IsNumber bool
}

// IFCReader walks entity instances and their property sets out of an IFC
// STEP file.
type IFCReader interface {
	ReadEntities(ctx context.Context, data []byte) ([]IFCEntity, error)
}

// IFCEntity is one named, GUID-identified IFC entity instance.
type IFCEntity struct {
	Type       string
	GUID       string
	Name       string
	Properties map[string]string
}

// DXFReader enumerates text and attribute entities in a DXF drawing; no
// geometry is extracted.
type DXFReader interface {
	ReadTextEntities(ctx context.Context, data []byte) ([]DXFText, error)
}

// DXFText is one TEXT/ATTRIB entity.
type DXFText struct {
	Value string
	Layer string
}
