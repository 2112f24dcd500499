package parse

import (
	"context"
)

// XLSXParser turns each sheet into many table blocks, one per row.
// Trailing blank rows are elided; a blank row between data rows still
// yields a block. Numeric cells preserve their raw
// value rather than their display string.
type XLSXParser struct {
	Reader SpreadsheetReader
}

func NewXLSXParser(reader SpreadsheetReader) XLSXParser { return XLSXParser{Reader: reader} }

func (XLSXParser) MediaTypes() []string {
	return []string{
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"application/vnd.ms-excel",
	}
}

func (p XLSXParser) Parse(ctx context.Context, data []byte) (ParseResult, error) {
	sheets, err := p.Reader.ReadSheets(ctx, data)
	if err != nil {
		return ParseResult{}, err
	}

	var blocks []Block
	for _, sheet := range sheets {
		rows := trimTrailingBlankRows(sheet.Rows)
		for _, row := range rows {
			grid := make([][]string, 1)
			grid[0] = make([]string, len(row))
			for i, cell := range row {
				if cell.IsNumber {
					grid[0][i] = cell.RawValue
				} else {
					grid[0][i] = cell.Display
				}
			}
			blocks = append(blocks, Block{Kind: BlockTable, Cells: grid})
		}
	}
	return ParseResult{Blocks: blocks}, nil
}

func trimTrailingBlankRows(rows [][]Cell) [][]Cell {
	end := len(rows)
	for end > 0 && rowIsBlank(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func rowIsBlank(row []Cell) bool {
	for _, c := range row {
		if c.Display != "" || c.RawValue != "" {
			return false
		}
	}
	return true
}
