package document

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

// CSVParser renders tabular files one line per row, with each cell prefixed
// by its column header so rows stay self-describing after chunking. Rows
// carry no font data, so structure detection runs in pattern mode.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*Document, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	// Ragged rows are common in exported spreadsheets.
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrUnreadable, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: csv has no data rows", ErrUnreadable)
	}

	headers := records[0]
	page := Page{Number: 1}
	for _, row := range records[1:] {
		var parts []string
		for j, cell := range row {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
				parts = append(parts, strings.TrimSpace(headers[j])+": "+cell)
			} else {
				parts = append(parts, cell)
			}
		}
		appendLine(&page, strings.Join(parts, ", "), 0)
	}
	if len(page.Lines) == 0 {
		return nil, fmt.Errorf("%w: csv has no cell content", ErrUnreadable)
	}

	doc := New(titleFromFilename(filename), filename)
	doc.Pages = []Page{page}
	return doc, nil
}
