package document

import (
	"bufio"
	"fmt"
	"io"
)

// TextParser handles plain text files. Lines carry no font size, so header
// detection downstream falls back to pattern matching.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*Document, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	doc := New(titleFromFilename(filename), filename)
	page := Page{Number: 1}

	for scanner.Scan() {
		appendLine(&page, scanner.Text(), 0)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: read text: %v", ErrUnreadable, err)
	}

	if len(page.Lines) > 0 {
		doc.Pages = append(doc.Pages, page)
	}
	if doc.Empty() {
		return nil, fmt.Errorf("%w: file contains no text", ErrUnreadable)
	}
	return doc, nil
}
