// Package document models paginated source documents and parses them from
// common file formats. A parsed document is a sequence of pages, each holding
// the page's non-blank text lines with an optional per-line font size. Font
// sizes are real for PDF sources and synthesized from heading levels for
// Markdown, HTML and DOCX; plain text carries none.
package document

import (
	"errors"
	"strings"

	"github.com/google/uuid"
)

// ErrUnreadable reports a source that cannot be parsed at all. It is fatal:
// there is no fallback for a document whose bytes yield no text.
var ErrUnreadable = errors.New("document unreadable")

// Line is a single text line with optional font metadata.
// A FontSize of 0 means the source format carries no size information.
type Line struct {
	Text     string
	FontSize float64
}

// Page is one page of a document. Formats without physical pages
// (Markdown, HTML, DOCX, plain text) parse into a single page.
type Page struct {
	Number int
	Lines  []Line
}

// Document is a parsed source document.
type Document struct {
	ID       string
	Title    string
	Filename string
	Pages    []Page
}

// New creates an empty document with a fresh ID.
func New(title, filename string) *Document {
	return &Document{
		ID:       uuid.NewString(),
		Title:    title,
		Filename: filename,
	}
}

// Text returns all lines of all pages joined with newlines, in document order.
func (d *Document) Text() string {
	var sb strings.Builder
	for _, page := range d.Pages {
		for _, line := range page.Lines {
			if sb.Len() > 0 {
				sb.WriteString("\n")
			}
			sb.WriteString(line.Text)
		}
	}
	return sb.String()
}

// LineCount returns the total number of lines across all pages.
func (d *Document) LineCount() int {
	n := 0
	for _, page := range d.Pages {
		n += len(page.Lines)
	}
	return n
}

// Empty reports whether the document holds no text at all.
func (d *Document) Empty() bool {
	for _, page := range d.Pages {
		for _, line := range page.Lines {
			if strings.TrimSpace(line.Text) != "" {
				return false
			}
		}
	}
	return true
}

// appendLine adds a non-blank line to the given page. Lines are stored fully
// trimmed and blank lines are dropped, so every stored line equals the text a
// header detector would report for it and span reconstruction stays exact.
func appendLine(p *Page, text string, fontSize float64) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p.Lines = append(p.Lines, Line{Text: text, FontSize: fontSize})
}

// titleFromFilename strips a known extension and path-ish noise from a
// filename to produce a default title.
func titleFromFilename(filename string) string {
	name := filename
	if i := strings.LastIndexAny(name, "/\\"); i >= 0 {
		name = name[i+1:]
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return name
}
