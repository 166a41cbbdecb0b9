package document

import (
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"sort"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFParser handles PDF files. It reads positioned text fragments so that
// per-line font sizes survive into the document, and can fall back to
// pdftotext if the Go library cannot read the file.
type PDFParser struct {
	FallbackPdftotext bool
}

func (p *PDFParser) Parse(r io.Reader, filename string) (*Document, error) {
	// ledongthuc/pdf requires a ReadSeeker+size, so we write to a temp file.
	tmp, err := os.CreateTemp("", "docqa-pdf-*.pdf")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	doc := New(titleFromFilename(filename), filename)

	pages, err := extractPDFPages(tmpPath)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotextPages(tmpPath)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: extract pdf text: %v", ErrUnreadable, err)
	}
	doc.Pages = pages

	if doc.Empty() {
		return nil, fmt.Errorf("%w: pdf contains no extractable text", ErrUnreadable)
	}
	return doc, nil
}

func extractPDFPages(path string) ([]Page, error) {
	f, reader, err := pdflib.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var pages []Page
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		pg := reader.Page(i)
		if pg.V.IsNull() {
			continue
		}
		lines, err := pdfPageLines(pg)
		if err != nil {
			// A single bad page is skipped, not fatal.
			continue
		}
		if len(lines) == 0 {
			continue
		}
		pages = append(pages, Page{Number: i, Lines: lines})
	}
	return pages, nil
}

// pdfPageLines groups a page's positioned text fragments into lines by their
// vertical position and averages each line's font size. ledongthuc/pdf panics
// on some malformed content streams, so the panic is converted to an error.
func pdfPageLines(pg pdflib.Page) (lines []Line, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	content := pg.Content()

	// PDF y grows upward; rounding collapses fragments of one visual line.
	byRow := make(map[int][]pdflib.Text)
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		row := int(math.Round(t.Y))
		byRow[row] = append(byRow[row], t)
	}

	rows := make([]int, 0, len(byRow))
	for row := range byRow {
		rows = append(rows, row)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(rows)))

	page := Page{}
	for _, row := range rows {
		frags := byRow[row]
		sort.Slice(frags, func(i, j int) bool { return frags[i].X < frags[j].X })

		var sb strings.Builder
		var sizeSum float64
		var sizeCount int
		prevEnd := math.Inf(-1)
		for _, frag := range frags {
			// Re-insert the space the extractor dropped between words.
			if sb.Len() > 0 && frag.X-prevEnd > 1 && !strings.HasSuffix(sb.String(), " ") {
				sb.WriteString(" ")
			}
			sb.WriteString(frag.S)
			prevEnd = frag.X + frag.W
			if frag.FontSize > 0 {
				sizeSum += frag.FontSize
				sizeCount++
			}
		}

		size := 0.0
		if sizeCount > 0 {
			size = sizeSum / float64(sizeCount)
		}
		appendLine(&page, sb.String(), size)
	}
	return page.Lines, nil
}

// extractPdftotextPages shells out to pdftotext. The result carries no font
// sizes, which routes header detection to the pattern strategy downstream.
func extractPdftotextPages(path string) ([]Page, error) {
	cmd := exec.Command("pdftotext", "-layout", path, "-")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}

	var pages []Page
	for i, chunk := range strings.Split(string(out), "\f") {
		page := Page{Number: i + 1}
		for _, line := range strings.Split(chunk, "\n") {
			appendLine(&page, line, 0)
		}
		if len(page.Lines) > 0 {
			pages = append(pages, page)
		}
	}
	return pages, nil
}
