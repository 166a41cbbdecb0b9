package chunking

import (
	"strings"

	"github.com/tutorstack/docqa/pkg/document"
)

// Segment slices the document into one span per header: span i holds exactly
// the lines after header i and before header i+1, walking pages in order.
// Text preceding the first header becomes a leading span with StartHeader -1.
// Headers must be in document order, as produced by Extract.
//
// The output is gapless and non-overlapping: every document line lands in
// exactly one span or is a header line, so concatenating header texts and
// span texts in order reproduces the document text exactly. Adjacent headers
// produce a legal empty-text span.
func Segment(doc *document.Document, headers []Header) []Span {
	if len(headers) == 0 {
		return nil
	}
	samples := flatten(doc)

	var spans []Span
	if headers[0].Index > 0 {
		spans = append(spans, buildSpan(samples[:headers[0].Index], -1, 0, headers[0].Page))
	}
	for i := range headers {
		start := headers[i].Index + 1
		end := len(samples)
		endHeader := -1
		if i+1 < len(headers) {
			end = headers[i+1].Index
			endHeader = i + 1
		}
		spans = append(spans, buildSpan(samples[start:end], i, endHeader, headers[i].Page))
	}
	return spans
}

func buildSpan(lines []FontSample, startHeader, endHeader, emptyPage int) Span {
	if len(lines) == 0 {
		return Span{
			StartHeader: startHeader,
			EndHeader:   endHeader,
			PageStart:   emptyPage,
			PageEnd:     emptyPage,
		}
	}
	texts := make([]string, len(lines))
	for i, l := range lines {
		texts[i] = l.Text
	}
	return Span{
		StartHeader: startHeader,
		EndHeader:   endHeader,
		PageStart:   lines[0].Page,
		PageEnd:     lines[len(lines)-1].Page,
		Text:        strings.Join(texts, "\n"),
	}
}
