package chunking

import (
	"sort"
	"strings"

	"github.com/tutorstack/docqa/pkg/document"
)

// Detector identifies header lines among flattened document samples. Font
// statistics and text patterns are interchangeable strategies behind this
// interface, selected by how much font metadata the document carries.
type Detector interface {
	Detect(samples []FontSample) []Header
}

// Extract scans a parsed document and returns its header candidates in
// document order. An empty result is a valid signal that the document has no
// detectable structure, not an error.
func Extract(doc *document.Document, cfg Config) []Header {
	cfg = cfg.withDefaults()
	samples := flatten(doc)
	if len(samples) == 0 {
		return nil
	}

	sized := 0
	for _, s := range samples {
		if s.Size > 0 {
			sized++
		}
	}
	coverage := float64(sized) / float64(len(samples))

	var det Detector
	if coverage >= cfg.MinFontCoverage {
		det = &FontDetector{
			HeaderScale:  cfg.HeaderScale,
			ChapterScale: cfg.ChapterScale,
			MinHeaderLen: cfg.MinHeaderLen,
			MaxHeaderLen: cfg.MaxHeaderLen,
		}
	} else {
		det = &PatternDetector{
			MinHeaderLen: cfg.MinHeaderLen,
			MaxHeaderLen: cfg.MaxHeaderLen,
		}
	}
	return det.Detect(samples)
}

// flatten turns the page structure into a single ordered sample list with
// document-wide line indices. Segmentation relies on the same indexing.
func flatten(doc *document.Document) []FontSample {
	samples := make([]FontSample, 0, doc.LineCount())
	index := 0
	for _, page := range doc.Pages {
		for _, line := range page.Lines {
			samples = append(samples, FontSample{
				Text:  line.Text,
				Size:  line.FontSize,
				Page:  page.Number,
				Index: index,
			})
			index++
		}
	}
	return samples
}

// FontDetector classifies headers from document-wide font statistics: lines
// at or above ChapterScale times the median size are chapters, lines at or
// above HeaderScale times the median are sections.
type FontDetector struct {
	HeaderScale  float64
	ChapterScale float64
	MinHeaderLen int
	MaxHeaderLen int
}

func (d *FontDetector) Detect(samples []FontSample) []Header {
	median := medianFontSize(samples)
	if median <= 0 {
		return nil
	}
	sectionThreshold := d.HeaderScale * median
	chapterThreshold := d.ChapterScale * median

	var headers []Header
	for _, s := range samples {
		if s.Size < sectionThreshold {
			continue
		}
		text := strings.TrimSpace(s.Text)
		if len(text) < d.MinHeaderLen || len(text) > d.MaxHeaderLen {
			continue
		}
		level := LevelSection
		if s.Size >= chapterThreshold {
			level = LevelChapter
		}
		headers = append(headers, Header{
			Text:     text,
			Level:    level,
			FontSize: s.Size,
			Page:     s.Page,
			Index:    s.Index,
		})
	}
	return headers
}

// medianFontSize computes the median over samples that carry a size at all.
func medianFontSize(samples []FontSample) float64 {
	sizes := make([]float64, 0, len(samples))
	for _, s := range samples {
		if s.Size > 0 {
			sizes = append(sizes, s.Size)
		}
	}
	if len(sizes) == 0 {
		return 0
	}
	sort.Float64s(sizes)
	mid := len(sizes) / 2
	if len(sizes)%2 == 0 {
		return (sizes[mid-1] + sizes[mid]) / 2
	}
	return sizes[mid]
}
