package chunking

import (
	"regexp"
	"strings"
)

var (
	// "CHAPTER 5", "Chapter 12: Thermodynamics", "Ch. 3".
	chapterPattern = regexp.MustCompile(`(?i)^(?:chapter|ch\.?)\s*\d+\b`)
	// "5.4 Newton's Second Law", "2.1.3 - Boundary Conditions".
	sectionPattern = regexp.MustCompile(`^\d+(?:\.\d+)+[\s:\-]+\S`)
	// Short shouting lines like "INTRODUCTION" or "UNITS AND MEASUREMENT".
	allCapsPattern = regexp.MustCompile(`^[A-Z][A-Z0-9 \-:,'&]+$`)
)

const maxAllCapsHeaderLen = 60

// PatternDetector classifies headers from text shape alone. It is the
// strategy of record when font metadata is missing for most lines.
type PatternDetector struct {
	MinHeaderLen int
	MaxHeaderLen int
}

func (d *PatternDetector) Detect(samples []FontSample) []Header {
	var headers []Header
	for _, s := range samples {
		text := strings.TrimSpace(s.Text)
		if len(text) < d.MinHeaderLen || len(text) > d.MaxHeaderLen {
			continue
		}

		var level Level
		switch {
		case chapterPattern.MatchString(text):
			level = LevelChapter
		case allCapsPattern.MatchString(text) && len(text) <= maxAllCapsHeaderLen:
			level = LevelChapter
		case sectionPattern.MatchString(text):
			level = LevelSection
		default:
			continue
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
