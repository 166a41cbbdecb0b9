package chunking

// Config controls header detection, segmentation and metadata extraction.
type Config struct {
	HeaderScale     float64  // Section threshold as a multiple of the median font size.
	ChapterScale    float64  // Chapter threshold as a multiple of the median font size.
	MinFontCoverage float64  // Fraction of lines that must carry a font size for font-based detection.
	MinHeaderLen    int      // Shortest line considered a header candidate.
	MaxHeaderLen    int      // Longest line considered a header candidate.
	MinSpanChars    int      // Spans shorter than this are skipped as noise.
	MaxEquations    int      // Cap on extracted equations per chunk.
	MaxKeyTerms     int      // Cap on extracted key terms per chunk.
	MaxEquationLen  int      // Longest line still treated as an equation.
	Glossary        []string // Domain terms matched case-insensitively as key terms.
	Fallback        FallbackConfig
}

// FallbackConfig controls fixed-window segmentation for documents without
// detectable structure.
type FallbackConfig struct {
	WindowSize int // Target window length in characters.
	Overlap    int // Characters of overlap between consecutive windows.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		HeaderScale:     1.2,
		ChapterScale:    1.5,
		MinFontCoverage: 0.5,
		MinHeaderLen:    3,
		MaxHeaderLen:    200,
		MinSpanChars:    50,
		MaxEquations:    5,
		MaxKeyTerms:     10,
		MaxEquationLen:  100,
		Fallback: FallbackConfig{
			WindowSize: 512,
			Overlap:    50,
		},
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.HeaderScale <= 0 {
		c.HeaderScale = d.HeaderScale
	}
	if c.ChapterScale <= 0 {
		c.ChapterScale = d.ChapterScale
	}
	if c.MinFontCoverage <= 0 {
		c.MinFontCoverage = d.MinFontCoverage
	}
	if c.MinHeaderLen <= 0 {
		c.MinHeaderLen = d.MinHeaderLen
	}
	if c.MaxHeaderLen <= 0 {
		c.MaxHeaderLen = d.MaxHeaderLen
	}
	if c.MinSpanChars <= 0 {
		c.MinSpanChars = d.MinSpanChars
	}
	if c.MaxEquations <= 0 {
		c.MaxEquations = d.MaxEquations
	}
	if c.MaxKeyTerms <= 0 {
		c.MaxKeyTerms = d.MaxKeyTerms
	}
	if c.MaxEquationLen <= 0 {
		c.MaxEquationLen = d.MaxEquationLen
	}
	if c.Fallback.WindowSize <= 0 {
		c.Fallback.WindowSize = d.Fallback.WindowSize
	}
	if c.Fallback.Overlap < 0 || c.Fallback.Overlap >= c.Fallback.WindowSize {
		c.Fallback.Overlap = d.Fallback.Overlap
	}
	return c
}
