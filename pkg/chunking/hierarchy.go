package chunking

// BuildHierarchy assigns each header its chapter/section nesting path in a
// single pass. The current chapter and section travel in an explicit
// accumulator so the builder stays reentrant: a chapter header resets the
// section and becomes the path root, a section header appends under the
// current chapter or stands alone when no chapter has been seen yet.
func BuildHierarchy(headers []Header) []Header {
	var chapter, section string
	out := make([]Header, len(headers))
	for i, h := range headers {
		switch h.Level {
		case LevelChapter:
			chapter = h.Text
			section = ""
			h.Path = []string{chapter}
		case LevelSection:
			section = h.Text
			if chapter != "" {
				h.Path = []string{chapter, section}
			} else {
				h.Path = []string{section}
			}
		default:
			h.Path = nil
		}
		out[i] = h
	}
	return out
}
