package chunking

import (
	"regexp"
	"sort"
	"strings"
)

var (
	// Assignment-shaped lines: "F = ma", "E = mc^2", "y = -b".
	equationPattern = regexp.MustCompile(`[A-Za-z0-9)\]]\s*=\s*[-+(\[]?\s*[A-Za-z0-9]`)
	// Capitalized multi-word phrases like "Second Law" or "Big Bang".
	capitalizedPhrase = regexp.MustCompile(`[A-Z][a-z]+(?:\s+[A-Z][a-z]+)+`)
	// Terms the author set off in quotes.
	doubleQuoted = regexp.MustCompile(`"([^"\n]{3,60})"`)
	singleQuoted = regexp.MustCompile(`(?:^|[\s(])'([^'\n]{3,60})'(?:[\s).,;:!?]|$)`)

	diagramPattern = regexp.MustCompile(`(?i)\b(?:figure|diagram|graph|chart|image|picture|illustration)\b|\bfig\.`)
)

// mathGlyphs marks a line as an equation regardless of shape.
const mathGlyphs = "∑∫√πΔ±≤≥≠≈×÷αβγθλμσω"

// ExtractEquations collects equation-like lines from span text as an ordered
// list, capped at cfg.MaxEquations. The heuristic is assignment shape or the
// presence of a math glyph; lines longer than cfg.MaxEquationLen are prose.
func ExtractEquations(text string, cfg Config) []string {
	cfg = cfg.withDefaults()
	var equations []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) >= cfg.MaxEquationLen {
			continue
		}
		if equationPattern.MatchString(line) || strings.ContainsAny(line, mathGlyphs) {
			equations = append(equations, line)
			if len(equations) >= cfg.MaxEquations {
				break
			}
		}
	}
	return equations
}

// ExtractKeyTerms collects candidate domain terms from span text: capitalized
// multi-word phrases, quoted phrases, and glossary matches. The result is a
// deduplicated, sorted set capped at cfg.MaxKeyTerms.
func ExtractKeyTerms(text string, cfg Config) []string {
	cfg = cfg.withDefaults()
	seen := make(map[string]bool)

	// A phrase at position zero is capitalized by position, not by name.
	for _, loc := range capitalizedPhrase.FindAllStringIndex(text, -1) {
		if loc[0] == 0 {
			continue
		}
		seen[text[loc[0]:loc[1]]] = true
	}
	for _, m := range doubleQuoted.FindAllStringSubmatch(text, -1) {
		seen[strings.TrimSpace(m[1])] = true
	}
	for _, m := range singleQuoted.FindAllStringSubmatch(text, -1) {
		seen[strings.TrimSpace(m[1])] = true
	}

	lower := strings.ToLower(text)
	for _, term := range cfg.Glossary {
		if term != "" && strings.Contains(lower, strings.ToLower(term)) {
			seen[term] = true
		}
	}

	terms := make([]string, 0, len(seen))
	for term := range seen {
		if term != "" {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	if len(terms) > cfg.MaxKeyTerms {
		terms = terms[:cfg.MaxKeyTerms]
	}
	return terms
}

// HasDiagramReference reports whether span text mentions a figure or diagram,
// a signal that the chunk's prose leans on a visual the index cannot store.
func HasDiagramReference(text string) bool {
	return diagramPattern.MatchString(text)
}
