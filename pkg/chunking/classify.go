package chunking

import "strings"

// classifyRules is the ordered classification policy. Rules are evaluated
// first-match-wins, so a header matching several families resolves to the
// earliest: "Sample Problem 5.2" is an example, not a question.
var classifyRules = []struct {
	keywords []string
	label    Type
}{
	{
		keywords: []string{"example", "sample", "worked", "demonstration", "illustration", "case study"},
		label:    TypeExample,
	},
	{
		keywords: []string{"exercise", "problem", "question", "checkpoint", "practice", "review", "test yourself"},
		label:    TypeQuestion,
	},
}

// Classify maps header text to a chunk type. Pure: the result depends only
// on the given text.
func Classify(headerText string) Type {
	lower := strings.ToLower(headerText)
	for _, rule := range classifyRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.label
			}
		}
	}
	return TypeConcept
}
