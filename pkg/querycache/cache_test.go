package querycache

import (
	"strings"
	"testing"

	"github.com/tutorstack/docqa"
	"github.com/tutorstack/docqa/pkg/index"
)

func TestNormalizeQuestion_CanonicalForms(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"case folded", "What is TORQUE?", "what is torque?"},
		{"whitespace collapsed", "  what \t is\n torque?  ", "what is torque?"},
		{"ligature decomposed", "deﬁne force", "define force"},
		{"fullwidth mapped", "ｗｈａｔ is torque", "what is torque"},
		{"nbsp treated as space", "what is torque", "what is torque"},
		{"empty", "   ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeQuestion(tc.in); got != tc.want {
			t.Errorf("%s: NormalizeQuestion(%q) = %q, want %q", tc.name, tc.in, got, tc.want)
		}
	}
}

func TestKey_EquivalentRequestsShareAKey(t *testing.T) {
	c := &Cache{cfg: Config{KeyPrefix: "docqa"}}

	a := c.key(docqa.QueryRequest{Text: "What  is torque?"})
	b := c.key(docqa.QueryRequest{Text: "what is TORQUE?"})
	if a != b {
		t.Errorf("equivalent questions hashed differently:\n%s\n%s", a, b)
	}
	if !strings.HasPrefix(a, "docqa:query:") {
		t.Errorf("key %s missing prefix", a)
	}

	s1 := c.key(docqa.QueryRequest{Text: "x", Scope: &index.Filter{DocumentIDs: []string{"d2", "d1"}}})
	s2 := c.key(docqa.QueryRequest{Text: "x", Scope: &index.Filter{DocumentIDs: []string{"d1", "d2"}}})
	if s1 != s2 {
		t.Error("scope document order split the cache")
	}
}

func TestKey_TuningKnobsChangeTheKey(t *testing.T) {
	c := &Cache{cfg: Config{KeyPrefix: "docqa"}}
	base := docqa.QueryRequest{Text: "what is torque"}

	variants := []docqa.QueryRequest{
		{Text: "what is torque", TopK: 10},
		{Text: "what is torque", ScoreThreshold: 0.7},
		{Text: "what is torque", MaxContext: 5},
		{Text: "what is torque", Scope: &index.Filter{DocumentIDs: []string{"d1"}}},
		{Text: "what is torque", Scope: &index.Filter{ChunkTypes: []string{"example"}}},
		{Text: "what is friction"},
	}
	baseKey := c.key(base)
	for i, v := range variants {
		if c.key(v) == baseKey {
			t.Errorf("variant %d produced the same key as the base request", i)
		}
	}
}
