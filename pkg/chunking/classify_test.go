package chunking

import "testing"

func TestClassify_TextbookHeaders(t *testing.T) {
	tests := []struct {
		header string
		want   Type
	}{
		{"CHAPTER 5: Force and Motion", TypeConcept},
		{"5.4 Newton's Second Law", TypeConcept},
		{"Example 5.1 - Calculating Force", TypeExample},
		{"Exercise 5.2 - Practice Problems", TypeQuestion},
		{"Worked Solutions", TypeExample},
		{"Checkpoint 3", TypeQuestion},
		{"Review Questions", TypeQuestion},
		{"Thermodynamics", TypeConcept},
		{"", TypeConcept},
	}
	for _, tt := range tests {
		if got := Classify(tt.header); got != tt.want {
			t.Errorf("Classify(%q): expected %s, got %s", tt.header, tt.want, got)
		}
		// Classification is pure: same text, same label, every time.
		if again := Classify(tt.header); again != Classify(tt.header) {
			t.Errorf("Classify(%q): unstable result", tt.header)
		}
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// Matches both the example and question families; the example rule is
	// evaluated first.
	if got := Classify("Sample Problem 5.2"); got != TypeExample {
		t.Fatalf("expected %s for mixed-family header, got %s", TypeExample, got)
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	tests := []struct {
		header string
		want   Type
	}{
		{"EXAMPLE 3", TypeExample},
		{"PRACTICE SET B", TypeQuestion},
		{"worked example", TypeExample},
	}
	for _, tt := range tests {
		if got := Classify(tt.header); got != tt.want {
			t.Errorf("Classify(%q): expected %s, got %s", tt.header, tt.want, got)
		}
	}
}
