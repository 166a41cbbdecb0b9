package chunking

import (
	"reflect"
	"testing"
)

func TestBuildHierarchy_ChapterResetsSection(t *testing.T) {
	headers := []Header{
		{Text: "Chapter 1: Motion", Level: LevelChapter},
		{Text: "1.1 Velocity", Level: LevelSection},
		{Text: "1.2 Acceleration", Level: LevelSection},
		{Text: "Chapter 2: Energy", Level: LevelChapter},
		{Text: "2.1 Work", Level: LevelSection},
	}

	out := BuildHierarchy(headers)
	want := [][]string{
		{"Chapter 1: Motion"},
		{"Chapter 1: Motion", "1.1 Velocity"},
		{"Chapter 1: Motion", "1.2 Acceleration"},
		{"Chapter 2: Energy"},
		{"Chapter 2: Energy", "2.1 Work"},
	}
	for i, w := range want {
		if !reflect.DeepEqual(out[i].Path, w) {
			t.Errorf("header[%d]: expected path %v, got %v", i, w, out[i].Path)
		}
	}
}

func TestBuildHierarchy_SectionWithoutChapter(t *testing.T) {
	out := BuildHierarchy([]Header{{Text: "Preliminaries", Level: LevelSection}})
	if !reflect.DeepEqual(out[0].Path, []string{"Preliminaries"}) {
		t.Errorf("expected top-level section path, got %v", out[0].Path)
	}
}

func TestBuildHierarchy_InputLeftUntouched(t *testing.T) {
	headers := []Header{
		{Text: "Chapter 1", Level: LevelChapter},
		{Text: "1.1 Basics", Level: LevelSection},
	}
	BuildHierarchy(headers)
	for i, h := range headers {
		if h.Path != nil {
			t.Errorf("header[%d]: input path mutated to %v", i, h.Path)
		}
	}
}

func TestBuildHierarchy_Empty(t *testing.T) {
	if out := BuildHierarchy(nil); len(out) != 0 {
		t.Fatalf("expected empty output, got %v", out)
	}
}
