package group

import (
	"testing"

	"bibleidx/internal/core/verse"
)

func TestByBook_ContiguousRuns(t *testing.T) {
	items := []verse.Address{
		{Book: "Genesis", Chapter: 1, Verse: 1},
		{Book: "Genesis", Chapter: 1, Verse: 2},
		{Book: "Exodus", Chapter: 2, Verse: 1},
	}
	runs := ByBook(items, func(a verse.Address) string { return a.Book })
	if len(runs) != 2 {
		t.Fatalf("runs=%v", runs)
	}
	if runs[0].Book != "Genesis" || len(runs[0].Items) != 2 {
		t.Fatalf("first=%+v", runs[0])
	}
	if runs[1].Book != "Exodus" || len(runs[1].Items) != 1 {
		t.Fatalf("second=%+v", runs[1])
	}
}

func TestByBook_DoesNotResort(t *testing.T) {
	items := []string{"Genesis", "Exodus", "Genesis"}
	runs := ByBook(items, func(s string) string { return s })
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs for unsorted input, got %v", runs)
	}
}

func TestByBook_Empty(t *testing.T) {
	if runs := ByBook([]string(nil), func(s string) string { return s }); len(runs) != 0 {
		t.Fatalf("runs=%v", runs)
	}
}
