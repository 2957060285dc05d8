package verse

import "testing"

func addrs(book string, chapter int, verses ...int) []Address {
	out := make([]Address, 0, len(verses))
	for _, v := range verses {
		out = append(out, Address{Book: book, Chapter: chapter, Verse: v})
	}
	return out
}

func TestFormatRange_Compacts(t *testing.T) {
	got := FormatRange(addrs("X", 3, 8, 1, 5, 3, 2, 7))
	if got != "X 3:1-3, 5, 7-8" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRange_Empty(t *testing.T) {
	if got := FormatRange(nil); got != "" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRange_SingleVerse(t *testing.T) {
	if got := FormatRange(addrs("John", 3, 16)); got != "John 3:16" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRange_PairIsRange(t *testing.T) {
	if got := FormatRange(addrs("John", 3, 17, 16)); got != "John 3:16-17" {
		t.Fatalf("got %q", got)
	}
}

func TestFormatRange_DuplicatesCollapse(t *testing.T) {
	if got := FormatRange(addrs("John", 3, 16, 16, 18)); got != "John 3:16, 18" {
		t.Fatalf("got %q", got)
	}
}

func TestParseHighlightColor(t *testing.T) {
	c, err := ParseHighlightColor("Pink")
	if err != nil || c != Pink {
		t.Fatalf("c=%q err=%v", c, err)
	}
	c, err = ParseHighlightColor("none")
	if err != nil || c != NoHighlight {
		t.Fatalf("c=%q err=%v", c, err)
	}
	if _, err := ParseHighlightColor("purple"); err == nil {
		t.Fatal("expected error")
	}
	if Orange.DisplayName() != "Orange" {
		t.Fatalf("display=%q", Orange.DisplayName())
	}
}
