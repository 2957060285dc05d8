package group

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"bibleidx/internal/core/verse"
)

func TestFilterBooks_Gospels(t *testing.T) {
	got := FilterBooks(Gospels, verse.CanonicalBooks)
	want := []string{"Matthew", "Mark", "Luke", "John"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("gospels mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterBooks_ClampsToShortList(t *testing.T) {
	names := []string{"Genesis", "Exodus", "Leviticus"}
	if got := FilterBooks(All, names); len(got) != 3 {
		t.Fatalf("all=%v", got)
	}
	if got := FilterBooks(Law, names); len(got) != 3 {
		t.Fatalf("law=%v", got)
	}
	if got := FilterBooks(Gospels, names); len(got) != 0 {
		t.Fatalf("gospels=%v", got)
	}
}

func TestFilterBooks_DoesNotAlias(t *testing.T) {
	names := append([]string(nil), verse.CanonicalBooks...)
	got := FilterBooks(Acts, names)
	got[0] = "changed"
	if names[43] != "Acts" {
		t.Fatalf("input modified: %q", names[43])
	}
}

func TestFilterBooks_Sizes(t *testing.T) {
	sizes := map[Group]int{
		All: 66, OldTestament: 39, NewTestament: 27, Law: 5, History: 12,
		Poetry: 5, Prophets: 17, Gospels: 4, Acts: 1, Epistles: 21, Revelation: 1,
	}
	for g, n := range sizes {
		if got := len(FilterBooks(g, verse.CanonicalBooks)); got != n {
			t.Fatalf("%s: got %d want %d", g, got, n)
		}
	}
}

func TestParse(t *testing.T) {
	cases := map[string]Group{
		"":              All,
		"gospels":       Gospels,
		"Old Testament": OldTestament,
		"new_testament": NewTestament,
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil || got != want {
			t.Fatalf("Parse(%q)=%q err=%v", in, got, err)
		}
	}
	if _, err := Parse("apocrypha"); err == nil {
		t.Fatal("expected error")
	}
}

func TestOf(t *testing.T) {
	g, ok := Of(verse.BookIndex("Psalms"))
	if !ok || g != Poetry {
		t.Fatalf("g=%q ok=%v", g, ok)
	}
}
