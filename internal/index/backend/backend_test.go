package backend

import (
	"path/filepath"
	"testing"
)

func TestNormalizeName(t *testing.T) {
	cases := map[string]string{
		"":         SQLite,
		" SQLite3": SQLite,
		"mem":      Memory,
		"Memory":   Memory,
		"postgres": "postgres",
	}
	for in, want := range cases {
		if got := NormalizeName(in); got != want {
			t.Fatalf("NormalizeName(%q)=%q, want %q", in, got, want)
		}
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	st, err := Open("", DefaultPath(dir))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if st.Backend() != SQLite {
		t.Fatalf("backend=%q", st.Backend())
	}
	_ = st.Close()

	mem, err := Open("memory", "")
	if err != nil || mem.Backend() != Memory {
		t.Fatalf("open memory: %v", err)
	}

	if _, err := Open("postgres", filepath.Join(dir, "x")); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestDefaultPaths(t *testing.T) {
	if got := DefaultPath("data"); got != filepath.Join("data", "annotations.db") {
		t.Fatalf("got %q", got)
	}
	if got := DefaultWordIndexPath("data"); got != filepath.Join("data", "words.bleve") {
		t.Fatalf("got %q", got)
	}
}
