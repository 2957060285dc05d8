package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"
	"time"

	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/indexer"
	"bibleidx/internal/index/bleve"
)

func TestNewWatcher_Debounce(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, Options{Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	if w.Debounce() != 50*time.Millisecond {
		t.Fatalf("expected debounce 50ms, got=%v", w.Debounce())
	}
	if _, err := NewWatcher(" ", Options{}); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestWatcher_DocumentName(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir, Options{})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	cases := map[string]bool{
		filepath.Join(dir, "John.json"):         true,
		filepath.Join(dir, "Books.JSON"):        true,
		filepath.Join(dir, ".John.json"):        false,
		filepath.Join(dir, "notes.txt"):         false,
		filepath.Join(dir, "sub", "John.json"):  false,
		filepath.Join(t.TempDir(), "Ruth.json"): false,
	}
	for path, want := range cases {
		if _, ok := w.documentName(path); ok != want {
			t.Fatalf("documentName(%q)=%v, want %v", path, ok, want)
		}
	}
}

func TestWatcher_FiresOnWrite(t *testing.T) {
	dir := t.TempDir()
	got := make(chan []string, 4)
	w, err := NewWatcher(dir, Options{
		Debounce: 30 * time.Millisecond,
		OnChange: func(names []string) { got <- names },
	})
	if err != nil {
		t.Fatalf("new watcher: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	if err := os.WriteFile(filepath.Join(dir, "Jude.json"), []byte(`{}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	_ = os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644)

	select {
	case names := <-got:
		if len(names) != 1 || names[0] != "Jude.json" {
			t.Fatalf("names=%v", names)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for change")
	}
}

func TestReindex_BuildsAndReports(t *testing.T) {
	fsys := fstest.MapFS{
		"Books.json": {Data: []byte(`["Jude"]`)},
		"Jude.json":  {Data: []byte(`{"book":"Jude","chapters":[{"chapter":"1","verses":[{"verse":"2","text":"Mercy unto you, and peace, and love"}]}]}`)},
	}
	idx, err := bleve.Open(filepath.Join(t.TempDir(), "words.bleve"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })

	var calls atomic.Int32
	var last indexer.Stats
	fn := Reindex(context.Background(), corpus.NewFSSource(fsys, ""), idx, indexer.Options{}, func(st indexer.Stats) {
		calls.Add(1)
		last = st
	})
	fn([]string{"Jude.json"})
	if calls.Load() != 1 || last.Indexed != 1 {
		t.Fatalf("calls=%d stats=%+v", calls.Load(), last)
	}

	delete(fsys, "Jude.json")
	fn([]string{"Jude.json"})
	if calls.Load() != 1 {
		t.Fatal("after called on failed build")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	Reindex(ctx, corpus.NewFSSource(fsys, ""), idx, indexer.Options{}, func(indexer.Stats) {
		t.Fatal("after called with cancelled context")
	})(nil)
}
