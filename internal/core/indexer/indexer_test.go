package indexer

import (
	"context"
	"errors"
	"path/filepath"
	"sync/atomic"
	"testing"
	"testing/fstest"

	"bibleidx/internal/core/corpus"
	"bibleidx/internal/index/bleve"
)

func testCorpus() fstest.MapFS {
	return fstest.MapFS{
		"Books.json": {Data: []byte(`["Ruth","John"]`)},
		"Ruth.json":  {Data: []byte(`{"book":"Ruth","chapters":[{"chapter":"1","verses":[{"verse":"16","text":"whither thou goest, I will go"}]}]}`)},
		"John.json":  {Data: []byte(`{"book":"John","chapters":[{"chapter":"11","verses":[{"verse":"35","text":"Jesus wept."}]},{"chapter":"3","verses":[{"verse":"16","text":"For God so loved the world"},{"verse":"17","text":"For God sent not his Son"}]}]}`)},
	}
}

func openIndex(t *testing.T) *bleve.Index {
	t.Helper()
	idx, err := bleve.Open(filepath.Join(t.TempDir(), "words.bleve"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = idx.Close() })
	return idx
}

func TestBuild_IndexesAndSkipsUnchanged(t *testing.T) {
	fsys := testCorpus()
	idx := openIndex(t)
	ctx := context.Background()

	st, err := Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{Workers: 2})
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if st.Books != 2 || st.Indexed != 2 || st.Skipped != 0 || st.Verses != 4 {
		t.Fatalf("stats=%+v", st)
	}
	hits, err := idx.SearchWords(ctx, "wept", []string{"Ruth", "John"}, 0)
	if err != nil || len(hits) != 1 || hits[0].Chapter != 11 {
		t.Fatalf("hits=%v err=%v", hits, err)
	}

	st, err = Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if st.Indexed != 0 || st.Skipped != 2 {
		t.Fatalf("expected all skipped, stats=%+v", st)
	}

	fsys["Ruth.json"] = &fstest.MapFile{Data: []byte(`{"book":"Ruth","chapters":[{"chapter":"1","verses":[{"verse":"16","text":"thy people shall be my people"}]}]}`)}
	st, err = Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if st.Indexed != 1 || st.Skipped != 1 {
		t.Fatalf("expected one reindex, stats=%+v", st)
	}
	if hits, _ := idx.SearchWords(ctx, "goest", []string{"Ruth"}, 0); len(hits) != 0 {
		t.Fatalf("stale text still indexed: %v", hits)
	}

	st, err = Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{Force: true})
	if err != nil || st.Indexed != 2 {
		t.Fatalf("force: stats=%+v err=%v", st, err)
	}
}

func TestBuild_RemovesDroppedBooks(t *testing.T) {
	fsys := testCorpus()
	idx := openIndex(t)
	ctx := context.Background()

	if _, err := Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{}); err != nil {
		t.Fatalf("build: %v", err)
	}
	fsys["Books.json"] = &fstest.MapFile{Data: []byte(`["John"]`)}
	st, err := Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{})
	if err != nil {
		t.Fatalf("rebuild: %v", err)
	}
	if st.Removed != 1 {
		t.Fatalf("stats=%+v", st)
	}
	books, _ := idx.Books()
	if _, ok := books["Ruth"]; ok {
		t.Fatal("Ruth still indexed")
	}
}

func TestBuild_Errors(t *testing.T) {
	idx := openIndex(t)
	ctx := context.Background()

	fsys := testCorpus()
	delete(fsys, "John.json")
	if _, err := Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{}); !errors.Is(err, corpus.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	fsys = testCorpus()
	fsys["John.json"] = &fstest.MapFile{Data: []byte(`{`)}
	if _, err := Build(ctx, corpus.NewFSSource(fsys, ""), idx, Options{}); !errors.Is(err, corpus.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := Build(cancelled, corpus.NewFSSource(testCorpus(), ""), idx, Options{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestBuild_LoadsEachDocumentOnce(t *testing.T) {
	fsys := testCorpus()
	var loads atomic.Int32
	src := corpus.SourceFunc(func(name string) ([]byte, error) {
		loads.Add(1)
		return corpus.NewFSSource(fsys, "").Load(name)
	})
	if _, err := Build(context.Background(), src, openIndex(t), Options{Workers: 1}); err != nil {
		t.Fatalf("build: %v", err)
	}
	if loads.Load() != 3 {
		t.Fatalf("expected index + 2 books loaded, got %d", loads.Load())
	}
}

func TestHash_Stable(t *testing.T) {
	a := Hash([]byte("In the beginning"))
	if a != Hash([]byte("In the beginning")) || a == Hash([]byte("In the beginning.")) || len(a) != 64 {
		t.Fatalf("hash=%q", a)
	}
}
