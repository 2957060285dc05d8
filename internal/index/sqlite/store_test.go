package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
	"bibleidx/internal/index/store/storetest"
)

func TestConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Backend {
		s, err := Open(filepath.Join(t.TempDir(), "bible.db"))
		if err != nil {
			t.Fatalf("open: %v", err)
		}
		t.Cleanup(func() { _ = s.Close() })
		return s
	})
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestOpen_CreatesParentDir(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "bible.db")
	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	_ = s.Close()
}

func TestReopen_KeepsRecords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "bible.db")
	ctx := context.Background()

	s, err := Open(dbPath)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	r := store.NewRecord(verse.Address{Book: "Psalms", Chapter: 23, Verse: 1})
	r.Note = "shepherd"
	if err := s.Apply(ctx, store.Batch{Upserts: []store.Record{r}}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	_ = s.Close()

	s, err = Open(dbPath)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	got, ok, err := s.Get(ctx, r.Key())
	if err != nil || !ok || got.Note != "shepherd" {
		t.Fatalf("got=%+v ok=%v err=%v", got, ok, err)
	}
}

func TestApply_RollsBackOnError(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "bible.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()
	ctx := context.Background()

	good := store.NewRecord(verse.Address{Book: "John", Chapter: 1, Verse: 1})
	good.Bookmarked = true
	bad := store.Record{Chapter: 1, Verse: 2, Bookmarked: true}
	if err := s.Apply(ctx, store.Batch{Upserts: []store.Record{good, bad}}); err == nil {
		t.Fatal("expected error for record without book")
	}
	if _, ok, _ := s.Get(ctx, good.Key()); ok {
		t.Fatal("partial batch was committed")
	}
}

func TestClosedStore(t *testing.T) {
	var s *Store
	if _, _, err := s.Get(context.Background(), "John:1:1"); err == nil {
		t.Fatal("expected error from nil store")
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close nil: %v", err)
	}
}
