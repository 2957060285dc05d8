package annotation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/memory"
	"bibleidx/internal/index/store"
)

// countingPersistence records every batch handed to Apply.
type countingPersistence struct {
	*memory.Store
	batches []store.Batch
}

func (c *countingPersistence) Apply(ctx context.Context, b store.Batch) error {
	c.batches = append(c.batches, b)
	return c.Store.Apply(ctx, b)
}

func addr(book string, chapter, v int) verse.Address {
	return verse.Address{Book: book, Chapter: chapter, Verse: v}
}

func newStore(t *testing.T, opts ...Option) (*Store, *countingPersistence) {
	t.Helper()
	p := &countingPersistence{Store: memory.New()}
	clock := time.UnixMilli(1_700_000_000_000)
	opts = append([]Option{WithClock(func() time.Time { return clock })}, opts...)
	return New(p, opts...), p
}

func TestSetHighlight_CreatesAndClears(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t)
	j316, j317 := addr("John", 3, 16), addr("John", 3, 17)

	s.SetHighlight(ctx, verse.Yellow, j316, j317)
	require.Len(t, p.batches, 1)
	require.Len(t, p.batches[0].Upserts, 2)

	got := s.ForChapter(ctx, "John", 3)
	require.Len(t, got, 2)
	require.Equal(t, verse.Yellow, got[j316.Key()].Highlight)
	require.Equal(t, int64(1_700_000_000_000), got[j317.Key()].UpdatedAt)

	s.SetHighlight(ctx, verse.NoHighlight, j316, j317)
	require.Empty(t, s.ForChapter(ctx, "John", 3))
	require.Len(t, p.batches, 2)
	require.Len(t, p.batches[1].Deletes, 2)
}

func TestSetHighlight_InvalidColorIsReported(t *testing.T) {
	var ops []string
	s, p := newStore(t, WithErrorHandler(func(op string, err error) { ops = append(ops, op) }))

	s.SetHighlight(context.Background(), verse.HighlightColor("purple"), addr("John", 1, 1))
	require.Equal(t, []string{"set-highlight"}, ops)
	require.Empty(t, p.batches)
}

func TestClearingAbsentRecordWritesNothing(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t)

	s.SetHighlight(ctx, verse.NoHighlight, addr("Ruth", 1, 16))
	s.ClearNote(ctx, addr("Ruth", 1, 16))
	s.RemoveBookmark(ctx, addr("Ruth", 1, 16))
	require.Empty(t, p.batches)
	_, ok := s.Get(ctx, addr("Ruth", 1, 16))
	require.False(t, ok)
}

func TestToggleBookmark_AllOrNothing(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	a, b := addr("Psalms", 23, 1), addr("Psalms", 23, 2)

	s.ToggleBookmark(ctx, a)
	// mixed selection: set all
	s.ToggleBookmark(ctx, a, b)
	ra, _ := s.Get(ctx, a)
	rb, _ := s.Get(ctx, b)
	require.True(t, ra.Bookmarked)
	require.True(t, rb.Bookmarked)

	// all bookmarked: clear all, records become empty and are deleted
	s.ToggleBookmark(ctx, a, b)
	_, okA := s.Get(ctx, a)
	_, okB := s.Get(ctx, b)
	require.False(t, okA)
	require.False(t, okB)
}

func TestToggleBookmark_KeepsOtherFields(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	a := addr("Genesis", 1, 1)

	s.SetHighlight(ctx, verse.Green, a)
	s.ToggleBookmark(ctx, a)
	s.ToggleBookmark(ctx, a)

	r, ok := s.Get(ctx, a)
	require.True(t, ok)
	require.False(t, r.Bookmarked)
	require.Equal(t, verse.Green, r.Highlight)
}

func TestDuplicateAddressesProcessedOnce(t *testing.T) {
	ctx := context.Background()
	s, p := newStore(t)
	a := addr("Jude", 1, 2)

	s.ToggleBookmark(ctx, a, a, a)
	require.Len(t, p.batches, 1)
	require.Len(t, p.batches[0].Upserts, 1)
	r, _ := s.Get(ctx, a)
	require.True(t, r.Bookmarked)
}

func TestSetNote(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)
	a := addr("Romans", 8, 28)

	s.SetNote(ctx, "all things", a)
	r, ok := s.Get(ctx, a)
	require.True(t, ok)
	require.Equal(t, "all things", r.Note)

	s.SetNote(ctx, "   ", a)
	_, ok = s.Get(ctx, a)
	require.False(t, ok)

	s.SetNote(ctx, "again", a)
	s.ClearNote(ctx, a)
	_, ok = s.Get(ctx, a)
	require.False(t, ok)
}

func TestListsAreCanonical(t *testing.T) {
	ctx := context.Background()
	s, _ := newStore(t)

	s.ToggleBookmark(ctx, addr("Revelation", 22, 21))
	s.ToggleBookmark(ctx, addr("Genesis", 1, 1))
	s.ToggleBookmark(ctx, addr("John", 3, 16))
	s.SetNote(ctx, "love", addr("1 John", 4, 8))
	s.SetNote(ctx, "light", addr("Genesis", 1, 3))
	s.SetHighlight(ctx, verse.Pink, addr("Acts", 2, 1))

	var marks []string
	for _, r := range s.Bookmarks(ctx) {
		marks = append(marks, r.Address().Reference())
	}
	require.Equal(t, []string{"Genesis 1:1", "John 3:16", "Revelation 22:21"}, marks)

	var notes []string
	for _, r := range s.Notes(ctx) {
		notes = append(notes, r.Address().Reference())
	}
	require.Equal(t, []string{"Genesis 1:3", "1 John 4:8"}, notes)

	s.RemoveBookmark(ctx, addr("John", 3, 16))
	require.Len(t, s.Bookmarks(ctx), 2)
}

func TestPersistenceFailuresAreSwallowed(t *testing.T) {
	ctx := context.Background()
	type failure struct {
		op  string
		err error
	}
	var seen []failure
	p := &countingPersistence{Store: memory.New()}
	s := New(p, WithErrorHandler(func(op string, err error) { seen = append(seen, failure{op, err}) }))
	a := addr("John", 11, 35)

	boom := errors.New("disk full")
	p.FailWith(boom)

	s.SetHighlight(ctx, verse.Blue, a)
	s.ToggleBookmark(ctx, a)
	require.Empty(t, s.ForChapter(ctx, "John", 11))
	require.Nil(t, s.Bookmarks(ctx))
	require.Nil(t, s.Notes(ctx))
	_, ok := s.Get(ctx, a)
	require.False(t, ok)

	require.Len(t, seen, 6)
	require.Equal(t, "set-highlight", seen[0].op)
	require.ErrorIs(t, seen[0].err, boom)
	// the read failed, so nothing was written
	require.Empty(t, p.batches)

	p.FailWith(nil)
	s.SetHighlight(ctx, verse.Blue, a)
	r, ok := s.Get(ctx, a)
	require.True(t, ok)
	require.Equal(t, verse.Blue, r.Highlight)
}

func TestForChapter_RejectsBlankInput(t *testing.T) {
	s, _ := newStore(t)
	require.Empty(t, s.ForChapter(context.Background(), " ", 1))
	require.Empty(t, s.ForChapter(context.Background(), "John", 0))
}
