// Package storetest holds the behaviour every store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

// Run exercises a fresh backend returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) store.Backend) {
	t.Run("annotations", func(t *testing.T) { testAnnotations(t, open(t)) })
	t.Run("filters", func(t *testing.T) { testFilters(t, open(t)) })
	t.Run("canonical order", func(t *testing.T) { testCanonicalOrder(t, open(t)) })
	t.Run("presentations", func(t *testing.T) { testPresentations(t, open(t)) })
	t.Run("slides", func(t *testing.T) { testSlides(t, open(t)) })
}

func rec(book string, chapter, v int) store.Record {
	return store.NewRecord(verse.Address{Book: book, Chapter: chapter, Verse: v})
}

func testAnnotations(t *testing.T, s store.Backend) {
	ctx := context.Background()

	r := rec("John", 3, 16)
	r.Highlight = verse.Yellow
	r.Note = "world"
	r.UpdatedAt = 42
	require.NoError(t, s.Apply(ctx, store.Batch{Upserts: []store.Record{r}}))

	got, ok, err := s.Get(ctx, "John:3:16")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, r, got)

	r.Highlight = verse.NoHighlight
	r.Bookmarked = true
	other := rec("John", 3, 17)
	other.Bookmarked = true
	require.NoError(t, s.Apply(ctx, store.Batch{Upserts: []store.Record{r, other}}))

	got, ok, err = s.Get(ctx, r.Key())
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, verse.NoHighlight, got.Highlight)
	require.True(t, got.Bookmarked)

	require.NoError(t, s.Apply(ctx, store.Batch{Deletes: []string{r.Key(), "Nope:1:1"}}))
	_, ok, err = s.Get(ctx, r.Key())
	require.NoError(t, err)
	require.False(t, ok)

	all, err := s.List(ctx, store.Filter{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, other.Key(), all[0].Key())
}

func testFilters(t *testing.T, s store.Backend) {
	ctx := context.Background()

	a := rec("Psalms", 23, 1)
	a.Bookmarked = true
	b := rec("Psalms", 23, 4)
	b.Note = "valley"
	c := rec("Psalms", 91, 1)
	c.Highlight = verse.Green
	d := rec("Romans", 8, 28)
	d.Bookmarked = true
	d.Note = "all things"
	require.NoError(t, s.Apply(ctx, store.Batch{Upserts: []store.Record{a, b, c, d}}))

	keys := func(f store.Filter) []string {
		rs, err := s.List(ctx, f)
		require.NoError(t, err)
		out := []string{}
		for _, r := range rs {
			out = append(out, r.Key())
		}
		return out
	}

	require.Equal(t, []string{"Psalms:23:1", "Psalms:23:4"}, keys(store.Filter{Book: "Psalms", Chapter: 23}))
	require.Equal(t, []string{"Psalms:23:1", "Psalms:23:4", "Psalms:91:1"}, keys(store.Filter{Book: "Psalms"}))
	require.Equal(t, []string{"Psalms:23:1", "Romans:8:28"}, keys(store.Filter{Bookmarked: true}))
	require.Equal(t, []string{"Psalms:23:4", "Romans:8:28"}, keys(store.Filter{HasNote: true}))
	require.Equal(t, []string{}, keys(store.Filter{Book: "Jude"}))
}

func testCanonicalOrder(t *testing.T, s store.Backend) {
	ctx := context.Background()
	in := []store.Record{
		rec("Revelation", 1, 1),
		rec("Apocrypha", 1, 1),
		rec("Genesis", 10, 2),
		rec("Genesis", 2, 10),
		rec("1 John", 4, 8),
		rec("Genesis", 2, 3),
		rec("Addendum", 1, 1),
	}
	for i := range in {
		in[i].Bookmarked = true
	}
	require.NoError(t, s.Apply(ctx, store.Batch{Upserts: in}))

	rs, err := s.List(ctx, store.Filter{Bookmarked: true})
	require.NoError(t, err)
	var got []string
	for _, r := range rs {
		got = append(got, r.Key())
	}
	require.Equal(t, []string{
		"Genesis:2:3", "Genesis:2:10", "Genesis:10:2",
		"1 John:4:8", "Revelation:1:1",
		"Addendum:1:1", "Apocrypha:1:1",
	}, got)
}

func testPresentations(t *testing.T, s store.Backend) {
	ctx := context.Background()

	n, err := s.CountPresentations(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	require.NoError(t, s.CreatePresentation(ctx, store.Presentation{ID: "p1", Name: "Old", CreatedAt: 100}))
	require.NoError(t, s.CreatePresentation(ctx, store.Presentation{ID: "p2", Name: "New", CreatedAt: 200}))
	require.Error(t, s.CreatePresentation(ctx, store.Presentation{ID: "p1", Name: "Dup", CreatedAt: 300}))

	list, err := s.ListPresentations(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, "p2", list[0].ID)
	require.Equal(t, "p1", list[1].ID)

	p, ok, err := s.GetPresentation(ctx, "p1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Old", p.Name)

	require.NoError(t, s.InsertSlides(ctx, []store.Slide{
		{ID: "s1", PresentationID: "p1", Book: "John", Chapter: 1, Verse: 1, Text: "In the beginning", Order: 0},
	}))
	require.NoError(t, s.DeletePresentation(ctx, "p1"))

	_, ok, err = s.GetPresentation(ctx, "p1")
	require.NoError(t, err)
	require.False(t, ok)
	slides, err := s.Slides(ctx, "p1")
	require.NoError(t, err)
	require.Empty(t, slides)

	n, err = s.CountPresentations(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, n)
}

func testSlides(t *testing.T, s store.Backend) {
	ctx := context.Background()
	require.NoError(t, s.CreatePresentation(ctx, store.Presentation{ID: "p", Name: "Talk", CreatedAt: 1}))

	require.Error(t, s.InsertSlides(ctx, []store.Slide{{ID: "x", PresentationID: "missing"}}))

	require.NoError(t, s.InsertSlides(ctx, []store.Slide{
		{ID: "a", PresentationID: "p", Book: "Romans", Chapter: 3, Verse: 23, Text: "For all have sinned", Order: 0},
		{ID: "b", PresentationID: "p", Book: "Romans", Chapter: 6, Verse: 23, Text: "For the wages of sin", Order: 1},
		{ID: "c", PresentationID: "p", Book: "Romans", Chapter: 5, Verse: 8, Text: "But God commendeth", Order: 2},
	}))

	require.NoError(t, s.UpdateSlideOrders(ctx, map[string]int{"a": 2, "c": 0}))
	slides, err := s.Slides(ctx, "p")
	require.NoError(t, err)
	require.Equal(t, []string{"c", "b", "a"}, []string{slides[0].ID, slides[1].ID, slides[2].ID})
	require.Equal(t, "But God commendeth", slides[0].Text)

	require.NoError(t, s.DeleteSlide(ctx, "b"))
	slides, err = s.Slides(ctx, "p")
	require.NoError(t, err)
	require.Len(t, slides, 2)

	require.Error(t, s.UpdateSlideOrders(ctx, map[string]int{"b": 0}))
}
