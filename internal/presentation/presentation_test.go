package presentation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/memory"
	"bibleidx/internal/index/store"
)

// orderRecorder keeps the order updates it forwards.
type orderRecorder struct {
	*memory.Store
	updates []map[string]int
}

func (o *orderRecorder) UpdateSlideOrders(ctx context.Context, orders map[string]int) error {
	o.updates = append(o.updates, orders)
	return o.Store.UpdateSlideOrders(ctx, orders)
}

func newService(t *testing.T) (*Service, *orderRecorder) {
	t.Helper()
	ps := &orderRecorder{Store: memory.New()}
	tick := time.UnixMilli(1_000)
	clock := func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	return New(ps, WithClock(clock)), ps
}

func verses(refs ...verse.Address) []SlideVerse {
	out := make([]SlideVerse, 0, len(refs))
	for _, a := range refs {
		out = append(out, SlideVerse{Address: a, Text: a.Reference()})
	}
	return out
}

func refsOf(slides []store.Slide) []string {
	out := make([]string, 0, len(slides))
	for _, sl := range slides {
		out = append(out, verse.Address{Book: sl.Book, Chapter: sl.Chapter, Verse: sl.Verse}.Reference())
	}
	return out
}

func TestCreateListDelete(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	_, err := s.Create(ctx, "  ")
	require.Error(t, err)

	first, err := s.Create(ctx, "Sunday")
	require.NoError(t, err)
	_, err = uuid.Parse(first.ID)
	require.NoError(t, err)
	second, err := s.Create(ctx, " Wednesday ")
	require.NoError(t, err)
	require.Equal(t, "Wednesday", second.Name)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, second.ID, list[0].ID, "newest first")

	_, err = s.AddSlides(ctx, first.ID, verses(verse.Address{Book: "John", Chapter: 1, Verse: 1}))
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, first.ID))

	_, err = s.Get(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = s.Slides(ctx, first.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, s.Delete(ctx, "missing"))
}

func TestAddSlides_AppendsAfterExisting(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)
	p, err := s.Create(ctx, "Psalms")
	require.NoError(t, err)

	ps23 := func(v int) verse.Address { return verse.Address{Book: "Psalms", Chapter: 23, Verse: v} }
	_, err = s.AddSlides(ctx, p.ID, verses(ps23(1), ps23(2)))
	require.NoError(t, err)
	added, err := s.AddSlides(ctx, p.ID, verses(ps23(3)))
	require.NoError(t, err)
	require.Equal(t, 2, added[0].Order)

	slides, err := s.Slides(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"Psalms 23:1", "Psalms 23:2", "Psalms 23:3"}, refsOf(slides))

	// a gap left by a delete is not reused
	require.NoError(t, s.DeleteSlide(ctx, slides[1].ID))
	added, err = s.AddSlides(ctx, p.ID, verses(ps23(4)))
	require.NoError(t, err)
	require.Equal(t, 3, added[0].Order)

	_, err = s.AddSlides(ctx, "missing", verses(ps23(5)))
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMoveSlide_RenumbersChangedOnly(t *testing.T) {
	ctx := context.Background()
	s, rec := newService(t)
	p, err := s.Create(ctx, "Deck")
	require.NoError(t, err)

	jn := func(v int) verse.Address { return verse.Address{Book: "John", Chapter: 3, Verse: v} }
	_, err = s.AddSlides(ctx, p.ID, verses(jn(14), jn(15), jn(16), jn(17)))
	require.NoError(t, err)

	moved, err := s.MoveSlide(ctx, p.ID, 2, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"John 3:16", "John 3:14", "John 3:15", "John 3:17"}, refsOf(moved))
	require.Len(t, rec.updates, 1)
	require.Len(t, rec.updates[0], 3, "the last slide keeps its order")

	slides, err := s.Slides(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, refsOf(moved), refsOf(slides))

	_, err = s.MoveSlide(ctx, p.ID, 1, 1)
	require.NoError(t, err)
	require.Len(t, rec.updates, 1, "no-op move writes nothing")

	_, err = s.MoveSlide(ctx, p.ID, 0, 4)
	require.ErrorIs(t, err, ErrSlideOutside)
}

func TestSeedRomanRoad(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)

	seeded, err := s.SeedRomanRoad(ctx)
	require.NoError(t, err)
	require.True(t, seeded)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.Equal(t, RoadName, list[0].Name)

	slides, err := s.Slides(ctx, list[0].ID)
	require.NoError(t, err)
	require.Equal(t, []string{
		"Romans 3:23", "Romans 6:23", "Romans 5:8", "Romans 10:9", "Romans 10:10", "Romans 10:13",
	}, refsOf(slides))
	require.Equal(t, "For whosoever shall call upon the name of the Lord shall be saved.", slides[5].Text)

	seeded, err = s.SeedRomanRoad(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
}

func TestSeedRomanRoad_SkipsWhenAnyExists(t *testing.T) {
	ctx := context.Background()
	s, _ := newService(t)
	_, err := s.Create(ctx, "Mine")
	require.NoError(t, err)

	seeded, err := s.SeedRomanRoad(ctx)
	require.NoError(t, err)
	require.False(t, seeded)
}
