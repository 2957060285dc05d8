// Package presentation manages named, ordered decks of verse slides.
package presentation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

var (
	ErrNotFound     = errors.New("presentation not found")
	ErrSlideOutside = errors.New("slide position out of range")
)

// RoadName is the name of the seeded presentation.
const RoadName = "Roman Road"

// SlideVerse is one verse to append to a presentation.
type SlideVerse struct {
	Address verse.Address `json:"address"`
	Text    string        `json:"text"`
}

var romanRoad = []SlideVerse{
	{verse.Address{Book: "Romans", Chapter: 3, Verse: 23}, "For all have sinned, and come short of the glory of God;"},
	{verse.Address{Book: "Romans", Chapter: 6, Verse: 23}, "For the wages of sin is death; but the gift of God is eternal life through Jesus Christ our Lord."},
	{verse.Address{Book: "Romans", Chapter: 5, Verse: 8}, "But God commendeth his love toward us, in that, while we were yet sinners, Christ died for us."},
	{verse.Address{Book: "Romans", Chapter: 10, Verse: 9}, "That if thou shalt confess with thy mouth the Lord Jesus, and shalt believe in thine heart that God hath raised him from the dead, thou shalt be saved."},
	{verse.Address{Book: "Romans", Chapter: 10, Verse: 10}, "For with the heart man believeth unto righteousness; and with the mouth confession is made unto salvation."},
	{verse.Address{Book: "Romans", Chapter: 10, Verse: 13}, "For whosoever shall call upon the name of the Lord shall be saved."},
}

type Service struct {
	ps    store.PresentationStore
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(ps store.PresentationStore, opts ...Option) *Service {
	s := &Service{
		ps:    ps,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Create(ctx context.Context, name string) (store.Presentation, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return store.Presentation{}, fmt.Errorf("presentation name is required")
	}
	p := store.Presentation{ID: s.newID(), Name: name, CreatedAt: s.now().UnixMilli()}
	if err := s.ps.CreatePresentation(ctx, p); err != nil {
		return store.Presentation{}, fmt.Errorf("create presentation: %w", err)
	}
	s.log.Info("presentation created", "id", p.ID, "name", p.Name)
	return p, nil
}

// Delete removes a presentation and its slides. Unknown ids are not an error.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.ps.DeletePresentation(ctx, id); err != nil {
		return fmt.Errorf("delete presentation %s: %w", id, err)
	}
	return nil
}

// List returns every presentation, newest first.
func (s *Service) List(ctx context.Context) ([]store.Presentation, error) {
	return s.ps.ListPresentations(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (store.Presentation, error) {
	p, ok, err := s.ps.GetPresentation(ctx, id)
	if err != nil {
		return store.Presentation{}, err
	}
	if !ok {
		return store.Presentation{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return p, nil
}

// Slides returns the slides of presentation id in display order.
func (s *Service) Slides(ctx context.Context, id string) ([]store.Slide, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	return s.ps.Slides(ctx, id)
}

// AddSlides appends verses after the existing slides, keeping their order.
func (s *Service) AddSlides(ctx context.Context, id string, verses []SlideVerse) ([]store.Slide, error) {
	existing, err := s.Slides(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(verses) == 0 {
		return nil, nil
	}
	base := len(existing)
	if base > 0 && existing[base-1].Order >= base {
		base = existing[base-1].Order + 1
	}
	added := make([]store.Slide, 0, len(verses))
	for i, v := range verses {
		added = append(added, store.Slide{
			ID:             s.newID(),
			PresentationID: id,
			Book:           v.Address.Book,
			Chapter:        v.Address.Chapter,
			Verse:          v.Address.Verse,
			Text:           v.Text,
			Order:          base + i,
		})
	}
	if err := s.ps.InsertSlides(ctx, added); err != nil {
		return nil, fmt.Errorf("add slides: %w", err)
	}
	return added, nil
}

func (s *Service) DeleteSlide(ctx context.Context, slideID string) error {
	if err := s.ps.DeleteSlide(ctx, slideID); err != nil {
		return fmt.Errorf("delete slide %s: %w", slideID, err)
	}
	return nil
}

// MoveSlide moves the slide at position from to position to (both zero
// based) and renumbers the deck 0..n-1. Only slides whose order changes are
// written.
func (s *Service) MoveSlide(ctx context.Context, id string, from, to int) ([]store.Slide, error) {
	slides, err := s.Slides(ctx, id)
	if err != nil {
		return nil, err
	}
	n := len(slides)
	if from < 0 || from >= n || to < 0 || to >= n {
		return nil, fmt.Errorf("%w: move %d -> %d in %d slides", ErrSlideOutside, from, to, n)
	}

	moved := slides[from]
	slides = append(slides[:from], slides[from+1:]...)
	slides = append(slides[:to], append([]store.Slide{moved}, slides[to:]...)...)

	changes := map[string]int{}
	for i := range slides {
		if slides[i].Order != i {
			slides[i].Order = i
			changes[slides[i].ID] = i
		}
	}
	if len(changes) == 0 {
		return slides, nil
	}
	if err := s.ps.UpdateSlideOrders(ctx, changes); err != nil {
		return nil, fmt.Errorf("move slide: %w", err)
	}
	return slides, nil
}

// SeedRomanRoad creates the Roman Road presentation when no presentation
// exists yet. It reports whether anything was created.
func (s *Service) SeedRomanRoad(ctx context.Context) (bool, error) {
	n, err := s.ps.CountPresentations(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	p, err := s.Create(ctx, RoadName)
	if err != nil {
		return false, err
	}
	if _, err := s.AddSlides(ctx, p.ID, romanRoad); err != nil {
		return false, err
	}
	return true, nil
}
