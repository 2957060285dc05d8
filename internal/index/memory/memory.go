// Package memory is an in-process store backend. Nothing survives Close.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

type Store struct {
	mu            sync.RWMutex
	records       map[string]store.Record
	presentations map[string]store.Presentation
	slides        map[string]store.Slide

	// fail, when set, is returned by every call; tests use it to simulate
	// an unavailable backend.
	fail error
}

var _ store.Backend = (*Store)(nil)

func New() *Store {
	return &Store{
		records:       map[string]store.Record{},
		presentations: map[string]store.Presentation{},
		slides:        map[string]store.Slide{},
	}
}

func (s *Store) Backend() string { return "memory" }

func (s *Store) Close() error { return nil }

// FailWith makes subsequent calls return err until cleared with nil.
func (s *Store) FailWith(err error) {
	s.mu.Lock()
	s.fail = err
	s.mu.Unlock()
}

func (s *Store) Get(_ context.Context, key string) (store.Record, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return store.Record{}, false, s.fail
	}
	r, ok := s.records[key]
	return r, ok, nil
}

func (s *Store) List(_ context.Context, f store.Filter) ([]store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}

	out := make([]store.Record, 0)
	for _, r := range s.records {
		if f.Book != "" {
			if r.Book != f.Book {
				continue
			}
			if f.Chapter > 0 && r.Chapter != f.Chapter {
				continue
			}
		}
		if f.Bookmarked && !r.Bookmarked {
			continue
		}
		if f.HasNote && r.Note == "" {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return verse.Less(out[i].Address(), out[j].Address()) })
	return out, nil
}

func (s *Store) Apply(_ context.Context, b store.Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	for _, r := range b.Upserts {
		if strings.TrimSpace(r.Book) == "" {
			return fmt.Errorf("record book is required")
		}
	}
	for _, k := range b.Deletes {
		delete(s.records, k)
	}
	for _, r := range b.Upserts {
		s.records[r.Key()] = r
	}
	return nil
}

func (s *Store) CreatePresentation(_ context.Context, p store.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	if p.ID == "" {
		return fmt.Errorf("presentation id is required")
	}
	if _, ok := s.presentations[p.ID]; ok {
		return fmt.Errorf("presentation %s already exists", p.ID)
	}
	s.presentations[p.ID] = p
	return nil
}

func (s *Store) DeletePresentation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.presentations, id)
	for sid, sl := range s.slides {
		if sl.PresentationID == id {
			delete(s.slides, sid)
		}
	}
	return nil
}

func (s *Store) GetPresentation(_ context.Context, id string) (store.Presentation, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return store.Presentation{}, false, s.fail
	}
	p, ok := s.presentations[id]
	return p, ok, nil
}

func (s *Store) ListPresentations(_ context.Context) ([]store.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]store.Presentation, 0, len(s.presentations))
	for _, p := range s.presentations {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt != out[j].CreatedAt {
			return out[i].CreatedAt > out[j].CreatedAt
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CountPresentations(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return 0, s.fail
	}
	return len(s.presentations), nil
}

func (s *Store) Slides(_ context.Context, presentationID string) ([]store.Slide, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.fail != nil {
		return nil, s.fail
	}
	out := make([]store.Slide, 0)
	for _, sl := range s.slides {
		if sl.PresentationID == presentationID {
			out = append(out, sl)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) InsertSlides(_ context.Context, slides []store.Slide) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	for _, sl := range slides {
		if _, ok := s.presentations[sl.PresentationID]; !ok {
			return fmt.Errorf("presentation %s not found", sl.PresentationID)
		}
		if sl.ID == "" {
			return fmt.Errorf("slide id is required")
		}
	}
	for _, sl := range slides {
		s.slides[sl.ID] = sl
	}
	return nil
}

func (s *Store) DeleteSlide(_ context.Context, slideID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	delete(s.slides, slideID)
	return nil
}

func (s *Store) UpdateSlideOrders(_ context.Context, orders map[string]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail != nil {
		return s.fail
	}
	for id := range orders {
		if _, ok := s.slides[id]; !ok {
			return fmt.Errorf("slide %s not found", id)
		}
	}
	for id, order := range orders {
		sl := s.slides[id]
		sl.Order = order
		s.slides[id] = sl
	}
	return nil
}
