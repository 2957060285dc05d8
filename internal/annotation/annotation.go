// Package annotation keeps per-verse highlights, notes and bookmarks.
//
// Every mutating call reads the affected records, edits them, and hands the
// result to persistence as one batch: records left empty are deleted, never
// stored. Persistence failures do not reach the caller. They are logged and
// passed to the handler installed with WithErrorHandler.
package annotation

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

// ErrorHandler observes swallowed persistence failures. op names the
// operation, e.g. "set-highlight".
type ErrorHandler func(op string, err error)

type Store struct {
	mu      sync.Mutex
	p       store.Persistence
	log     *slog.Logger
	onError ErrorHandler
	now     func() time.Time
}

type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

func WithErrorHandler(fn ErrorHandler) Option {
	return func(s *Store) { s.onError = fn }
}

// WithClock replaces time.Now for UpdatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func New(p store.Persistence, opts ...Option) *Store {
	s := &Store{
		p:   p,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForChapter returns the records of one chapter keyed by verse key. Verses
// without annotations are absent.
func (s *Store) ForChapter(ctx context.Context, book string, chapter int) map[string]store.Record {
	out := map[string]store.Record{}
	if strings.TrimSpace(book) == "" || chapter <= 0 {
		return out
	}
	recs, err := s.p.List(ctx, store.Filter{Book: book, Chapter: chapter})
	if err != nil {
		s.fail("for-chapter", err)
		return out
	}
	for _, r := range recs {
		out[r.Key()] = r
	}
	return out
}

func (s *Store) Get(ctx context.Context, a verse.Address) (store.Record, bool) {
	r, ok, err := s.p.Get(ctx, a.Key())
	if err != nil {
		s.fail("get", err)
		return store.Record{}, false
	}
	return r, ok
}

// Bookmarks lists bookmarked verses in canonical order.
func (s *Store) Bookmarks(ctx context.Context) []store.Record {
	recs, err := s.p.List(ctx, store.Filter{Bookmarked: true})
	if err != nil {
		s.fail("list-bookmarks", err)
		return nil
	}
	return recs
}

// Notes lists verses carrying a note in canonical order.
func (s *Store) Notes(ctx context.Context) []store.Record {
	recs, err := s.p.List(ctx, store.Filter{HasNote: true})
	if err != nil {
		s.fail("list-notes", err)
		return nil
	}
	return recs
}

// SetHighlight sets color on every address. NoHighlight clears it.
func (s *Store) SetHighlight(ctx context.Context, color verse.HighlightColor, addrs ...verse.Address) {
	if !color.Valid() {
		s.fail("set-highlight", fmt.Errorf("invalid highlight color %q", color))
		return
	}
	s.update(ctx, "set-highlight", addrs, func(recs []store.Record) {
		for i := range recs {
			recs[i].Highlight = color
		}
	})
}

// ToggleBookmark treats addrs as one selection: when every address is
// already bookmarked the bookmarks are cleared, otherwise all are set.
func (s *Store) ToggleBookmark(ctx context.Context, addrs ...verse.Address) {
	s.update(ctx, "toggle-bookmark", addrs, func(recs []store.Record) {
		all := true
		for _, r := range recs {
			if !r.Bookmarked {
				all = false
				break
			}
		}
		for i := range recs {
			recs[i].Bookmarked = !all
		}
	})
}

// SetNote replaces the note of a. Blank text removes it.
func (s *Store) SetNote(ctx context.Context, text string, a verse.Address) {
	if strings.TrimSpace(text) == "" {
		text = ""
	}
	s.update(ctx, "set-note", []verse.Address{a}, func(recs []store.Record) {
		recs[0].Note = text
	})
}

func (s *Store) RemoveBookmark(ctx context.Context, a verse.Address) {
	s.update(ctx, "remove-bookmark", []verse.Address{a}, func(recs []store.Record) {
		recs[0].Bookmarked = false
	})
}

func (s *Store) ClearNote(ctx context.Context, a verse.Address) {
	s.update(ctx, "clear-note", []verse.Address{a}, func(recs []store.Record) {
		recs[0].Note = ""
	})
}

// update loads the records of addrs (fresh ones for unannotated verses),
// lets edit change them, and applies the outcome as a single batch. A read
// failure aborts before anything is written.
func (s *Store) update(ctx context.Context, op string, addrs []verse.Address, edit func([]store.Record)) {
	addrs = dedupe(addrs)
	if len(addrs) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	recs := make([]store.Record, len(addrs))
	existed := make([]bool, len(addrs))
	for i, a := range addrs {
		r, ok, err := s.p.Get(ctx, a.Key())
		if err != nil {
			s.fail(op, err)
			return
		}
		if !ok {
			r = store.NewRecord(a)
		}
		recs[i], existed[i] = r, ok
	}

	edit(recs)

	stamp := s.now().UnixMilli()
	var b store.Batch
	for i, r := range recs {
		if r.IsEmpty() {
			if existed[i] {
				b.Deletes = append(b.Deletes, r.Key())
			}
			continue
		}
		r.UpdatedAt = stamp
		b.Upserts = append(b.Upserts, r)
	}
	if b.Empty() {
		return
	}
	if err := s.p.Apply(ctx, b); err != nil {
		s.fail(op, err)
		return
	}
	s.log.Debug("annotations updated", "op", op, "upserts", len(b.Upserts), "deletes", len(b.Deletes))
}

func (s *Store) fail(op string, err error) {
	s.log.Warn("annotation persistence failed", "op", op, "backend", s.p.Backend(), "err", err)
	if s.onError != nil {
		s.onError(op, err)
	}
}

func dedupe(addrs []verse.Address) []verse.Address {
	if len(addrs) < 2 {
		return addrs
	}
	seen := make(map[string]struct{}, len(addrs))
	out := make([]verse.Address, 0, len(addrs))
	for _, a := range addrs {
		k := a.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
