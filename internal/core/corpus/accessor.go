// Package corpus loads the read-only scripture corpus: one index document
// naming the books in canonical order and one JSON document per book.
package corpus

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Accessor loads and caches corpus documents. Entries are never evicted;
// Reset drops everything when the documents change on disk.
type Accessor struct {
	src Source
	log *slog.Logger

	flight singleflight.Group

	mu    sync.RWMutex
	names []string
	books map[string]Book
}

type Option func(*Accessor)

func WithLogger(l *slog.Logger) Option {
	return func(a *Accessor) {
		if l != nil {
			a.log = l
		}
	}
}

func NewAccessor(src Source, opts ...Option) *Accessor {
	a := &Accessor{
		src:   src,
		log:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		books: map[string]Book{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// BookNames returns the book names in canonical order.
func (a *Accessor) BookNames() ([]string, error) {
	if a == nil || a.src == nil {
		return nil, fmt.Errorf("accessor is not configured")
	}

	a.mu.RLock()
	cached := a.names
	a.mu.RUnlock()
	if cached != nil {
		return cloneNames(cached), nil
	}

	v, err, _ := a.flight.Do("names", func() (any, error) {
		data, err := a.src.Load(IndexDocument)
		if err != nil {
			if isNotFound(err) {
				return nil, &NotFoundError{Resource: "document", Name: IndexDocument, Err: err}
			}
			return nil, fmt.Errorf("load %s: %w", IndexDocument, err)
		}
		names, err := DecodeBookNames(data)
		if err != nil {
			return nil, &DecodeError{Document: IndexDocument, Err: err}
		}
		if names == nil {
			names = []string{}
		}

		a.mu.Lock()
		a.names = names
		a.mu.Unlock()
		a.log.Debug("corpus index loaded", "books", len(names))
		return names, nil
	})
	if err != nil {
		return nil, err
	}
	return cloneNames(v.([]string)), nil
}

// Book returns the named book, loading it on first use.
func (a *Accessor) Book(name string) (Book, error) {
	if a == nil || a.src == nil {
		return Book{}, fmt.Errorf("accessor is not configured")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Book{}, &NotFoundError{Resource: "book", Name: name}
	}

	a.mu.RLock()
	b, ok := a.books[name]
	a.mu.RUnlock()
	if ok {
		return b, nil
	}

	v, err, _ := a.flight.Do("book:"+name, func() (any, error) {
		doc := BookDocument(name)
		data, err := a.src.Load(doc)
		if err != nil {
			if isNotFound(err) {
				return nil, &NotFoundError{Resource: "book", Name: name, Err: err}
			}
			return nil, fmt.Errorf("load %s: %w", doc, err)
		}
		book, err := DecodeBook(data, name)
		if err != nil {
			return nil, &DecodeError{Document: doc, Err: err}
		}

		a.mu.Lock()
		a.books[name] = book
		a.mu.Unlock()
		a.log.Debug("corpus book loaded", "book", name, "chapters", len(book.Chapters))
		return book, nil
	})
	if err != nil {
		return Book{}, err
	}
	return v.(Book), nil
}

// Chapter returns chapter n of the named book.
func (a *Accessor) Chapter(book string, n int) (Chapter, error) {
	b, err := a.Book(book)
	if err != nil {
		return Chapter{}, err
	}
	ch, ok := b.Chapter(n)
	if !ok {
		return Chapter{}, &ChapterError{Book: book, Chapter: n}
	}
	return ch, nil
}

// ChapterCount returns the number of chapters in book, or 0 when the book
// cannot be loaded.
func (a *Accessor) ChapterCount(book string) int {
	b, err := a.Book(book)
	if err != nil {
		return 0
	}
	return len(b.Chapters)
}

// Reset forgets every cached document. A load already in flight may still
// store its result.
func (a *Accessor) Reset() {
	if a == nil {
		return
	}
	a.mu.Lock()
	a.names = nil
	a.books = map[string]Book{}
	a.mu.Unlock()
}

func cloneNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	return out
}
