package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"bibleidx/internal/core/cache"
	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/group"
	"bibleidx/internal/core/verse"
)

var ErrNoWordIndex = errors.New("word index is not configured")

// Corpus is the read side of corpus.Accessor that scanning needs.
type Corpus interface {
	BookNames() ([]string, error)
	Book(name string) (corpus.Book, error)
}

// WordIndex answers whole-word queries restricted to books, returning
// matches in canonical order.
type WordIndex interface {
	SearchWords(ctx context.Context, query string, books []string, limit int) ([]verse.Address, error)
}

type Request struct {
	Query string      `json:"query"`
	Group group.Group `json:"group,omitempty"`
	Mode  Mode        `json:"mode,omitempty"`
	// Limit caps the result count; 0 means no cap.
	Limit int `json:"limit,omitempty"`
}

type Result struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
	Text    string `json:"text"`
	Snippet string `json:"snippet,omitempty"`
}

func (r Result) Address() verse.Address {
	return verse.Address{Book: r.Book, Chapter: r.Chapter, Verse: r.Verse}
}

func (r Result) Reference() string { return r.Address().Reference() }

type Engine struct {
	corpus Corpus
	words  WordIndex
	cache  *cache.LRU[string, []Result]
	log    *slog.Logger
}

type Option func(*Engine)

func WithWordIndex(w WordIndex) Option {
	return func(e *Engine) { e.words = w }
}

// WithCache keeps the last size result sets keyed by request.
func WithCache(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.cache = cache.NewLRU[string, []Result](size)
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(c Corpus, opts ...Option) *Engine {
	e := &Engine{
		corpus: c,
		log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Scan runs req to completion. An empty query returns no results without
// touching the corpus. ctx is checked between books; a cancelled scan
// returns ctx.Err() and no results.
func (e *Engine) Scan(ctx context.Context, req Request) ([]Result, error) {
	if e == nil || e.corpus == nil {
		return nil, fmt.Errorf("engine is not configured")
	}
	req.Query = strings.TrimSpace(req.Query)
	if req.Query == "" {
		return nil, nil
	}
	if req.Group == "" {
		req.Group = group.All
	}
	mode, err := ParseMode(string(req.Mode))
	if err != nil {
		return nil, err
	}
	req.Mode = mode
	if req.Limit < 0 {
		req.Limit = 0
	}

	key := cacheKey(req)
	if hit, ok := e.cache.Get(key); ok {
		return cloneResults(hit), nil
	}

	names, err := e.corpus.BookNames()
	if err != nil {
		return nil, err
	}
	books := group.FilterBooks(req.Group, names)

	var out []Result
	if req.Mode == ModeIndexed {
		out, err = e.scanIndexed(ctx, req, books)
	} else {
		out, err = e.scanText(ctx, req, books)
	}
	if err != nil {
		return nil, err
	}

	e.cache.Put(key, cloneResults(out))
	return out, nil
}

// Search is Scan with failures turned into an empty result. Errors other
// than cancellation are logged.
func (e *Engine) Search(ctx context.Context, req Request) []Result {
	res, err := e.Scan(ctx, req)
	if err != nil {
		if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			e.log.Warn("search failed", "query", req.Query, "group", req.Group, "err", err)
		}
		return nil
	}
	return res
}

// Invalidate drops cached result sets, e.g. after the word index changed.
func (e *Engine) Invalidate() {
	if e != nil {
		e.cache.Purge()
	}
}

func (e *Engine) scanText(ctx context.Context, req Request, books []string) ([]Result, error) {
	m := newMatcher(req.Query, req.Mode)
	terms := Terms(req.Query, req.Mode)

	var out []Result
	for _, name := range books {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		book, err := e.corpus.Book(name)
		if err != nil {
			return nil, err
		}
		for _, ch := range book.Chapters {
			for _, v := range ch.Verses {
				if !m.Match(v.Text) {
					continue
				}
				out = append(out, Result{
					Book:    name,
					Chapter: ch.Number,
					Verse:   v.Number,
					Text:    v.Text,
					Snippet: Snippet(v.Text, terms),
				})
				if req.Limit > 0 && len(out) >= req.Limit {
					return out, nil
				}
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Engine) scanIndexed(ctx context.Context, req Request, books []string) ([]Result, error) {
	if e.words == nil {
		return nil, ErrNoWordIndex
	}
	if len(books) == 0 {
		return nil, nil
	}
	addrs, err := e.words.SearchWords(ctx, req.Query, books, req.Limit)
	if err != nil {
		return nil, err
	}

	terms := Terms(req.Query, req.Mode)
	out := make([]Result, 0, len(addrs))
	for _, a := range addrs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		book, err := e.corpus.Book(a.Book)
		if err != nil {
			return nil, err
		}
		ch, ok := book.Chapter(a.Chapter)
		if !ok {
			e.log.Debug("word index hit outside corpus", "ref", a.Reference())
			continue
		}
		for _, v := range ch.Verses {
			if v.Number != a.Verse {
				continue
			}
			out = append(out, Result{
				Book:    a.Book,
				Chapter: a.Chapter,
				Verse:   a.Verse,
				Text:    v.Text,
				Snippet: Snippet(v.Text, terms),
			})
			break
		}
	}
	return out, nil
}

func cacheKey(req Request) string {
	return fmt.Sprintf("mode=%s|group=%s|limit=%d|q=%s", req.Mode, req.Group, req.Limit, req.Query)
}

func cloneResults(in []Result) []Result {
	if len(in) == 0 {
		return nil
	}
	out := make([]Result, len(in))
	copy(out, in)
	return out
}
