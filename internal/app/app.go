// Package app wires configuration into the running services shared by the
// CLI and the daemon.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"bibleidx/internal/annotation"
	"bibleidx/internal/config"
	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/indexer"
	"bibleidx/internal/core/ref"
	"bibleidx/internal/core/search"
	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/backend"
	"bibleidx/internal/index/bleve"
	"bibleidx/internal/index/store"
	"bibleidx/internal/logging"
	"bibleidx/internal/presentation"
)

type App struct {
	Config        config.Config
	Log           *slog.Logger
	Source        corpus.Source
	Corpus        *corpus.Accessor
	Store         store.Backend
	Annotations   *annotation.Store
	Presentations *presentation.Service
	Engine        *search.Engine

	wordsMu sync.Mutex
	words   *bleve.Index
}

type Option func(*openOptions)

type openOptions struct {
	source  corpus.Source
	onError annotation.ErrorHandler
}

// WithCorpusFS reads the corpus from fsys instead of cfg.Corpus.
func WithCorpusFS(fsys fs.FS) Option {
	return func(o *openOptions) { o.source = corpus.NewFSSource(fsys, "") }
}

// WithAnnotationErrors observes annotation persistence failures.
func WithAnnotationErrors(fn annotation.ErrorHandler) Option {
	return func(o *openOptions) { o.onError = fn }
}

func Open(cfg config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = logging.Discard()
	}
	var o openOptions
	for _, opt := range opts {
		opt(&o)
	}

	src := o.source
	if src == nil {
		var err error
		src, err = corpus.NewDirSource(cfg.Corpus)
		if err != nil {
			return nil, fmt.Errorf("open corpus: %w", err)
		}
	}

	st, err := backend.Open(cfg.Backend, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", backend.NormalizeName(cfg.Backend), err)
	}

	a := &App{
		Config: cfg,
		Log:    log,
		Source: src,
		Corpus: corpus.NewAccessor(src, corpus.WithLogger(log.With("component", "corpus"))),
		Store:  st,
	}
	annOpts := []annotation.Option{annotation.WithLogger(log.With("component", "annotation"))}
	if o.onError != nil {
		annOpts = append(annOpts, annotation.WithErrorHandler(o.onError))
	}
	a.Annotations = annotation.New(st, annOpts...)
	a.Presentations = presentation.New(st, presentation.WithLogger(log.With("component", "presentation")))
	a.Engine = search.NewEngine(a.Corpus,
		search.WithWordIndex(lazyWords{a}),
		search.WithCache(cfg.Search.CacheSize),
		search.WithLogger(log.With("component", "search")),
	)
	return a, nil
}

// WordIndex opens the word index on first use.
func (a *App) WordIndex() (*bleve.Index, error) {
	a.wordsMu.Lock()
	defer a.wordsMu.Unlock()
	if a.words != nil {
		return a.words, nil
	}
	if strings.TrimSpace(a.Config.WordIndex) == "" {
		return nil, search.ErrNoWordIndex
	}
	idx, err := bleve.Open(a.Config.WordIndex)
	if err != nil {
		return nil, fmt.Errorf("open word index: %w", err)
	}
	a.words = idx
	return idx, nil
}

// BuildIndex brings the word index up to date with the corpus and drops
// cached search results.
func (a *App) BuildIndex(ctx context.Context, force bool, workers int) (indexer.Stats, error) {
	idx, err := a.WordIndex()
	if err != nil {
		return indexer.Stats{}, err
	}
	st, err := indexer.Build(ctx, a.Source, idx, indexer.Options{
		Workers: workers,
		Force:   force,
		Logger:  a.Log.With("component", "indexer"),
	})
	if err != nil {
		return st, err
	}
	a.Engine.Invalidate()
	return st, nil
}

// CorpusChanged drops every cache derived from corpus documents.
func (a *App) CorpusChanged() {
	a.Corpus.Reset()
	a.Engine.Invalidate()
}

// VerseText returns the text of one verse.
func (a *App) VerseText(addr verse.Address) (string, error) {
	ch, err := a.Corpus.Chapter(addr.Book, addr.Chapter)
	if err != nil {
		return "", err
	}
	for _, v := range ch.Verses {
		if v.Number == addr.Verse {
			return v.Text, nil
		}
	}
	return "", &corpus.NotFoundError{Resource: "verse", Name: addr.Reference()}
}

// Resolve parses reference and returns the verses it selects that exist in
// the corpus. A whole-chapter reference selects every verse of the chapter.
func (a *App) Resolve(reference string) ([]verse.Address, error) {
	r, err := ref.Parse(reference)
	if err != nil {
		return nil, err
	}
	ch, err := a.Corpus.Chapter(r.Book, r.Chapter)
	if err != nil {
		return nil, err
	}
	var out []verse.Address
	for _, v := range ch.Verses {
		if r.Contains(v.Number) {
			out = append(out, verse.Address{Book: r.Book, Chapter: r.Chapter, Verse: v.Number})
		}
	}
	if len(out) == 0 {
		return nil, &corpus.NotFoundError{Resource: "verse", Name: r.String()}
	}
	return out, nil
}

func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	a.wordsMu.Lock()
	if a.words != nil {
		errs = append(errs, a.words.Close())
		a.words = nil
	}
	a.wordsMu.Unlock()
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	return errors.Join(errs...)
}

type lazyWords struct{ a *App }

func (w lazyWords) SearchWords(ctx context.Context, query string, books []string, limit int) ([]verse.Address, error) {
	idx, err := w.a.WordIndex()
	if err != nil {
		return nil, err
	}
	return idx.SearchWords(ctx, query, books, limit)
}
