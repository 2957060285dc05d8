// Package indexer builds the word index from corpus documents. Books whose
// document hash is unchanged since the last build are skipped.
package indexer

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"runtime"

	"github.com/zeebo/blake3"
	"golang.org/x/sync/errgroup"

	"bibleidx/internal/core/corpus"
	"bibleidx/internal/index/bleve"
)

// Target is the index being built. *bleve.Index implements it.
type Target interface {
	BookHash(book string) (string, bool, error)
	ReplaceBook(book string, hash string, verses []bleve.VerseDoc) error
	DeleteBook(book string) error
	Books() (map[string]bleve.BookMeta, error)
}

type Options struct {
	// Workers bounds concurrent document reads; writes are always serial.
	Workers int
	// Force reindexes every book regardless of hash.
	Force  bool
	Logger *slog.Logger
}

type Stats struct {
	Books   int `json:"books"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"`
	Removed int `json:"removed"`
	Verses  int `json:"verses"`
}

type plan struct {
	book   string
	hash   string
	skip   bool
	verses []bleve.VerseDoc
}

// Build reads every book listed by the corpus index and brings t up to date.
func Build(ctx context.Context, src corpus.Source, t Target, opts Options) (Stats, error) {
	if src == nil {
		return Stats{}, fmt.Errorf("corpus source is required")
	}
	if t == nil {
		return Stats{}, fmt.Errorf("index is required")
	}
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	raw, err := src.Load(corpus.IndexDocument)
	if err != nil {
		return Stats{}, fmt.Errorf("load %s: %w", corpus.IndexDocument, err)
	}
	names, err := corpus.DecodeBookNames(raw)
	if err != nil {
		return Stats{}, &corpus.DecodeError{Document: corpus.IndexDocument, Err: err}
	}

	plans := make([]plan, len(names))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p, err := readBook(src, t, name, opts.Force)
			if err != nil {
				return err
			}
			plans[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	st := Stats{Books: len(names)}
	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		if p.skip {
			st.Skipped++
			continue
		}
		if err := t.ReplaceBook(p.book, p.hash, p.verses); err != nil {
			return st, fmt.Errorf("index %s: %w", p.book, err)
		}
		st.Indexed++
		st.Verses += len(p.verses)
		log.Debug("book indexed", "book", p.book, "verses", len(p.verses))
	}

	indexed, err := t.Books()
	if err != nil {
		return st, err
	}
	listed := make(map[string]struct{}, len(names))
	for _, n := range names {
		listed[n] = struct{}{}
	}
	for book := range indexed {
		if _, ok := listed[book]; ok {
			continue
		}
		if err := t.DeleteBook(book); err != nil {
			return st, fmt.Errorf("remove %s: %w", book, err)
		}
		st.Removed++
	}

	log.Info("word index built", "books", st.Books, "indexed", st.Indexed, "skipped", st.Skipped, "removed", st.Removed)
	return st, nil
}

func readBook(src corpus.Source, t Target, name string, force bool) (plan, error) {
	doc := corpus.BookDocument(name)
	data, err := src.Load(doc)
	if err != nil {
		return plan{}, fmt.Errorf("load %s: %w", doc, err)
	}
	hash := Hash(data)

	if !force {
		old, ok, err := t.BookHash(name)
		if err != nil {
			return plan{}, err
		}
		if ok && old == hash {
			return plan{book: name, skip: true}, nil
		}
	}

	book, err := corpus.DecodeBook(data, name)
	if err != nil {
		return plan{}, &corpus.DecodeError{Document: doc, Err: err}
	}
	var verses []bleve.VerseDoc
	for _, ch := range book.Chapters {
		for _, v := range ch.Verses {
			verses = append(verses, bleve.VerseDoc{Chapter: ch.Number, Verse: v.Number, Text: v.Text})
		}
	}
	return plan{book: name, hash: hash, verses: verses}, nil
}

// Hash is the content hash recorded per book document.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
