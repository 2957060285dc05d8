// Package bleve is the whole-word verse index. Documents live in a bleve
// index; per-book bookkeeping (content hash, verse count) lives in a bbolt
// file inside the index directory.
package bleve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	bquery "github.com/blevesearch/bleve/v2/search/query"
	"go.etcd.io/bbolt"

	"bibleidx/internal/core/verse"
)

var errNotOpen = errors.New("index is not open")

// VerseDoc is one verse to index.
type VerseDoc struct {
	Chapter int
	Verse   int
	Text    string
}

type Index struct {
	mu       sync.Mutex
	path     string
	metaPath string
	idx      bleve.Index
	meta     *bbolt.DB
}

func Open(path string) (*Index, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("index path is required")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, err
	}

	var idx bleve.Index
	if _, err := os.Stat(filepath.Join(path, "index_meta.json")); err == nil {
		idx, err = bleve.Open(path)
		if err != nil {
			return nil, err
		}
	} else {
		var err error
		idx, err = bleve.New(path, buildMapping())
		if err != nil {
			return nil, err
		}
	}

	metaPath := filepath.Join(path, "bidx-meta.db")
	meta, err := bbolt.Open(metaPath, 0o600, nil)
	if err != nil {
		_ = idx.Close()
		return nil, err
	}

	s := &Index{path: path, metaPath: metaPath, idx: idx, meta: meta}
	if err := s.ensureBuckets(); err != nil {
		_ = meta.Close()
		_ = idx.Close()
		return nil, err
	}
	return s, nil
}

func (s *Index) Close() error {
	if s == nil {
		return nil
	}
	if s.idx != nil {
		_ = s.idx.Close()
	}
	if s.meta != nil {
		_ = s.meta.Close()
	}
	return nil
}

func (s *Index) Path() string { return s.path }

// BookHash returns the content hash recorded when book was last indexed.
func (s *Index) BookHash(book string) (string, bool, error) {
	if s == nil || s.meta == nil {
		return "", false, errNotOpen
	}
	meta, ok, err := s.bookMeta(book)
	return meta.Hash, ok, err
}

// ReplaceBook swaps every indexed verse of book for verses and records hash.
func (s *Index) ReplaceBook(book string, hash string, verses []VerseDoc) error {
	if s == nil || s.idx == nil {
		return errNotOpen
	}
	book = strings.TrimSpace(book)
	if book == "" {
		return fmt.Errorf("book is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	old, _, err := s.bookMeta(book)
	if err != nil {
		return err
	}

	batch := s.idx.NewBatch()
	deleteVerseDocs(batch, book, old.VerseCount)
	bookIdx := verse.BookIndex(book)
	if bookIdx < 0 {
		bookIdx = len(verse.CanonicalBooks)
	}
	for i, v := range verses {
		doc := map[string]any{
			"book":       book,
			"book_index": bookIdx,
			"chapter":    v.Chapter,
			"verse":      v.Verse,
			"text":       v.Text,
		}
		if err := batch.Index(verseDocID(book, i), doc); err != nil {
			return err
		}
	}
	if err := s.idx.Batch(batch); err != nil {
		return err
	}

	return s.meta.Update(func(tx *bbolt.Tx) error {
		buf, err := encode(BookMeta{Hash: strings.TrimSpace(hash), VerseCount: len(verses), IndexedAt: nowUnix()})
		if err != nil {
			return err
		}
		return mustBucket(tx, bucketBooks).Put([]byte(book), buf)
	})
}

// DeleteBook drops book from the index.
func (s *Index) DeleteBook(book string) error {
	if s == nil || s.idx == nil {
		return errNotOpen
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	old, ok, err := s.bookMeta(book)
	if err != nil || !ok {
		return err
	}
	batch := s.idx.NewBatch()
	deleteVerseDocs(batch, book, old.VerseCount)
	if err := s.idx.Batch(batch); err != nil {
		return err
	}
	return s.meta.Update(func(tx *bbolt.Tx) error {
		return mustBucket(tx, bucketBooks).Delete([]byte(book))
	})
}

// Count returns the number of indexed verses.
func (s *Index) Count() (uint64, error) {
	if s == nil || s.idx == nil {
		return 0, errNotOpen
	}
	return s.idx.DocCount()
}

// SearchWords finds verses containing every word of query as whole words,
// restricted to books, in canonical order. limit <= 0 returns every hit.
func (s *Index) SearchWords(ctx context.Context, query string, books []string, limit int) ([]verse.Address, error) {
	if s == nil || s.idx == nil {
		return nil, errNotOpen
	}
	query = strings.TrimSpace(query)
	if query == "" || len(books) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		n, err := s.idx.DocCount()
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil
		}
		limit = int(n)
	}

	textQ := bleve.NewMatchQuery(query)
	textQ.SetField("text")
	textQ.SetOperator(bquery.MatchQueryOperatorAnd)

	bookQs := make([]bquery.Query, 0, len(books))
	for _, b := range books {
		bookQs = append(bookQs, termQuery("book", b))
	}
	q := bleve.NewConjunctionQuery(textQ, bleve.NewDisjunctionQuery(bookQs...))

	req := bleve.NewSearchRequestOptions(q, limit, 0, false)
	req.Fields = []string{"book", "chapter", "verse"}
	req.SortBy([]string{"book_index", "book", "chapter", "verse"})

	res, err := s.idx.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	out := make([]verse.Address, 0, len(res.Hits))
	for _, hit := range res.Hits {
		var a verse.Address
		if v, ok := hit.Fields["book"].(string); ok {
			a.Book = v
		}
		if v, ok := toInt(hit.Fields["chapter"]); ok {
			a.Chapter = v
		}
		if v, ok := toInt(hit.Fields["verse"]); ok {
			a.Verse = v
		}
		if a.Book == "" {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func buildMapping() mapping.IndexMapping {
	idxMapping := bleve.NewIndexMapping()
	idxMapping.DefaultAnalyzer = "standard"

	doc := bleve.NewDocumentMapping()
	doc.Dynamic = false

	keyword := bleve.NewTextFieldMapping()
	keyword.Analyzer = "keyword"
	keyword.Store = true
	keyword.Index = true
	keyword.DocValues = true

	text := bleve.NewTextFieldMapping()
	text.Analyzer = "standard"
	text.Store = false
	text.Index = true

	num := bleve.NewNumericFieldMapping()
	num.Store = true
	num.Index = true
	num.DocValues = true

	doc.AddFieldMappingsAt("book", keyword)
	doc.AddFieldMappingsAt("book_index", num)
	doc.AddFieldMappingsAt("chapter", num)
	doc.AddFieldMappingsAt("verse", num)
	doc.AddFieldMappingsAt("text", text)

	idxMapping.DefaultMapping = doc
	return idxMapping
}

func termQuery(field string, value string) bquery.Query {
	q := bleve.NewTermQuery(value)
	q.SetField(field)
	return q
}

func deleteVerseDocs(batch *bleve.Batch, book string, count int) {
	for i := 0; i < count; i++ {
		batch.Delete(verseDocID(book, i))
	}
}

func verseDocID(book string, i int) string {
	return strings.ReplaceAll(book, "|", "%7C") + "|" + strconv.Itoa(i)
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case float32:
		return int(t), true
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case uint64:
		return int(t), true
	case uint32:
		return int(t), true
	default:
		return 0, false
	}
}
