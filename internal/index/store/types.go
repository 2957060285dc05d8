// Package store defines the persistence contracts shared by the annotation
// and presentation services and their backends.
package store

import (
	"context"

	"bibleidx/internal/core/verse"
)

// Record is the persisted annotation state of one verse.
type Record struct {
	Book       string               `json:"book"`
	Chapter    int                  `json:"chapter"`
	Verse      int                  `json:"verse"`
	Highlight  verse.HighlightColor `json:"highlight,omitempty"`
	Note       string               `json:"note,omitempty"`
	Bookmarked bool                 `json:"bookmarked,omitempty"`
	UpdatedAt  int64                `json:"updated_at"`
}

func NewRecord(a verse.Address) Record {
	return Record{Book: a.Book, Chapter: a.Chapter, Verse: a.Verse}
}

func (r Record) Address() verse.Address {
	return verse.Address{Book: r.Book, Chapter: r.Chapter, Verse: r.Verse}
}

func (r Record) Key() string { return r.Address().Key() }

// IsEmpty reports a record with nothing worth keeping. Empty records are
// deleted, never stored.
func (r Record) IsEmpty() bool {
	return r.Highlight == verse.NoHighlight && r.Note == "" && !r.Bookmarked
}

// Filter narrows List. Zero fields do not filter; Chapter is only
// honoured together with Book.
type Filter struct {
	Book       string
	Chapter    int
	Bookmarked bool
	HasNote    bool
}

// Batch is one atomic change set: every upsert and delete commits or none do.
type Batch struct {
	Upserts []Record
	Deletes []string // record keys
}

func (b Batch) Empty() bool { return len(b.Upserts) == 0 && len(b.Deletes) == 0 }

// Persistence stores annotation records keyed by verse key.
type Persistence interface {
	Backend() string
	Close() error

	Get(ctx context.Context, key string) (Record, bool, error)
	// List returns matching records in canonical verse order.
	List(ctx context.Context, f Filter) ([]Record, error)
	Apply(ctx context.Context, b Batch) error
}

type Presentation struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"` // unix millis
}

type Slide struct {
	ID             string `json:"id"`
	PresentationID string `json:"presentation_id"`
	Book           string `json:"book"`
	Chapter        int    `json:"chapter"`
	Verse          int    `json:"verse"`
	Text           string `json:"text"`
	Order          int    `json:"order"`
}

// PresentationStore persists presentations and their ordered slides.
// Deleting a presentation deletes its slides.
type PresentationStore interface {
	CreatePresentation(ctx context.Context, p Presentation) error
	DeletePresentation(ctx context.Context, id string) error
	GetPresentation(ctx context.Context, id string) (Presentation, bool, error)
	// ListPresentations returns presentations newest first.
	ListPresentations(ctx context.Context) ([]Presentation, error)
	CountPresentations(ctx context.Context) (int, error)

	// Slides returns the slides of a presentation by ascending Order.
	Slides(ctx context.Context, presentationID string) ([]Slide, error)
	InsertSlides(ctx context.Context, slides []Slide) error
	DeleteSlide(ctx context.Context, slideID string) error
	// UpdateSlideOrders sets Order for each slide id, atomically.
	UpdateSlideOrders(ctx context.Context, orders map[string]int) error
}

// Backend is a full persistence backend.
type Backend interface {
	Persistence
	PresentationStore
}

// PragmaReader is implemented by SQL backends that can report engine
// settings.
type PragmaReader interface {
	Pragmas(ctx context.Context, names ...string) (map[string]string, error)
}
