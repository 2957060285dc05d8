package bidxd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"bibleidx/internal/app"
	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/group"
	"bibleidx/internal/core/ref"
	"bibleidx/internal/core/search"
	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
	"bibleidx/internal/presentation"
	"bibleidx/internal/version"
)

// paramsError is reported to the caller as invalid params.
type paramsError struct{ msg string }

func (e *paramsError) Error() string { return e.msg }

func invalidParams(format string, args ...any) error {
	return &paramsError{msg: fmt.Sprintf(format, args...)}
}

type handlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// bind decodes params into P before calling fn. Missing params decode as
// the zero P.
func bind[P any](fn func(context.Context, P) (any, error)) handlerFunc {
	return func(ctx context.Context, raw json.RawMessage) (any, error) {
		var p P
		if len(raw) > 0 && string(raw) != "null" {
			if err := json.Unmarshal(raw, &p); err != nil {
				return nil, invalidParams("invalid params")
			}
		}
		return fn(ctx, p)
	}
}

type none struct{}

type Handlers struct {
	app *app.App
}

func NewHandlers(a *app.App) *Handlers {
	return &Handlers{app: a}
}

func (h *Handlers) methods() map[string]handlerFunc {
	return map[string]handlerFunc{
		"ping":    bind(func(context.Context, none) (any, error) { return "pong", nil }),
		"version": bind(func(context.Context, none) (any, error) { return version.String(), nil }),

		"books":   bind(h.Books),
		"chapter": bind(h.Chapter),
		"search":  bind(h.Search),

		"annotations.chapter": bind(h.AnnotationsChapter),
		"annotations.get":     bind(h.AnnotationsGet),
		"highlight.set":       bind(h.HighlightSet),
		"bookmark.toggle":     bind(h.BookmarkToggle),
		"bookmark.remove":     bind(h.BookmarkRemove),
		"note.set":            bind(h.NoteSet),
		"note.clear":          bind(h.NoteClear),
		"bookmarks.list":      bind(h.BookmarksList),
		"notes.list":          bind(h.NotesList),
		"reference.format":    bind(h.ReferenceFormat),

		"index.build": bind(h.IndexBuild),

		"presentation.list":         bind(h.PresentationList),
		"presentation.create":       bind(h.PresentationCreate),
		"presentation.delete":       bind(h.PresentationDelete),
		"presentation.slides":       bind(h.PresentationSlides),
		"presentation.add_slides":   bind(h.PresentationAddSlides),
		"presentation.delete_slide": bind(h.PresentationDeleteSlide),
		"presentation.move_slide":   bind(h.PresentationMoveSlide),
		"presentation.seed":         bind(h.PresentationSeed),
	}
}

func (h *Handlers) Books(_ context.Context, p BooksParams) (any, error) {
	g, err := group.Parse(p.Group)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	names, err := h.app.Corpus.BookNames()
	if err != nil {
		return nil, err
	}
	return group.FilterBooks(g, names), nil
}

func (h *Handlers) Chapter(ctx context.Context, p ChapterParams) (any, error) {
	book, err := h.book(p.Book)
	if err != nil {
		return nil, err
	}
	if p.Chapter <= 0 {
		return nil, invalidParams("chapter must be positive")
	}
	ch, err := h.app.Corpus.Chapter(book, p.Chapter)
	if err != nil {
		return nil, err
	}
	res := ChapterResult{
		Book:        book,
		Chapter:     ch.Number,
		Verses:      ch.Verses,
		Annotations: h.app.Annotations.ForChapter(ctx, book, ch.Number),
	}
	loc := corpus.Location{Book: book, Chapter: ch.Number}
	if prev, ok := h.app.Corpus.Previous(loc); ok {
		res.Previous = &prev
	}
	if next, ok := h.app.Corpus.Next(loc); ok {
		res.Next = &next
	}
	return res, nil
}

func (h *Handlers) Search(ctx context.Context, p SearchParams) (any, error) {
	g, err := group.Parse(p.Group)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	mode := p.Mode
	if strings.TrimSpace(mode) == "" {
		mode = h.app.Config.Search.Mode
	}
	m, err := search.ParseMode(mode)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	if p.Limit < 0 {
		return nil, invalidParams("limit must be >= 0")
	}
	limit := p.Limit
	if limit == 0 {
		limit = h.app.Config.Search.Limit
	}
	res := h.app.Engine.Search(ctx, search.Request{Query: p.Query, Group: g, Mode: m, Limit: limit})
	if res == nil {
		res = []search.Result{}
	}
	return res, nil
}

func (h *Handlers) AnnotationsChapter(ctx context.Context, p ChapterParams) (any, error) {
	book, err := h.book(p.Book)
	if err != nil {
		return nil, err
	}
	if p.Chapter <= 0 {
		return nil, invalidParams("chapter must be positive")
	}
	return h.app.Annotations.ForChapter(ctx, book, p.Chapter), nil
}

func (h *Handlers) AnnotationsGet(ctx context.Context, p SelectionParams) (any, error) {
	addrs, err := h.selection(p)
	if err != nil {
		return nil, err
	}
	if len(addrs) != 1 {
		return nil, invalidParams("annotations.get takes exactly one verse")
	}
	r, ok := h.app.Annotations.Get(ctx, addrs[0])
	if !ok {
		return nil, nil
	}
	return r, nil
}

func (h *Handlers) HighlightSet(ctx context.Context, p HighlightParams) (any, error) {
	color, err := verse.ParseHighlightColor(p.Color)
	if err != nil {
		return nil, invalidParams("%v", err)
	}
	addrs, err := h.selection(p.SelectionParams)
	if err != nil {
		return nil, err
	}
	h.app.Annotations.SetHighlight(ctx, color, addrs...)
	return true, nil
}

func (h *Handlers) BookmarkToggle(ctx context.Context, p SelectionParams) (any, error) {
	addrs, err := h.selection(p)
	if err != nil {
		return nil, err
	}
	h.app.Annotations.ToggleBookmark(ctx, addrs...)
	return true, nil
}

func (h *Handlers) BookmarkRemove(ctx context.Context, p SelectionParams) (any, error) {
	addrs, err := h.selection(p)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		h.app.Annotations.RemoveBookmark(ctx, a)
	}
	return true, nil
}

func (h *Handlers) NoteSet(ctx context.Context, p NoteParams) (any, error) {
	a, err := h.single(p.Reference)
	if err != nil {
		return nil, err
	}
	h.app.Annotations.SetNote(ctx, p.Text, a)
	return true, nil
}

func (h *Handlers) NoteClear(ctx context.Context, p SelectionParams) (any, error) {
	addrs, err := h.selection(p)
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		h.app.Annotations.ClearNote(ctx, a)
	}
	return true, nil
}

func (h *Handlers) BookmarksList(ctx context.Context, p ListParams) (any, error) {
	return listResult(h.app.Annotations.Bookmarks(ctx), p.ByBook), nil
}

func (h *Handlers) NotesList(ctx context.Context, p ListParams) (any, error) {
	return listResult(h.app.Annotations.Notes(ctx), p.ByBook), nil
}

func listResult(recs []store.Record, byBook bool) any {
	if recs == nil {
		recs = []store.Record{}
	}
	if !byBook {
		return recs
	}
	runs := group.ByBook(recs, func(r store.Record) string { return r.Book })
	if runs == nil {
		runs = []group.Run[store.Record]{}
	}
	return runs
}

func (h *Handlers) ReferenceFormat(_ context.Context, p FormatParams) (any, error) {
	return verse.FormatRange(p.Addresses), nil
}

func (h *Handlers) IndexBuild(ctx context.Context, p IndexBuildParams) (any, error) {
	return h.app.BuildIndex(ctx, p.Force, p.Workers)
}

func (h *Handlers) PresentationList(ctx context.Context, _ none) (any, error) {
	list, err := h.app.Presentations.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []store.Presentation{}
	}
	return list, nil
}

func (h *Handlers) PresentationCreate(ctx context.Context, p PresentationCreateParams) (any, error) {
	if strings.TrimSpace(p.Name) == "" {
		return nil, invalidParams("name is required")
	}
	return h.app.Presentations.Create(ctx, p.Name)
}

func (h *Handlers) PresentationDelete(ctx context.Context, p PresentationParams) (any, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, invalidParams("id is required")
	}
	if err := h.app.Presentations.Delete(ctx, p.ID); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *Handlers) PresentationSlides(ctx context.Context, p PresentationParams) (any, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, invalidParams("id is required")
	}
	return h.app.Presentations.Slides(ctx, p.ID)
}

func (h *Handlers) PresentationAddSlides(ctx context.Context, p AddSlidesParams) (any, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, invalidParams("id is required")
	}
	addrs, err := h.selection(SelectionParams{Reference: p.Reference})
	if err != nil {
		return nil, err
	}
	verses := make([]presentation.SlideVerse, 0, len(addrs))
	for _, a := range addrs {
		text, err := h.app.VerseText(a)
		if err != nil {
			return nil, err
		}
		verses = append(verses, presentation.SlideVerse{Address: a, Text: text})
	}
	return h.app.Presentations.AddSlides(ctx, p.ID, verses)
}

func (h *Handlers) PresentationDeleteSlide(ctx context.Context, p DeleteSlideParams) (any, error) {
	if strings.TrimSpace(p.SlideID) == "" {
		return nil, invalidParams("slide_id is required")
	}
	if err := h.app.Presentations.DeleteSlide(ctx, p.SlideID); err != nil {
		return nil, err
	}
	return true, nil
}

func (h *Handlers) PresentationMoveSlide(ctx context.Context, p MoveSlideParams) (any, error) {
	if strings.TrimSpace(p.ID) == "" {
		return nil, invalidParams("id is required")
	}
	slides, err := h.app.Presentations.MoveSlide(ctx, p.ID, p.From, p.To)
	if errors.Is(err, presentation.ErrSlideOutside) {
		return nil, invalidParams("%v", err)
	}
	return slides, err
}

func (h *Handlers) PresentationSeed(ctx context.Context, _ none) (any, error) {
	return h.app.Presentations.SeedRomanRoad(ctx)
}

func (h *Handlers) book(name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", invalidParams("book is required")
	}
	book, err := ref.ResolveBook(name)
	if err != nil {
		// Books outside the canon are looked up verbatim.
		return strings.TrimSpace(name), nil
	}
	return book, nil
}

func (h *Handlers) single(reference string) (verse.Address, error) {
	addrs, err := h.selection(SelectionParams{Reference: reference})
	if err != nil {
		return verse.Address{}, err
	}
	if len(addrs) != 1 {
		return verse.Address{}, invalidParams("reference must name exactly one verse")
	}
	return addrs[0], nil
}

// selection resolves p into addresses. Reference syntax errors are invalid
// params; references to verses missing from the corpus are server errors.
func (h *Handlers) selection(p SelectionParams) ([]verse.Address, error) {
	var out []verse.Address
	for _, a := range p.Addresses {
		if strings.TrimSpace(a.Book) == "" || a.Chapter <= 0 || a.Verse <= 0 {
			return nil, invalidParams("invalid address %q", a.Key())
		}
		out = append(out, a)
	}
	if strings.TrimSpace(p.Reference) != "" {
		addrs, err := h.app.Resolve(p.Reference)
		if err != nil {
			if errors.Is(err, ref.ErrSyntax) || errors.Is(err, ref.ErrUnknownBook) {
				return nil, invalidParams("%v", err)
			}
			return nil, err
		}
		out = append(out, addrs...)
	}
	if len(out) == 0 {
		return nil, invalidParams("reference or addresses is required")
	}
	return out, nil
}
