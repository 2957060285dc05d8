package bidxcli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"bibleidx/internal/core/corpus"
	"bibleidx/internal/core/search"
	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

// VerseItem is one verse as printed by read, with its annotation.
type VerseItem struct {
	Book       string               `json:"book"`
	Chapter    int                  `json:"chapter"`
	Verse      int                  `json:"verse"`
	Text       string               `json:"text"`
	Highlight  verse.HighlightColor `json:"highlight,omitempty"`
	Bookmarked bool                 `json:"bookmarked,omitempty"`
	Note       string               `json:"note,omitempty"`
}

// ChapterItems pairs the verses of ch accepted by keep with their
// annotations, keyed by verse key.
func ChapterItems(book string, ch corpus.Chapter, anns map[string]store.Record, keep func(int) bool) []VerseItem {
	var out []VerseItem
	for _, v := range ch.Verses {
		if keep != nil && !keep(v.Number) {
			continue
		}
		item := VerseItem{Book: book, Chapter: ch.Number, Verse: v.Number, Text: v.Text}
		key := verse.Address{Book: book, Chapter: ch.Number, Verse: v.Number}.Key()
		if r, ok := anns[key]; ok {
			item.Highlight = r.Highlight
			item.Bookmarked = r.Bookmarked
			item.Note = r.Note
		}
		out = append(out, item)
	}
	return out
}

func RenderJSONL[T any](items []T) string {
	var b strings.Builder
	enc := json.NewEncoder(&b)
	for _, item := range items {
		_ = enc.Encode(item)
	}
	return b.String()
}

func RenderLines(lines []string) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderChapter prints a heading and one line per verse. A bookmark shows
// as "*", a highlight as its colour in brackets; notes follow on their own
// indented line.
func RenderChapter(title string, items []VerseItem) string {
	var b strings.Builder
	_, _ = fmt.Fprintf(&b, "%s\n\n", title)
	width := 1
	for _, it := range items {
		if w := len(fmt.Sprint(it.Verse)); w > width {
			width = w
		}
	}
	for _, it := range items {
		_, _ = fmt.Fprintf(&b, "%*d%s %s\n", width, it.Verse, markers(it.Bookmarked, it.Highlight, it.Note != ""), it.Text)
		if it.Note != "" {
			_, _ = fmt.Fprintf(&b, "%*s    note: %s\n", width, "", it.Note)
		}
	}
	return b.String()
}

func markers(bookmarked bool, c verse.HighlightColor, note bool) string {
	var s string
	if bookmarked {
		s += " *"
	}
	if c != verse.NoHighlight {
		s += " [" + string(c) + "]"
	}
	if note {
		s += " +"
	}
	return s
}

func RenderResults(results []search.Result) string {
	var b strings.Builder
	for _, r := range results {
		text := r.Snippet
		if text == "" {
			text = r.Text
		}
		_, _ = fmt.Fprintf(&b, "%s: %s\n", r.Reference(), text)
	}
	return b.String()
}

// RenderRecords prints one annotated verse per line.
func RenderRecords(recs []store.Record) string {
	var b strings.Builder
	for _, r := range recs {
		line := r.Address().Reference() + markers(r.Bookmarked, r.Highlight, false)
		if r.Note != "" {
			line += "  " + r.Note
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}

func RenderPresentations(list []store.Presentation) string {
	var b strings.Builder
	for _, p := range list {
		created := time.UnixMilli(p.CreatedAt).UTC().Format("2006-01-02 15:04")
		_, _ = fmt.Fprintf(&b, "%s  %s  %s\n", p.ID, created, p.Name)
	}
	return b.String()
}

// RenderSlides numbers slides from 1, the positions move accepts.
func RenderSlides(slides []store.Slide) string {
	var b strings.Builder
	for i, s := range slides {
		ref := verse.Address{Book: s.Book, Chapter: s.Chapter, Verse: s.Verse}.Reference()
		_, _ = fmt.Fprintf(&b, "%d. %s  %s  (%s)\n", i+1, ref, s.Text, s.ID)
	}
	return b.String()
}
