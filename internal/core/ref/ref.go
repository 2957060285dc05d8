// Package ref parses typed verse references such as "John 3:16-18",
// "1 John 4:8", "Psalm 23" or "Romans 10:9-10, 13". A reference always
// stays within one chapter.
package ref

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"bibleidx/internal/core/verse"
)

var (
	ErrSyntax      = errors.New("invalid reference")
	ErrUnknownBook = errors.New("unknown book")
)

// maxSpan bounds a single "a-b" span. Psalm 119 is the longest chapter.
const maxSpan = 200

type reference struct {
	Book    string  `@Book`
	Chapter int     `@Number`
	Spans   []*span `( ":" @@ ( "," @@ )* )?`
}

type span struct {
	Start int  `@Number`
	End   *int `( "-" @Number )?`
}

var referenceLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Book", Pattern: `(?:\d\s*)?[A-Za-z]+(?:\s+[A-Za-z]+)*\.?`},
	{Name: "Number", Pattern: `\d+`},
	{Name: "Punct", Pattern: `[:,\-]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var referenceParser = participle.MustBuild[reference](
	participle.Lexer(referenceLexer),
	participle.Elide("Whitespace"),
)

// Ref is a resolved reference within one chapter. A nil Verses means the
// whole chapter.
type Ref struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verses  []int  `json:"verses,omitempty"`
}

// Parse parses and resolves input. Book names match canonical names
// ignoring case and spacing, or any unambiguous prefix of at least three
// letters ("Gen", "Rev").
func Parse(input string) (Ref, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return Ref{}, fmt.Errorf("%w: empty", ErrSyntax)
	}
	raw, err := referenceParser.ParseString("", input)
	if err != nil {
		return Ref{}, fmt.Errorf("%w %q: %v", ErrSyntax, input, err)
	}

	book, err := ResolveBook(raw.Book)
	if err != nil {
		return Ref{}, err
	}
	if raw.Chapter < 1 {
		return Ref{}, fmt.Errorf("%w %q: chapter must be positive", ErrSyntax, input)
	}

	out := Ref{Book: book, Chapter: raw.Chapter}
	if len(raw.Spans) == 0 {
		return out, nil
	}

	seen := map[int]struct{}{}
	for _, s := range raw.Spans {
		end := s.Start
		if s.End != nil {
			end = *s.End
		}
		if s.Start < 1 || end < s.Start {
			return Ref{}, fmt.Errorf("%w %q: bad verse span %d-%d", ErrSyntax, input, s.Start, end)
		}
		if end-s.Start >= maxSpan {
			return Ref{}, fmt.Errorf("%w %q: verse span too long", ErrSyntax, input)
		}
		for v := s.Start; v <= end; v++ {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out.Verses = append(out.Verses, v)
		}
	}
	sort.Ints(out.Verses)
	return out, nil
}

// ResolveBook maps a typed book name to its canonical spelling.
func ResolveBook(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), ".")
	if b, ok := verse.LookupBook(name); ok {
		return b, nil
	}

	want := strings.ToLower(verse.DocumentName(name))
	if len(want) < 3 {
		return "", fmt.Errorf("%w: %q", ErrUnknownBook, name)
	}
	var hits []string
	for _, b := range verse.CanonicalBooks {
		if strings.HasPrefix(strings.ToLower(verse.DocumentName(b)), want) {
			hits = append(hits, b)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return "", fmt.Errorf("%w: %q", ErrUnknownBook, name)
	default:
		return "", fmt.Errorf("%w: %q is ambiguous (%s)", ErrUnknownBook, name, strings.Join(hits, ", "))
	}
}

// WholeChapter reports whether r names a chapter without verses.
func (r Ref) WholeChapter() bool { return len(r.Verses) == 0 }

// Addresses expands r into verse addresses; nil for a whole chapter.
func (r Ref) Addresses() []verse.Address {
	if r.WholeChapter() {
		return nil
	}
	out := make([]verse.Address, 0, len(r.Verses))
	for _, v := range r.Verses {
		out = append(out, verse.Address{Book: r.Book, Chapter: r.Chapter, Verse: v})
	}
	return out
}

// Contains reports whether verse number v is selected by r.
func (r Ref) Contains(v int) bool {
	if r.WholeChapter() {
		return true
	}
	i := sort.SearchInts(r.Verses, v)
	return i < len(r.Verses) && r.Verses[i] == v
}

func (r Ref) String() string {
	if r.WholeChapter() {
		return fmt.Sprintf("%s %d", r.Book, r.Chapter)
	}
	return verse.FormatRange(r.Addresses())
}
