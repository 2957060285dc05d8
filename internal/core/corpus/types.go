package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// IndexDocument is the name of the document listing all books in order.
const IndexDocument = "Books.json"

type Verse struct {
	Number int    `json:"verse"`
	Text   string `json:"text"`
}

type Chapter struct {
	Number int     `json:"chapter"`
	Verses []Verse `json:"verses"`
}

type Book struct {
	Name     string    `json:"book"`
	Chapters []Chapter `json:"chapters"`
}

// Chapter returns the chapter numbered n.
func (b Book) Chapter(n int) (Chapter, bool) {
	for _, ch := range b.Chapters {
		if ch.Number == n {
			return ch, true
		}
	}
	return Chapter{}, false
}

// number decodes the corpus' string-typed numbers. Anything that is not an
// integer decodes to 0 rather than failing the document.
type number int

func (n *number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	var s string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
	} else {
		s = string(data)
	}
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		v = 0
	}
	*n = number(v)
	return nil
}

type verseDoc struct {
	Verse number `json:"verse"`
	Text  string `json:"text"`
}

type chapterDoc struct {
	Chapter number     `json:"chapter"`
	Verses  []verseDoc `json:"verses"`
}

type bookDoc struct {
	Book     string       `json:"book"`
	Chapters []chapterDoc `json:"chapters"`
}

// DecodeBook parses one per-book document. fallbackName is used when the
// document does not carry its own book name.
func DecodeBook(data []byte, fallbackName string) (Book, error) {
	var doc bookDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Book{}, err
	}
	if doc.Chapters == nil && strings.TrimSpace(doc.Book) == "" {
		return Book{}, fmt.Errorf("document has neither book nor chapters")
	}

	name := strings.TrimSpace(doc.Book)
	if name == "" {
		name = fallbackName
	}
	out := Book{Name: name, Chapters: make([]Chapter, 0, len(doc.Chapters))}
	for _, ch := range doc.Chapters {
		c := Chapter{Number: int(ch.Chapter), Verses: make([]Verse, 0, len(ch.Verses))}
		for _, v := range ch.Verses {
			c.Verses = append(c.Verses, Verse{Number: int(v.Verse), Text: v.Text})
		}
		out.Chapters = append(out.Chapters, c)
	}
	return out, nil
}

// DecodeBookNames parses the index document.
func DecodeBookNames(data []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, err
	}
	return names, nil
}
