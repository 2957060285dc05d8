// Package verse holds the identity of a single verse and the helpers that
// format, parse and order it.
package verse

import (
	"fmt"
	"strconv"
	"strings"
)

// Address identifies one verse. Its Key is the only form that is ever
// persisted.
type Address struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
	Verse   int    `json:"verse"`
}

// Key returns the canonical "{book}:{chapter}:{verse}" form.
func (a Address) Key() string {
	return fmt.Sprintf("%s:%d:%d", a.Book, a.Chapter, a.Verse)
}

func (a Address) String() string { return a.Key() }

// Reference returns the display form, e.g. "John 3:16".
func (a Address) Reference() string {
	return fmt.Sprintf("%s %d:%d", a.Book, a.Chapter, a.Verse)
}

// ParseKey is the inverse of Key. Keys that do not split into exactly
// three fields, or whose chapter or verse is not an integer, yield ok=false.
func ParseKey(key string) (Address, bool) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] == "" {
		return Address{}, false
	}
	chapter, err := strconv.Atoi(parts[1])
	if err != nil {
		return Address{}, false
	}
	v, err := strconv.Atoi(parts[2])
	if err != nil {
		return Address{}, false
	}
	return Address{Book: parts[0], Chapter: chapter, Verse: v}, true
}

// Compare orders addresses by canonical book position, then chapter, then
// verse. Books outside the canon sort after it, by name.
func Compare(a, b Address) int {
	if c := compareBooks(a.Book, b.Book); c != 0 {
		return c
	}
	if a.Chapter != b.Chapter {
		if a.Chapter < b.Chapter {
			return -1
		}
		return 1
	}
	switch {
	case a.Verse < b.Verse:
		return -1
	case a.Verse > b.Verse:
		return 1
	}
	return 0
}

// Less reports whether a sorts before b.
func Less(a, b Address) bool { return Compare(a, b) < 0 }

func compareBooks(a, b string) int {
	if a == b {
		return 0
	}
	ia, ib := BookIndex(a), BookIndex(b)
	switch {
	case ia >= 0 && ib >= 0:
		if ia < ib {
			return -1
		}
		return 1
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	}
	return strings.Compare(a, b)
}
