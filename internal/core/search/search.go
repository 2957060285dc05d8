// Package search scans the corpus for verses containing a query.
//
// Matching is case-insensitive containment under Unicode case folding;
// results come back in corpus order and are never ranked.
package search

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

type Mode string

const (
	// ModePhrase matches verses containing the whole query.
	ModePhrase Mode = "phrase"
	// ModeAllWords matches verses containing every whitespace-separated word.
	ModeAllWords Mode = "all-words"
	// ModeIndexed asks the word index for whole-word matches.
	ModeIndexed Mode = "indexed"
)

var Modes = []Mode{ModePhrase, ModeAllWords, ModeIndexed}

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModePhrase, nil
	case ModePhrase, ModeAllWords, ModeIndexed:
		return m, nil
	case "all", "words", "all_words":
		return ModeAllWords, nil
	default:
		return "", fmt.Errorf("unknown search mode %q", s)
	}
}

// matcher holds case-folded query terms; one is built per scan.
type matcher struct {
	fold  cases.Caser
	terms []string
}

func newMatcher(q string, mode Mode) *matcher {
	m := &matcher{fold: cases.Fold()}
	q = strings.TrimSpace(q)
	if q == "" {
		return m
	}
	if mode == ModeAllWords {
		for _, w := range strings.Fields(q) {
			m.terms = append(m.terms, m.fold.String(w))
		}
		return m
	}
	m.terms = []string{m.fold.String(q)}
	return m
}

func (m *matcher) Match(text string) bool {
	if len(m.terms) == 0 {
		return false
	}
	hay := m.fold.String(text)
	for _, t := range m.terms {
		if !strings.Contains(hay, t) {
			return false
		}
	}
	return true
}

// Terms splits q the way a mode matches it, unfolded, for highlighting.
func Terms(q string, mode Mode) []string {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}
	if mode == ModePhrase {
		return []string{q}
	}
	return strings.Fields(q)
}
