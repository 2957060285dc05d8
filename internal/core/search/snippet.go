package search

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const snippetContext = 60

// Snippet marks the first occurrence of the longest matching term in text
// with << >> and trims the text to a window around it. Text without a
// locatable term is returned trimmed.
func Snippet(text string, terms []string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	cands := append([]string(nil), terms...)
	sort.SliceStable(cands, func(i, j int) bool {
		if len(cands[i]) != len(cands[j]) {
			return len(cands[i]) > len(cands[j])
		}
		return cands[i] < cands[j]
	})

	for _, term := range cands {
		if strings.TrimSpace(term) == "" {
			continue
		}
		pos := indexOfTerm(text, term)
		if pos < 0 {
			continue
		}
		return windowedHighlight(text, pos, pos+len(term))
	}
	return text
}

// indexOfTerm finds term ignoring case. Lowercasing that changes byte
// length would shift offsets, so such text is treated as not locatable.
func indexOfTerm(text, term string) int {
	lower := strings.ToLower(text)
	if len(lower) != len(text) {
		return -1
	}
	return strings.Index(lower, strings.ToLower(term))
}

func windowedHighlight(line string, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end > len(line) {
		end = len(line)
	}
	if start >= end {
		return strings.TrimSpace(line)
	}

	winStart := start - snippetContext
	if winStart < 0 {
		winStart = 0
	}
	for winStart > 0 && !utf8.RuneStart(line[winStart]) {
		winStart--
	}
	winEnd := end + snippetContext
	if winEnd > len(line) {
		winEnd = len(line)
	}
	for winEnd < len(line) && !utf8.RuneStart(line[winEnd]) {
		winEnd++
	}

	prefix, suffix := "", ""
	if winStart > 0 {
		prefix = "…"
	}
	if winEnd < len(line) {
		suffix = "…"
	}

	window := line[winStart:winEnd]
	localStart := start - winStart
	localEnd := end - winStart

	var b strings.Builder
	b.Grow(len(prefix) + len(window) + len(suffix) + 4)
	b.WriteString(prefix)
	b.WriteString(window[:localStart])
	b.WriteString("<<")
	b.WriteString(window[localStart:localEnd])
	b.WriteString(">>")
	b.WriteString(window[localEnd:])
	b.WriteString(suffix)
	return strings.TrimSpace(b.String())
}
