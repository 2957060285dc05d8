// Package group partitions the canonical book order into named groups and
// splits ordered record lists into per-book runs.
package group

import (
	"fmt"
	"strings"
)

// Group is a named, contiguous slice of the 66-book canonical order.
type Group string

const (
	All          Group = "all"
	OldTestament Group = "old-testament"
	NewTestament Group = "new-testament"
	Law          Group = "law"
	History      Group = "history"
	Poetry       Group = "poetry"
	Prophets     Group = "prophets"
	Gospels      Group = "gospels"
	Acts         Group = "acts"
	Epistles     Group = "epistles"
	Revelation   Group = "revelation"
)

type bounds struct {
	first int
	last  int
	name  string
}

var table = map[Group]bounds{
	All:          {0, 65, "All"},
	OldTestament: {0, 38, "Old Testament"},
	NewTestament: {39, 65, "New Testament"},
	Law:          {0, 4, "Law"},
	History:      {5, 16, "History"},
	Poetry:       {17, 21, "Poetry"},
	Prophets:     {22, 38, "Prophets"},
	Gospels:      {39, 42, "Gospels"},
	Acts:         {43, 43, "Acts"},
	Epistles:     {44, 64, "Epistles"},
	Revelation:   {65, 65, "Revelation"},
}

// SearchFilters is every group, in the order a search scope picker shows them.
var SearchFilters = []Group{
	All, OldTestament, NewTestament,
	Law, History, Poetry, Prophets, Gospels, Acts, Epistles, Revelation,
}

// PickerSections are the groups used to section a book picker.
var PickerSections = []Group{
	Law, History, Poetry, Prophets, Gospels, Acts, Epistles, Revelation,
}

// Parse accepts a group id ("gospels", "old-testament") or display name
// ("Old Testament"). An empty string is All.
func Parse(s string) (Group, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return All, nil
	}
	norm := strings.ToLower(strings.Join(strings.Fields(s), "-"))
	norm = strings.ReplaceAll(norm, "_", "-")
	if _, ok := table[Group(norm)]; ok {
		return Group(norm), nil
	}
	return "", fmt.Errorf("unknown book group %q", s)
}

// Range returns the inclusive canonical index range of g. Unknown groups
// report ok=false.
func (g Group) Range() (first, last int, ok bool) {
	if g == "" {
		g = All
	}
	b, ok := table[g]
	return b.first, b.last, ok
}

func (g Group) DisplayName() string {
	if g == "" {
		g = All
	}
	if b, ok := table[g]; ok {
		return b.name
	}
	return string(g)
}

// FilterBooks slices names to the group's index range, clamped to the
// bounds of names. A range lying entirely outside names, or an unknown
// group, yields an empty slice.
func FilterBooks(g Group, names []string) []string {
	first, last, ok := g.Range()
	if !ok {
		return []string{}
	}
	if first < 0 {
		first = 0
	}
	if last > len(names)-1 {
		last = len(names) - 1
	}
	if first > last || first >= len(names) {
		return []string{}
	}
	out := make([]string, last-first+1)
	copy(out, names[first:last+1])
	return out
}

// Of reports which picker section holds the book at canonical index idx.
func Of(idx int) (Group, bool) {
	for _, g := range PickerSections {
		b := table[g]
		if idx >= b.first && idx <= b.last {
			return g, true
		}
	}
	return "", false
}
