package corpus

// Location is a reading position: a book and chapter.
type Location struct {
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// Next returns the chapter after loc, crossing into the following book at
// the end of a book. ok is false at the end of the corpus.
func (a *Accessor) Next(loc Location) (Location, bool) {
	if loc.Chapter < a.ChapterCount(loc.Book) {
		return Location{Book: loc.Book, Chapter: loc.Chapter + 1}, true
	}
	names, err := a.BookNames()
	if err != nil {
		return Location{}, false
	}
	i := indexOf(names, loc.Book)
	if i < 0 || i+1 >= len(names) {
		return Location{}, false
	}
	return Location{Book: names[i+1], Chapter: 1}, true
}

// Previous returns the chapter before loc, landing on the last chapter of
// the preceding book at the start of a book.
func (a *Accessor) Previous(loc Location) (Location, bool) {
	if loc.Chapter > 1 {
		return Location{Book: loc.Book, Chapter: loc.Chapter - 1}, true
	}
	names, err := a.BookNames()
	if err != nil {
		return Location{}, false
	}
	i := indexOf(names, loc.Book)
	if i <= 0 {
		return Location{}, false
	}
	prev := names[i-1]
	n := a.ChapterCount(prev)
	if n == 0 {
		return Location{}, false
	}
	return Location{Book: prev, Chapter: n}, true
}

func indexOf(names []string, name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return -1
}
