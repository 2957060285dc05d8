package group

// Run is a contiguous stretch of items that share one book.
type Run[T any] struct {
	Book  string `json:"book"`
	Items []T    `json:"items"`
}

// ByBook splits items into runs, starting a new run whenever bookOf changes
// between neighbours. Input order is kept as is; callers that want one run
// per book must sort by book first.
func ByBook[T any](items []T, bookOf func(T) string) []Run[T] {
	var runs []Run[T]
	for _, item := range items {
		book := bookOf(item)
		if n := len(runs); n > 0 && runs[n-1].Book == book {
			runs[n-1].Items = append(runs[n-1].Items, item)
			continue
		}
		runs = append(runs, Run[T]{Book: book, Items: []T{item}})
	}
	return runs
}
