package verse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FormatRange renders a verse selection as "Book C:1-3, 5, 7-8".
//
// Book and chapter come from the lowest address; the selection is expected
// to share one chapter but that is not enforced. Duplicate verse numbers
// collapse. An empty selection renders as "".
func FormatRange(addrs []Address) string {
	if len(addrs) == 0 {
		return ""
	}

	first := addrs[0]
	seen := make(map[int]struct{}, len(addrs))
	verses := make([]int, 0, len(addrs))
	for _, a := range addrs {
		if Less(a, first) {
			first = a
		}
		if _, ok := seen[a.Verse]; ok {
			continue
		}
		seen[a.Verse] = struct{}{}
		verses = append(verses, a.Verse)
	}
	sort.Ints(verses)

	tokens := make([]string, 0, len(verses))
	start, end := verses[0], verses[0]
	flush := func() {
		if start == end {
			tokens = append(tokens, strconv.Itoa(start))
			return
		}
		tokens = append(tokens, fmt.Sprintf("%d-%d", start, end))
	}
	for _, v := range verses[1:] {
		if v == end+1 {
			end = v
			continue
		}
		flush()
		start, end = v, v
	}
	flush()

	return fmt.Sprintf("%s %d:%s", first.Book, first.Chapter, strings.Join(tokens, ", "))
}
