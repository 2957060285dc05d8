package verse

import "strings"

// CanonicalBooks is the 66-book Protestant canon in scripture order.
var CanonicalBooks = []string{
	"Genesis", "Exodus", "Leviticus", "Numbers", "Deuteronomy",
	"Joshua", "Judges", "Ruth", "1 Samuel", "2 Samuel",
	"1 Kings", "2 Kings", "1 Chronicles", "2 Chronicles", "Ezra",
	"Nehemiah", "Esther",
	"Job", "Psalms", "Proverbs", "Ecclesiastes", "Song of Solomon",
	"Isaiah", "Jeremiah", "Lamentations", "Ezekiel", "Daniel",
	"Hosea", "Joel", "Amos", "Obadiah", "Jonah",
	"Micah", "Nahum", "Habakkuk", "Zephaniah", "Haggai",
	"Zechariah", "Malachi",
	"Matthew", "Mark", "Luke", "John",
	"Acts",
	"Romans", "1 Corinthians", "2 Corinthians", "Galatians", "Ephesians",
	"Philippians", "Colossians", "1 Thessalonians", "2 Thessalonians", "1 Timothy",
	"2 Timothy", "Titus", "Philemon", "Hebrews", "James",
	"1 Peter", "2 Peter", "1 John", "2 John", "3 John",
	"Jude",
	"Revelation",
}

var bookIndex = func() map[string]int {
	m := make(map[string]int, len(CanonicalBooks))
	for i, name := range CanonicalBooks {
		m[name] = i
	}
	return m
}()

// BookIndex returns the canonical position of name, or -1.
func BookIndex(name string) int {
	if i, ok := bookIndex[name]; ok {
		return i
	}
	return -1
}

// LookupBook resolves a user-typed book name to its canonical spelling.
// Matching ignores case and whitespace, so "1john" and "song of solomon"
// both resolve.
func LookupBook(name string) (string, bool) {
	want := squash(name)
	if want == "" {
		return "", false
	}
	for _, b := range CanonicalBooks {
		if squash(b) == want {
			return b, true
		}
	}
	return "", false
}

// DocumentName is the whitespace-stripped form used to name per-book
// corpus documents ("1 John" -> "1John").
func DocumentName(book string) string {
	return strings.Join(strings.Fields(book), "")
}

func squash(s string) string {
	return strings.ToLower(DocumentName(s))
}
