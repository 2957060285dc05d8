package corpus

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"testing/fstest"
)

const johnDoc = `{"book":"John","chapters":[
 {"chapter":"1","verses":[{"verse":"1","text":"In the beginning was the Word"},{"verse":"2","text":"The same was in the beginning with God."}]},
 {"chapter":"2","verses":[{"verse":"1","text":"And the third day there was a marriage in Cana of Galilee"}]},
 {"chapter":"3","verses":[{"verse":"16","text":"For God so loved the world"}]}
]}`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"Books.json": {Data: []byte(`["Luke","John","1 John"]`)},
		"Luke.json":  {Data: []byte(`{"book":"Luke","chapters":[{"chapter":"1","verses":[{"verse":"1","text":"Forasmuch as many"}]},{"chapter":"24","verses":[{"verse":"53","text":"And were continually in the temple"}]}]}`)},
		"John.json":  {Data: []byte(johnDoc)},
		"1John.json": {Data: []byte(`{"book":"1 John","chapters":[{"chapter":"4","verses":[{"verse":"8","text":"He that loveth not knoweth not God; for God is love."}]}]}`)},
		"Bad.json":   {Data: []byte(`not json`)},
		"Odd.json":   {Data: []byte(`{"book":"Odd","chapters":[{"chapter":"x","verses":[{"verse":"y","text":"t"}]}]}`)},
	}
}

func TestAccessor_BookNames(t *testing.T) {
	a := NewAccessor(NewFSSource(testFS(), ""))
	names, err := a.BookNames()
	if err != nil {
		t.Fatalf("BookNames: %v", err)
	}
	if len(names) != 3 || names[0] != "Luke" || names[2] != "1 John" {
		t.Fatalf("unexpected names: %v", names)
	}

	names[0] = "mutated"
	again, _ := a.BookNames()
	if again[0] != "Luke" {
		t.Fatalf("cached names were aliased: %v", again)
	}
}

func TestAccessor_MissingIndex(t *testing.T) {
	a := NewAccessor(NewFSSource(fstest.MapFS{}, ""))
	_, err := a.BookNames()
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestAccessor_BookAndChapter(t *testing.T) {
	a := NewAccessor(NewFSSource(testFS(), ""))

	b, err := a.Book("1 John")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if b.Name != "1 John" || len(b.Chapters) != 1 {
		t.Fatalf("unexpected book: %+v", b)
	}

	ch, err := a.Chapter("John", 3)
	if err != nil {
		t.Fatalf("Chapter: %v", err)
	}
	if len(ch.Verses) != 1 || ch.Verses[0].Number != 16 {
		t.Fatalf("unexpected chapter: %+v", ch)
	}

	if _, err := a.Chapter("John", 99); !errors.Is(err, ErrChapterNotFound) {
		t.Fatalf("expected ErrChapterNotFound, got %v", err)
	}
	var ce *ChapterError
	if _, err := a.Chapter("John", 99); !errors.As(err, &ce) || ce.Chapter != 99 {
		t.Fatalf("expected ChapterError, got %v", err)
	}
}

func TestAccessor_Errors(t *testing.T) {
	a := NewAccessor(NewFSSource(testFS(), ""))

	_, err := a.Book("Obadiah")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	var nf *NotFoundError
	if !errors.As(err, &nf) || nf.Name != "Obadiah" {
		t.Fatalf("expected NotFoundError for Obadiah, got %v", err)
	}

	_, err = a.Book("Bad")
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}

	if _, err := a.Book("   "); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for blank name, got %v", err)
	}
}

func TestAccessor_NonNumericFieldsDecodeAsZero(t *testing.T) {
	a := NewAccessor(NewFSSource(testFS(), ""))
	b, err := a.Book("Odd")
	if err != nil {
		t.Fatalf("Book: %v", err)
	}
	if b.Chapters[0].Number != 0 || b.Chapters[0].Verses[0].Number != 0 {
		t.Fatalf("expected zero numbers, got %+v", b.Chapters[0])
	}
}

func TestAccessor_CachesDocuments(t *testing.T) {
	fsys := testFS()
	var loads atomic.Int32
	src := SourceFunc(func(name string) ([]byte, error) {
		loads.Add(1)
		return NewFSSource(fsys, "").Load(name)
	})
	a := NewAccessor(src)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := a.Book("John"); err != nil {
				t.Errorf("Book: %v", err)
			}
			if _, err := a.BookNames(); err != nil {
				t.Errorf("BookNames: %v", err)
			}
		}()
	}
	wg.Wait()

	before := loads.Load()
	for i := 0; i < 5; i++ {
		_, _ = a.Book("John")
		_, _ = a.BookNames()
	}
	if got := loads.Load(); got != before {
		t.Fatalf("expected cached reads, loads went %d -> %d", before, got)
	}
}

func TestAccessor_Reset(t *testing.T) {
	fsys := testFS()
	a := NewAccessor(NewFSSource(fsys, ""))
	if _, err := a.Book("John"); err != nil {
		t.Fatalf("Book: %v", err)
	}

	fsys["John.json"] = &fstest.MapFile{Data: []byte(`{"book":"John","chapters":[{"chapter":"21","verses":[{"verse":"25","text":"the world itself could not contain the books"}]}]}`)}
	if b, _ := a.Book("John"); len(b.Chapters) == 1 && b.Chapters[0].Number == 21 {
		t.Fatal("read through the cache before Reset")
	}

	a.Reset()
	b, err := a.Book("John")
	if err != nil {
		t.Fatalf("Book after reset: %v", err)
	}
	if len(b.Chapters) != 1 || b.Chapters[0].Number != 21 {
		t.Fatalf("stale book after reset: %+v", b.Chapters)
	}
}

func TestFSSource_RejectsPaths(t *testing.T) {
	src := NewFSSource(testFS(), "")
	for _, name := range []string{"", "../Books.json", "a/b.json"} {
		if _, err := src.Load(name); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Load(%q): expected ErrNotFound, got %v", name, err)
		}
	}
}

func TestFSSource_Subdir(t *testing.T) {
	fsys := fstest.MapFS{"data/Books.json": {Data: []byte(`["Jude"]`)}}
	a := NewAccessor(NewFSSource(fsys, "data"))
	names, err := a.BookNames()
	if err != nil || len(names) != 1 || names[0] != "Jude" {
		t.Fatalf("unexpected: %v %v", names, err)
	}
}

func TestBookDocument(t *testing.T) {
	cases := map[string]string{
		"1 John":          "1John.json",
		"Song of Solomon": "SongofSolomon.json",
		"Genesis":         "Genesis.json",
	}
	for in, want := range cases {
		if got := BookDocument(in); got != want {
			t.Fatalf("BookDocument(%q)=%q, want %q", in, got, want)
		}
	}
}
