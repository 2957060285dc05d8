package corpus

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"

	"bibleidx/internal/core/verse"
)

// Source loads raw corpus documents by name ("Books.json", "1John.json").
// A missing document must be reported with an error matching ErrNotFound
// or fs.ErrNotExist.
type Source interface {
	Load(name string) ([]byte, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(name string) ([]byte, error)

func (f SourceFunc) Load(name string) ([]byte, error) { return f(name) }

type fsSource struct {
	fsys fs.FS
	dir  string
}

// NewFSSource reads documents from fsys, optionally below dir.
func NewFSSource(fsys fs.FS, dir string) Source {
	dir = strings.Trim(path.Clean("/"+strings.TrimSpace(dir)), "/")
	return &fsSource{fsys: fsys, dir: dir}
}

// NewDirSource reads documents from a directory on disk.
func NewDirSource(dir string) (Source, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, fmt.Errorf("corpus directory is required")
	}
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("corpus path is not a directory: %s", dir)
	}
	return &fsSource{fsys: os.DirFS(dir)}, nil
}

func (s *fsSource) Load(name string) ([]byte, error) {
	if s == nil || s.fsys == nil {
		return nil, fmt.Errorf("source is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, "/") || strings.Contains(name, "..") {
		return nil, &NotFoundError{Resource: "document", Name: name}
	}
	p := name
	if s.dir != "" {
		p = path.Join(s.dir, name)
	}
	b, err := fs.ReadFile(s.fsys, p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Resource: "document", Name: name, Err: err}
		}
		return nil, err
	}
	return b, nil
}

// BookDocument returns the document name that holds book.
func BookDocument(book string) string {
	return verse.DocumentName(book) + ".json"
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
