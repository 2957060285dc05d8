// Package backend selects the annotation persistence backend by name.
package backend

import (
	"fmt"
	"path/filepath"
	"strings"

	"bibleidx/internal/index/memory"
	"bibleidx/internal/index/sqlite"
	"bibleidx/internal/index/store"
)

const (
	SQLite = "sqlite"
	Memory = "memory"
)

func NormalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return SQLite
	}
	switch name {
	case "sqlite", "sqlite3":
		return SQLite
	case "memory", "mem":
		return Memory
	default:
		return name
	}
}

// DefaultPath is where the annotation database lives under dataDir.
func DefaultPath(dataDir string) string {
	return filepath.Join(dataDir, "annotations.db")
}

// DefaultWordIndexPath is where the word index lives under dataDir.
func DefaultWordIndexPath(dataDir string) string {
	return filepath.Join(dataDir, "words.bleve")
}

func Open(name string, path string) (store.Backend, error) {
	switch NormalizeName(name) {
	case SQLite:
		st, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return st, nil
	case Memory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", name)
	}
}
