//go:build cgo_sqlite

package sqlite

// CGO driver: go build -tags cgo_sqlite (requires CGO_ENABLED=1).
import (
	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"
