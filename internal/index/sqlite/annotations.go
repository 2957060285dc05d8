package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bibleidx/internal/core/verse"
	"bibleidx/internal/index/store"
)

const recordColumns = `book, chapter, verse, highlight, note, bookmarked, updated_at`

func (s *Store) Get(ctx context.Context, key string) (store.Record, bool, error) {
	if err := s.ready(); err != nil {
		return store.Record{}, false, err
	}
	row := s.db.QueryRowContext(ctx, `SELECT `+recordColumns+` FROM verse_annotations WHERE key = ?`, key)
	r, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Record{}, false, nil
	}
	if err != nil {
		return store.Record{}, false, err
	}
	return r, true, nil
}

func (s *Store) List(ctx context.Context, f store.Filter) ([]store.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	var where []string
	var args []any
	if book := strings.TrimSpace(f.Book); book != "" {
		where = append(where, "book = ?")
		args = append(args, book)
		if f.Chapter > 0 {
			where = append(where, "chapter = ?")
			args = append(args, f.Chapter)
		}
	}
	if f.Bookmarked {
		where = append(where, "bookmarked = 1")
	}
	if f.HasNote {
		where = append(where, "note <> ''")
	}

	q := `SELECT ` + recordColumns + ` FROM verse_annotations`
	if len(where) > 0 {
		q += ` WHERE ` + strings.Join(where, " AND ")
	}
	q += ` ORDER BY book_index, book, chapter, verse`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.Record, 0)
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Apply commits the whole batch in one IMMEDIATE transaction.
func (s *Store) Apply(ctx context.Context, b store.Batch) error {
	if err := s.ready(); err != nil {
		return err
	}
	if b.Empty() {
		return nil
	}
	for _, r := range b.Upserts {
		if strings.TrimSpace(r.Book) == "" {
			return fmt.Errorf("record book is required")
		}
	}

	return s.immediate(ctx, func(conn *sql.Conn) error {
		if len(b.Deletes) > 0 {
			del, err := conn.PrepareContext(ctx, `DELETE FROM verse_annotations WHERE key = ?`)
			if err != nil {
				return err
			}
			defer del.Close()
			for _, k := range b.Deletes {
				if _, err := del.ExecContext(ctx, k); err != nil {
					return err
				}
			}
		}

		if len(b.Upserts) == 0 {
			return nil
		}
		up, err := conn.PrepareContext(ctx,
			`INSERT INTO verse_annotations (key, book, book_index, chapter, verse, highlight, note, bookmarked, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			 ON CONFLICT(key) DO UPDATE SET
			   highlight=excluded.highlight,
			   note=excluded.note,
			   bookmarked=excluded.bookmarked,
			   updated_at=excluded.updated_at`)
		if err != nil {
			return err
		}
		defer up.Close()
		for _, r := range b.Upserts {
			if _, err := up.ExecContext(ctx,
				r.Key(), r.Book, bookIndex(r.Book), r.Chapter, r.Verse,
				string(r.Highlight), r.Note, boolInt(r.Bookmarked), r.UpdatedAt,
			); err != nil {
				return err
			}
		}
		return nil
	})
}

// immediate runs fn inside BEGIN IMMEDIATE on a dedicated connection and
// commits only if fn succeeds.
func (s *Store) immediate(ctx context.Context, fn func(conn *sql.Conn) error) error {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "BEGIN IMMEDIATE"); err != nil {
		return err
	}
	committed := false
	defer func() {
		if committed {
			return
		}
		_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
	}()

	if err := fn(conn); err != nil {
		return err
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return err
	}
	committed = true
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (store.Record, error) {
	var r store.Record
	var highlight string
	var bookmarked int
	if err := row.Scan(&r.Book, &r.Chapter, &r.Verse, &highlight, &r.Note, &bookmarked, &r.UpdatedAt); err != nil {
		return store.Record{}, err
	}
	r.Highlight = verse.HighlightColor(highlight)
	r.Bookmarked = bookmarked != 0
	return r, nil
}

func bookIndex(book string) int {
	if i := verse.BookIndex(book); i >= 0 {
		return i
	}
	return unknownBookIndex
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
