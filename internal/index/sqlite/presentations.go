package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bibleidx/internal/index/store"
)

func (s *Store) CreatePresentation(ctx context.Context, p store.Presentation) error {
	if err := s.ready(); err != nil {
		return err
	}
	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("presentation id is required")
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO presentations (id, name, created_at) VALUES (?, ?, ?)`,
		p.ID, p.Name, p.CreatedAt,
	)
	return err
}

func (s *Store) DeletePresentation(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM presentations WHERE id = ?`, id)
	return err
}

func (s *Store) GetPresentation(ctx context.Context, id string) (store.Presentation, bool, error) {
	if err := s.ready(); err != nil {
		return store.Presentation{}, false, err
	}
	var p store.Presentation
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, created_at FROM presentations WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Presentation{}, false, nil
	}
	if err != nil {
		return store.Presentation{}, false, err
	}
	return p, true, nil
}

func (s *Store) ListPresentations(ctx context.Context) ([]store.Presentation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, created_at FROM presentations ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.Presentation, 0)
	for rows.Next() {
		var p store.Presentation
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) CountPresentations(ctx context.Context) (int, error) {
	if err := s.ready(); err != nil {
		return 0, err
	}
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM presentations`).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) Slides(ctx context.Context, presentationID string) ([]store.Slide, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, presentation_id, book, chapter, verse, text, sort_order
		 FROM slides
		 WHERE presentation_id = ?
		 ORDER BY sort_order, id`,
		presentationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]store.Slide, 0)
	for rows.Next() {
		var sl store.Slide
		if err := rows.Scan(&sl.ID, &sl.PresentationID, &sl.Book, &sl.Chapter, &sl.Verse, &sl.Text, &sl.Order); err != nil {
			return nil, err
		}
		out = append(out, sl)
	}
	return out, rows.Err()
}

func (s *Store) InsertSlides(ctx context.Context, slides []store.Slide) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(slides) == 0 {
		return nil
	}
	for _, sl := range slides {
		if strings.TrimSpace(sl.ID) == "" {
			return fmt.Errorf("slide id is required")
		}
	}

	return s.immediate(ctx, func(conn *sql.Conn) error {
		stmt, err := conn.PrepareContext(ctx,
			`INSERT INTO slides (id, presentation_id, book, chapter, verse, text, sort_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for _, sl := range slides {
			if _, err := stmt.ExecContext(ctx, sl.ID, sl.PresentationID, sl.Book, sl.Chapter, sl.Verse, sl.Text, sl.Order); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) DeleteSlide(ctx context.Context, slideID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx, `DELETE FROM slides WHERE id = ?`, slideID)
	return err
}

func (s *Store) UpdateSlideOrders(ctx context.Context, orders map[string]int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if len(orders) == 0 {
		return nil
	}

	return s.immediate(ctx, func(conn *sql.Conn) error {
		stmt, err := conn.PrepareContext(ctx, `UPDATE slides SET sort_order = ? WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()
		for id, order := range orders {
			res, err := stmt.ExecContext(ctx, order, id)
			if err != nil {
				return err
			}
			if n, err := res.RowsAffected(); err == nil && n == 0 {
				return fmt.Errorf("slide %s not found", id)
			}
		}
		return nil
	})
}
