// Package sqlite is a single-file record store for local runs without PostgreSQL.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"event-album/internal/models"
	"event-album/internal/storage"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS events (
    id         TEXT PRIMARY KEY,
    name       TEXT NOT NULL CHECK (name <> ''),
    frame_url  TEXT,
    created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS photos (
    id         TEXT PRIMARY KEY,
    event_id   TEXT NOT NULL REFERENCES events (id),
    photo_url  TEXT NOT NULL,
    created_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS photos_event_created_idx ON photos (event_id, created_at DESC, id DESC);
`

// Store keeps created_at as unix nanoseconds so ORDER BY is exact.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	dsn := "file:" + filepath.Clean(path) + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: sqlDB, now: time.Now}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) CreateEvent(ctx context.Context, name string, frameURL *string) (*models.Event, error) {
	const op = "storage.sqlite.CreateEvent"

	e := models.Event{
		ID:        uuid.New().String(),
		Name:      name,
		FrameURL:  frameURL,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO events (id, name, frame_url, created_at) VALUES (?, ?, ?, ?)`,
		e.ID, e.Name, e.FrameURL, e.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (s *Store) Event(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage.sqlite.Event"

	row := s.db.QueryRowContext(ctx, `SELECT id, name, frame_url, created_at FROM events WHERE id = ?`, id)
	e, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return e, nil
}

func (s *Store) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.sqlite.Events"

	rows, err := s.db.QueryContext(ctx, `SELECT id, name, frame_url, created_at FROM events ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (s *Store) CreatePhoto(ctx context.Context, eventID, photoURL string) (*models.Photo, error) {
	const op = "storage.sqlite.CreatePhoto"

	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM events WHERE id = ?`, eventID).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	p := models.Photo{
		ID:        uuid.New().String(),
		EventID:   eventID,
		PhotoURL:  photoURL,
		CreatedAt: s.now().UTC(),
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO photos (id, event_id, photo_url, created_at) VALUES (?, ?, ?, ?)`,
		p.ID, p.EventID, p.PhotoURL, p.CreatedAt.UnixNano(),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (s *Store) Photos(ctx context.Context, eventID string, limit int) ([]models.Photo, error) {
	const op = "storage.sqlite.Photos"

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, event_id, photo_url, created_at FROM photos WHERE event_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`,
		eventID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		var (
			p  models.Photo
			ts int64
		)
		if err := rows.Scan(&p.ID, &p.EventID, &p.PhotoURL, &ts); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		p.CreatedAt = time.Unix(0, ts).UTC()
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return photos, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(row scanner) (*models.Event, error) {
	var (
		e        models.Event
		frameURL sql.NullString
		ts       int64
	)
	if err := row.Scan(&e.ID, &e.Name, &frameURL, &ts); err != nil {
		return nil, err
	}
	if frameURL.Valid {
		e.FrameURL = &frameURL.String
	}
	e.CreatedAt = time.Unix(0, ts).UTC()
	return &e, nil
}
