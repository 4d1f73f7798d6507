package postgres

import (
	"context"
	"errors"
	"fmt"

	"event-album/internal/models"
	"event-album/internal/storage"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const codeForeignKeyViolation = "23503"

type Storage struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Storage {
	return &Storage{pool: pool}
}

func (s *Storage) CreateEvent(ctx context.Context, name string, frameURL *string) (*models.Event, error) {
	const op = "storage.postgres.CreateEvent"

	query := `INSERT INTO events (name, frame_url) VALUES (@name, @frameURL) RETURNING id::text, name, frame_url, created_at`
	args := pgx.NamedArgs{
		"name":     name,
		"frameURL": frameURL,
	}

	var e models.Event
	err := s.pool.QueryRow(ctx, query, args).Scan(&e.ID, &e.Name, &e.FrameURL, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (s *Storage) Event(ctx context.Context, id string) (*models.Event, error) {
	const op = "storage.postgres.Event"

	// ids that are not UUIDs can never match a row
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
	}

	query := `SELECT id::text, name, frame_url, created_at FROM events WHERE id = $1`
	var e models.Event
	err := s.pool.QueryRow(ctx, query, id).Scan(&e.ID, &e.Name, &e.FrameURL, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &e, nil
}

func (s *Storage) Events(ctx context.Context) ([]models.Event, error) {
	const op = "storage.postgres.Events"

	query := `SELECT id::text, name, frame_url, created_at FROM events ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	events := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.Name, &e.FrameURL, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}

func (s *Storage) CreatePhoto(ctx context.Context, eventID, photoURL string) (*models.Photo, error) {
	const op = "storage.postgres.CreatePhoto"

	if _, err := uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
	}

	query := `INSERT INTO photos (event_id, photo_url) VALUES (@eventID, @photoURL) RETURNING id::text, event_id::text, photo_url, created_at`
	args := pgx.NamedArgs{
		"eventID":  eventID,
		"photoURL": photoURL,
	}

	var p models.Photo
	err := s.pool.QueryRow(ctx, query, args).Scan(&p.ID, &p.EventID, &p.PhotoURL, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == codeForeignKeyViolation {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &p, nil
}

func (s *Storage) Photos(ctx context.Context, eventID string, limit int) ([]models.Photo, error) {
	const op = "storage.postgres.Photos"

	if _, err := uuid.Parse(eventID); err != nil {
		return []models.Photo{}, nil
	}

	query := `SELECT id::text, event_id::text, photo_url, created_at FROM photos WHERE event_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2`
	rows, err := s.pool.Query(ctx, query, eventID, limit)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	photos := []models.Photo{}
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.EventID, &p.PhotoURL, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		photos = append(photos, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return photos, nil
}
