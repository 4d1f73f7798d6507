package services

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"event-album/internal/lib/logger/sl"
	"event-album/internal/metrics"
	"event-album/internal/models"
	"event-album/internal/storage"

	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"
)

const archiveFolder = "fotos-evento"

// Archive is a finished album export.
type Archive struct {
	Name    string
	Data    []byte
	Entries int
}

type AlbumService struct {
	log         *slog.Logger
	events      EventProvider
	records     storage.RecordStore
	fetcher     Fetcher
	listLimit   int
	concurrency int
}

func NewAlbumService(
	log *slog.Logger,
	events EventProvider,
	records storage.RecordStore,
	fetcher Fetcher,
	listLimit int,
	concurrency int,
) *AlbumService {
	return &AlbumService{
		log:         log,
		events:      events,
		records:     records,
		fetcher:     fetcher,
		listLimit:   listLimit,
		concurrency: concurrency,
	}
}

// List returns every photo of an event, newest first.
func (s *AlbumService) List(ctx context.Context, eventID string) ([]models.Photo, error) {
	const op = "services.AlbumService.List"

	if _, err := s.events.Get(ctx, eventID); err != nil {
		return nil, err
	}

	photos, err := s.records.Photos(ctx, eventID, s.listLimit)
	if err != nil {
		s.log.Error("failed to list photos", slog.String("op", op), slog.String("event_id", eventID), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.log.Debug("listed photos", slog.String("op", op), slog.String("event_id", eventID), slog.Int("count", len(photos)))
	return photos, nil
}

// Export packages the whole album into one ZIP archive.
// Any failed fetch fails the export; no partial archive is returned.
func (s *AlbumService) Export(ctx context.Context, eventID string) (archive *Archive, err error) {
	const op = "services.AlbumService.Export"
	log := s.log.With(slog.String("op", op), slog.String("event_id", eventID))

	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
		}
		metrics.ArchiveExportsTotal.WithLabelValues(outcome).Inc()
	}()

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	photos, err := s.records.Photos(ctx, event.ID, s.listLimit)
	if err != nil {
		log.Error("failed to list photos", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	data, err := BuildArchive(ctx, photos, s.fetcher, s.concurrency)
	if err != nil {
		log.Error("album export failed", slog.Int("photos", len(photos)), sl.Err(err))
		return nil, err
	}

	log.Info("album exported", slog.Int("photos", len(photos)), slog.Int("bytes", len(data)))
	return &Archive{
		Name:    ArchiveName(event.Name),
		Data:    data,
		Entries: len(photos),
	}, nil
}

// BuildArchive fetches all photos with at most limit requests in flight and
// zips them under one flat folder. The first failure cancels the shared
// context: fetches not yet started are skipped, those in flight run out.
func BuildArchive(ctx context.Context, photos []models.Photo, fetcher Fetcher, limit int) ([]byte, error) {
	var (
		buf bytes.Buffer
		mu  sync.Mutex
	)
	zw := zip.NewWriter(&buf)

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	for i, photo := range photos {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			data, err := fetcher.Fetch(gctx, photo.PhotoURL)
			if err != nil {
				return fmt.Errorf("fetch photo %s: %w", photo.ID, err)
			}

			mu.Lock()
			defer mu.Unlock()

			// JPEGs are already compressed
			w, err := zw.CreateHeader(&zip.FileHeader{
				Name:     fmt.Sprintf("%s/foto-%d.jpg", archiveFolder, i+1),
				Method:   zip.Store,
				Modified: photo.CreatedAt,
			})
			if err != nil {
				return fmt.Errorf("add photo %s: %w", photo.ID, err)
			}
			if _, err := w.Write(data); err != nil {
				return fmt.Errorf("add photo %s: %w", photo.ID, err)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, newError(KindExport, "failed to download photos", err)
	}
	if err := zw.Close(); err != nil {
		return nil, newError(KindExport, "failed to build archive", err)
	}
	return buf.Bytes(), nil
}

// ArchiveName builds the download name fotos-{event}.zip from a display name.
func ArchiveName(eventName string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-', r == '_':
			return r
		case unicode.IsSpace(r):
			return '-'
		default:
			return -1
		}
	}, strings.TrimSpace(eventName))
	if name == "" {
		name = "evento"
	}
	return "fotos-" + name + ".zip"
}
