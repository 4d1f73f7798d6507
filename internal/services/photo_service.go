package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"event-album/internal/lib/logger/sl"
	"event-album/internal/metrics"
	"event-album/internal/models"
	"event-album/internal/storage"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

const (
	PhotoContentType  = "image/jpeg"
	PhotoCacheControl = "max-age=3600"
)

var jpegMagic = []byte{0xFF, 0xD8, 0xFF}

// EventProvider resolves an event by id, failing with ErrNotFound when absent.
type EventProvider interface {
	Get(ctx context.Context, id string) (*models.Event, error)
}

type PhotoService struct {
	log      *slog.Logger
	events   EventProvider
	records  storage.RecordStore
	objects  storage.ObjectStore
	validate *validator.Validate
	maxBytes int
}

func NewPhotoService(
	log *slog.Logger,
	events EventProvider,
	records storage.RecordStore,
	objects storage.ObjectStore,
	maxBytes int,
) *PhotoService {
	return &PhotoService{
		log:      log,
		events:   events,
		records:  records,
		objects:  objects,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		maxBytes: maxBytes,
	}
}

// Upload stores a guest photo for an event.
//
// The binary is written before the record so a record never points at a
// missing object. A record insert failure leaves the object behind as an
// unreferenced orphan; it is logged with its key and not cleaned up.
// Malformed payloads are rejected before any store is touched.
func (s *PhotoService) Upload(ctx context.Context, req models.UploadPhotoRequest) (photo *models.Photo, err error) {
	const op = "services.PhotoService.Upload"

	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(KindOf(err))
		}
		metrics.PhotoUploadsTotal.WithLabelValues(outcome).Inc()
		metrics.PhotoUploadDuration.Observe(time.Since(start).Seconds())
	}()

	req.EventID = strings.TrimSpace(req.EventID)
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidRequest, "event_id and photo_data are required", err)
	}

	log := s.log.With(slog.String("op", op), slog.String("event_id", req.EventID))

	data, err := DecodePhotoData(req.PhotoData)
	if err != nil {
		log.Warn("rejected photo payload", sl.Err(err))
		return nil, err
	}
	if s.maxBytes > 0 && len(data) > s.maxBytes {
		return nil, newError(KindInvalidRequest, fmt.Sprintf("photo exceeds %d bytes", s.maxBytes), nil)
	}
	metrics.PhotoUploadBytes.Observe(float64(len(data)))

	if _, err := s.events.Get(ctx, req.EventID); err != nil {
		if errors.Is(err, ErrNotFound) {
			log.Warn("photo submitted for unknown event")
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	key := ObjectKey(req.EventID)
	ref, err := s.objects.Put(ctx, key, data, PhotoContentType, PhotoCacheControl)
	if err != nil {
		log.Error("failed to write photo object", slog.String("key", key), sl.Err(err))
		return nil, newError(KindStorageWrite, "failed to upload photo", err)
	}

	photoURL := s.objects.PublicURL(ref)

	photo, err = s.records.CreatePhoto(ctx, req.EventID, photoURL)
	if err != nil {
		log.Error("failed to record photo, object left orphaned", slog.String("key", ref.Key), sl.Err(err))
		return nil, newError(KindRecordWrite, "failed to save photo", err)
	}

	log.Info("photo stored", slog.String("photo_id", photo.ID), slog.Int("bytes", len(data)))
	return photo, nil
}

// ObjectKey namespaces a new photo object under its event.
func ObjectKey(eventID string) string {
	return eventID + "/" + uuid.New().String() + ".jpg"
}

// DecodePhotoData turns a data URL (or bare base64) into JPEG bytes.
func DecodePhotoData(payload string) ([]byte, error) {
	encoded := strings.TrimSpace(payload)
	if strings.HasPrefix(encoded, "data:") {
		header, body, ok := strings.Cut(encoded, ",")
		if !ok {
			return nil, newError(KindDecode, "malformed photo data", errors.New("data URL without payload separator"))
		}
		if !strings.HasSuffix(header, ";base64") {
			return nil, newError(KindDecode, "malformed photo data", errors.New("data URL is not base64 encoded"))
		}
		mediaType := strings.TrimSuffix(strings.TrimPrefix(header, "data:"), ";base64")
		if mediaType != "" && !strings.HasPrefix(mediaType, "image/") {
			return nil, newError(KindDecode, "malformed photo data", fmt.Errorf("unsupported media type %q", mediaType))
		}
		encoded = body
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, newError(KindDecode, "malformed photo data", err)
	}
	if len(data) == 0 {
		return nil, newError(KindDecode, "malformed photo data", errors.New("empty image"))
	}
	if !bytes.HasPrefix(data, jpegMagic) {
		return nil, newError(KindDecode, "photo must be a JPEG image", nil)
	}
	return data, nil
}
