package services

import (
	"context"
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
	"github.com/hashicorp/golang-lru/v2/expirable"
)

type EventService struct {
	log      *slog.Logger
	records  storage.RecordStore
	validate *validator.Validate
	// only successful lookups are cached; events are never updated or deleted
	cache *expirable.LRU[string, models.Event]
}

func NewEventService(log *slog.Logger, records storage.RecordStore, cacheSize int, cacheTTL time.Duration) *EventService {
	return &EventService{
		log:      log,
		records:  records,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		cache:    expirable.NewLRU[string, models.Event](cacheSize, nil, cacheTTL),
	}
}

func (s *EventService) Create(ctx context.Context, req models.CreateEventRequest) (*models.Event, error) {
	const op = "services.EventService.Create"
	log := s.log.With(slog.String("op", op))

	req.Name = strings.TrimSpace(req.Name)
	if err := s.validate.Struct(req); err != nil {
		return nil, newError(KindInvalidRequest, "event name is required", err)
	}

	var frameURL *string
	if req.FrameURL != nil {
		if u := strings.TrimSpace(*req.FrameURL); u != "" {
			if err := s.validate.Var(u, "http_url"); err != nil {
				return nil, newError(KindInvalidRequest, "frame_url must be an http(s) URL", err)
			}
			frameURL = &u
		}
	}

	event, err := s.records.CreateEvent(ctx, req.Name, frameURL)
	if err != nil {
		log.Error("failed to create event", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Add(event.ID, *event)
	log.Info("event created", slog.String("event_id", event.ID))
	return event, nil
}

func (s *EventService) Get(ctx context.Context, id string) (*models.Event, error) {
	const op = "services.EventService.Get"

	id = strings.TrimSpace(id)
	if id == "" {
		return nil, newError(KindInvalidRequest, "event id is required", nil)
	}

	if e, ok := s.cache.Get(id); ok {
		metrics.EventCacheHitsTotal.Inc()
		return &e, nil
	}
	metrics.EventCacheMissesTotal.Inc()

	event, err := s.records.Event(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrEventNotFound) {
			return nil, newError(KindNotFound, "event not found", err)
		}
		s.log.Error("failed to get event", slog.String("op", op), slog.String("event_id", id), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.cache.Add(event.ID, *event)
	return event, nil
}

func (s *EventService) List(ctx context.Context) ([]models.Event, error) {
	const op = "services.EventService.List"

	events, err := s.records.Events(ctx)
	if err != nil {
		s.log.Error("failed to list events", slog.String("op", op), sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return events, nil
}
