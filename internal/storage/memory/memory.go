// Package memory holds map-backed record and object stores for local runs and tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"event-album/internal/models"
	"event-album/internal/storage"

	"github.com/google/uuid"
)

type RecordStore struct {
	mu     sync.RWMutex
	events map[string]models.Event
	photos map[string][]models.Photo
	now    func() time.Time
}

func NewRecordStore() *RecordStore {
	return &RecordStore{
		events: make(map[string]models.Event),
		photos: make(map[string][]models.Photo),
		now:    time.Now,
	}
}

// WithClock replaces the timestamp source, used by tests that need ties.
func (s *RecordStore) WithClock(now func() time.Time) *RecordStore {
	s.now = now
	return s
}

func (s *RecordStore) CreateEvent(_ context.Context, name string, frameURL *string) (*models.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e := models.Event{
		ID:        uuid.New().String(),
		Name:      name,
		FrameURL:  frameURL,
		CreatedAt: s.now().UTC(),
	}
	s.events[e.ID] = e
	return &e, nil
}

func (s *RecordStore) Event(_ context.Context, id string) (*models.Event, error) {
	const op = "storage.memory.Event"

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.events[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
	}
	return &e, nil
}

func (s *RecordStore) Events(_ context.Context) ([]models.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]models.Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].CreatedAt.Equal(events[j].CreatedAt) {
			return events[i].CreatedAt.After(events[j].CreatedAt)
		}
		return events[i].ID > events[j].ID
	})
	return events, nil
}

func (s *RecordStore) CreatePhoto(_ context.Context, eventID, photoURL string) (*models.Photo, error) {
	const op = "storage.memory.CreatePhoto"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[eventID]; !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrEventNotFound)
	}
	p := models.Photo{
		ID:        uuid.New().String(),
		EventID:   eventID,
		PhotoURL:  photoURL,
		CreatedAt: s.now().UTC(),
	}
	s.photos[eventID] = append(s.photos[eventID], p)
	return &p, nil
}

func (s *RecordStore) Photos(_ context.Context, eventID string, limit int) ([]models.Photo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	photos := make([]models.Photo, 0, len(s.photos[eventID]))
	photos = append(photos, s.photos[eventID]...)
	sort.Slice(photos, func(i, j int) bool {
		if !photos[i].CreatedAt.Equal(photos[j].CreatedAt) {
			return photos[i].CreatedAt.After(photos[j].CreatedAt)
		}
		return photos[i].ID > photos[j].ID
	})
	if limit > 0 && len(photos) > limit {
		photos = photos[:limit]
	}
	return photos, nil
}

// PhotoCount returns how many photos were recorded across all events.
func (s *RecordStore) PhotoCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, p := range s.photos {
		n += len(p)
	}
	return n
}

type ObjectStore struct {
	mu      sync.RWMutex
	objects map[string]storage.Object
	baseURL string
}

func NewObjectStore(baseURL string) *ObjectStore {
	return &ObjectStore{
		objects: make(map[string]storage.Object),
		baseURL: baseURL,
	}
}

func (s *ObjectStore) Put(_ context.Context, key string, data []byte, contentType, cacheControl string) (storage.ObjectRef, error) {
	const op = "storage.memory.Put"

	if err := storage.ValidateKey(key); err != nil {
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = storage.Object{
		Data:         append([]byte(nil), data...),
		ContentType:  contentType,
		CacheControl: cacheControl,
	}
	return storage.ObjectRef{Key: key}, nil
}

func (s *ObjectStore) Get(_ context.Context, key string) (*storage.Object, error) {
	const op = "storage.memory.Get"

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
	}
	obj.Data = append([]byte(nil), obj.Data...)
	return &obj, nil
}

func (s *ObjectStore) PublicURL(ref storage.ObjectRef) string {
	return s.baseURL + "/" + ref.Key
}

func (s *ObjectStore) KeyForURL(url string) (string, bool) {
	return storage.KeyFromURL(s.baseURL, url)
}

// Keys lists stored object keys in no particular order.
func (s *ObjectStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}
