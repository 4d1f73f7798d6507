package services

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"event-album/internal/models"
	"event-album/internal/storage"
	"event-album/internal/storage/memory"
)

var testJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00, 0x01, 0xFF, 0xD9}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dataURL(b []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(b)
}

// countingRecords wraps a record store and counts every call made to it.
type countingRecords struct {
	storage.RecordStore
	calls           atomic.Int64
	failCreatePhoto bool
}

func (c *countingRecords) CreateEvent(ctx context.Context, name string, frameURL *string) (*models.Event, error) {
	c.calls.Add(1)
	return c.RecordStore.CreateEvent(ctx, name, frameURL)
}

func (c *countingRecords) Event(ctx context.Context, id string) (*models.Event, error) {
	c.calls.Add(1)
	return c.RecordStore.Event(ctx, id)
}

func (c *countingRecords) Events(ctx context.Context) ([]models.Event, error) {
	c.calls.Add(1)
	return c.RecordStore.Events(ctx)
}

func (c *countingRecords) CreatePhoto(ctx context.Context, eventID, photoURL string) (*models.Photo, error) {
	c.calls.Add(1)
	if c.failCreatePhoto {
		return nil, errors.New("connection reset")
	}
	return c.RecordStore.CreatePhoto(ctx, eventID, photoURL)
}

func (c *countingRecords) Photos(ctx context.Context, eventID string, limit int) ([]models.Photo, error) {
	c.calls.Add(1)
	return c.RecordStore.Photos(ctx, eventID, limit)
}

// countingObjects wraps an object store and counts writes.
type countingObjects struct {
	*memory.ObjectStore
	puts    atomic.Int64
	failPut bool
}

func (c *countingObjects) Put(ctx context.Context, key string, data []byte, contentType, cacheControl string) (storage.ObjectRef, error) {
	c.puts.Add(1)
	if c.failPut {
		return storage.ObjectRef{}, errors.New("disk full")
	}
	return c.ObjectStore.Put(ctx, key, data, contentType, cacheControl)
}

type fixture struct {
	records *countingRecords
	objects *countingObjects
	events  *EventService
	photos  *PhotoService
}

func newFixture() *fixture {
	records := &countingRecords{RecordStore: memory.NewRecordStore()}
	objects := &countingObjects{ObjectStore: memory.NewObjectStore("http://album.test/objects")}
	events := NewEventService(discardLogger(), records, 16, time.Minute)
	return &fixture{
		records: records,
		objects: objects,
		events:  events,
		photos:  NewPhotoService(discardLogger(), events, records, objects, 1<<20),
	}
}

func (f *fixture) createEvent(name string) *models.Event {
	e, err := f.events.Create(context.Background(), models.CreateEventRequest{Name: name})
	if err != nil {
		panic(err)
	}
	return e
}
