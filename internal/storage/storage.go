package storage

import (
	"context"
	"errors"
	"strings"

	"event-album/internal/models"
)

var (
	ErrEventNotFound  = errors.New("event not found")
	ErrObjectNotFound = errors.New("object not found")
	ErrInvalidKey     = errors.New("invalid object key")
)

// ObjectRef identifies a stored binary object.
type ObjectRef struct {
	Key string
}

// Object is a stored binary together with the headers it was written with.
type Object struct {
	Data         []byte
	ContentType  string
	CacheControl string
}

// ObjectStore keeps photo bytes and hands out public URLs for them.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType, cacheControl string) (ObjectRef, error)
	Get(ctx context.Context, key string) (*Object, error)
	PublicURL(ref ObjectRef) string
	// KeyForURL reports the key behind a URL previously returned by PublicURL.
	KeyForURL(url string) (string, bool)
}

// RecordStore keeps events and photos.
// Listings are ordered by created_at descending, ties broken by id descending.
type RecordStore interface {
	CreateEvent(ctx context.Context, name string, frameURL *string) (*models.Event, error)
	Event(ctx context.Context, id string) (*models.Event, error)
	Events(ctx context.Context) ([]models.Event, error)
	CreatePhoto(ctx context.Context, eventID, photoURL string) (*models.Photo, error)
	Photos(ctx context.Context, eventID string, limit int) ([]models.Photo, error)
}

// ValidateKey rejects keys that could escape the store namespace.
func ValidateKey(key string) error {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return ErrInvalidKey
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return ErrInvalidKey
		}
	}
	return nil
}

// KeyFromURL strips base from url and validates what is left.
func KeyFromURL(base, url string) (string, bool) {
	prefix := strings.TrimRight(base, "/") + "/"
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	key := strings.TrimPrefix(url, prefix)
	if ValidateKey(key) != nil {
		return "", false
	}
	return key, true
}
