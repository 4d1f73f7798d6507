package services

import (
	"context"
	"fmt"
	"time"

	"event-album/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// Fetcher loads the bytes behind a photo URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// StoreFetcher reads objects straight from the object store when the URL is
// one of its own, and over HTTP otherwise.
type StoreFetcher struct {
	objects storage.ObjectStore
	timeout time.Duration
}

func NewStoreFetcher(objects storage.ObjectStore, timeout time.Duration) *StoreFetcher {
	return &StoreFetcher{objects: objects, timeout: timeout}
}

func (f *StoreFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if key, ok := f.objects.KeyForURL(url); ok {
		obj, err := f.objects.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		return obj.Data, nil
	}
	return fetchHTTP(ctx, url, f.timeout)
}

// fetchHTTP uses the fiber client; the request itself is bounded by timeout,
// ctx is only checked before it starts.
func fetchHTTP(ctx context.Context, url string, timeout time.Duration) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent := fiber.Get(url)
	if timeout > 0 {
		agent.Timeout(timeout)
	}
	if err := agent.Parse(); err != nil {
		fiber.ReleaseAgent(agent)
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return nil, fmt.Errorf("fetch %s: %w", url, errs[0])
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", url, code)
	}
	return body, nil
}
