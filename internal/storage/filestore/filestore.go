// Package filestore keeps photo objects on local disk.
// Every object has a sidecar {key}.attr.json with the headers it is served with.
// Writes go temp file → fsync → rename so readers never see a partial object.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"event-album/internal/storage"
)

const AttrSuffix = ".attr.json"

const tmpSuffix = ".tmp"

// Attrs is the sidecar content for a stored object.
type Attrs struct {
	Key          string    `json:"key"`
	ContentType  string    `json:"content_type"`
	CacheControl string    `json:"cache_control"`
	Size         int64     `json:"size"`
	Checksum     string    `json:"checksum"`
	StoredAt     time.Time `json:"stored_at"`
}

type FileStore struct {
	dataDir string
	baseURL string
}

// New creates the data directory if needed. baseURL is the public prefix
// objects are served under, e.g. "https://album.example.com/objects".
func New(dataDir, baseURL string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (fs *FileStore) DataDir() string {
	return fs.dataDir
}

func (fs *FileStore) Put(ctx context.Context, key string, data []byte, contentType, cacheControl string) (storage.ObjectRef, error) {
	const op = "storage.filestore.Put"

	if err := storage.ValidateKey(key); err != nil {
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := ctx.Err(); err != nil {
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}

	fullPath := fs.fullPath(key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o750); err != nil {
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := writeAtomic(fullPath, data); err != nil {
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}

	sum := sha256.Sum256(data)
	attrs := Attrs{
		Key:          key,
		ContentType:  contentType,
		CacheControl: cacheControl,
		Size:         int64(len(data)),
		Checksum:     hex.EncodeToString(sum[:]),
		StoredAt:     time.Now().UTC(),
	}
	raw, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := writeAtomic(fullPath+AttrSuffix, raw); err != nil {
		_ = os.Remove(fullPath)
		return storage.ObjectRef{}, fmt.Errorf("%s: %w", op, err)
	}

	return storage.ObjectRef{Key: key}, nil
}

func (fs *FileStore) Get(_ context.Context, key string) (*storage.Object, error) {
	const op = "storage.filestore.Get"

	if err := storage.ValidateKey(key); err != nil {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
	}
	// sidecars and in-progress writes are not objects
	if strings.HasSuffix(key, AttrSuffix) || strings.HasSuffix(key, tmpSuffix) {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
	}

	fullPath := fs.fullPath(key)
	data, err := os.ReadFile(fullPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrObjectNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	obj := &storage.Object{Data: data, ContentType: "application/octet-stream"}
	attrs, err := ReadAttrs(fullPath + AttrSuffix)
	if err == nil {
		obj.ContentType = attrs.ContentType
		obj.CacheControl = attrs.CacheControl
	}
	return obj, nil
}

func (fs *FileStore) PublicURL(ref storage.ObjectRef) string {
	return fs.baseURL + "/" + ref.Key
}

func (fs *FileStore) KeyForURL(url string) (string, bool) {
	return storage.KeyFromURL(fs.baseURL, url)
}

func (fs *FileStore) fullPath(key string) string {
	return filepath.Join(fs.dataDir, filepath.FromSlash(key))
}

// ReadAttrs reads an object sidecar.
func ReadAttrs(path string) (*Attrs, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read attrs %s: %w", path, err)
	}
	var attrs Attrs
	if err := json.Unmarshal(raw, &attrs); err != nil {
		return nil, fmt.Errorf("decode attrs %s: %w", path, err)
	}
	return &attrs, nil
}

func writeAtomic(path string, data []byte) error {
	tmpPath := path + tmpSuffix

	f, err := os.Create(tmpPath)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write: %w", err)
	}

	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("fsync: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
