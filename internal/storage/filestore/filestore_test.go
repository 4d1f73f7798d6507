package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"event-album/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "data")

	fs, err := New(dir, "http://localhost/objects")
	require.NoError(t, err)
	assert.Equal(t, dir, fs.DataDir())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPutGet(t *testing.T) {
	ctx := context.Background()
	fs, err := New(t.TempDir(), "http://localhost/objects/")
	require.NoError(t, err)

	content := []byte{0xFF, 0xD8, 0xFF, 0xE0, 'j', 'p', 'g'}
	ref, err := fs.Put(ctx, "event-1/photo.jpg", content, "image/jpeg", "max-age=3600")
	require.NoError(t, err)
	assert.Equal(t, "event-1/photo.jpg", ref.Key)
	assert.Equal(t, "http://localhost/objects/event-1/photo.jpg", fs.PublicURL(ref))

	obj, err := fs.Get(ctx, ref.Key)
	require.NoError(t, err)
	assert.Equal(t, content, obj.Data)
	assert.Equal(t, "image/jpeg", obj.ContentType)
	assert.Equal(t, "max-age=3600", obj.CacheControl)

	attrs, err := ReadAttrs(filepath.Join(fs.DataDir(), "event-1", "photo.jpg"+AttrSuffix))
	require.NoError(t, err)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), attrs.Checksum)
	assert.Equal(t, int64(len(content)), attrs.Size)

	_, err = os.Stat(filepath.Join(fs.DataDir(), "event-1", "photo.jpg.tmp"))
	assert.True(t, os.IsNotExist(err), "temp file must not survive")
}

func TestPut_RejectsEscapingKeys(t *testing.T) {
	fs, err := New(t.TempDir(), "/objects")
	require.NoError(t, err)

	for _, key := range []string{"", "/abs.jpg", "../up.jpg", "a/../../b.jpg", `a\b.jpg`, "a//b.jpg"} {
		_, err := fs.Put(context.Background(), key, []byte("x"), "image/jpeg", "")
		assert.ErrorIs(t, err, storage.ErrInvalidKey, "key %q", key)
	}
}

func TestGet_Missing(t *testing.T) {
	fs, err := New(t.TempDir(), "/objects")
	require.NoError(t, err)

	_, err = fs.Get(context.Background(), "nope/missing.jpg")
	assert.ErrorIs(t, err, storage.ErrObjectNotFound)
}

func TestKeyForURL(t *testing.T) {
	fs, err := New(t.TempDir(), "https://album.example.com/objects")
	require.NoError(t, err)

	key, ok := fs.KeyForURL("https://album.example.com/objects/e1/p1.jpg")
	assert.True(t, ok)
	assert.Equal(t, "e1/p1.jpg", key)

	_, ok = fs.KeyForURL("https://cdn.example.com/e1/p1.jpg")
	assert.False(t, ok)

	_, ok = fs.KeyForURL("https://album.example.com/objects/../secret")
	assert.False(t, ok)
}

func TestGet_HidesSidecarsAndTempFiles(t *testing.T) {
	ctx := context.Background()
	fs, err := New(t.TempDir(), "/objects")
	require.NoError(t, err)

	_, err = fs.Put(ctx, "e/p.jpg", []byte{0xFF, 0xD8, 0xFF}, "image/jpeg", "")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(fs.DataDir(), "e", "q.jpg.tmp"), []byte("partial"), 0o640))

	for _, key := range []string{"e/p.jpg" + AttrSuffix, "e/q.jpg.tmp"} {
		_, err := fs.Get(ctx, key)
		assert.ErrorIs(t, err, storage.ErrObjectNotFound, "key %q", key)
	}

	_, err = fs.Get(ctx, "e/p.jpg")
	require.NoError(t, err)
}
