package services

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"photo-share/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUploadAcceptsAllowedTypes(t *testing.T) {
	cases := []struct {
		mime     string
		filename string
		data     func(t testing.TB) []byte
	}{
		{"image/jpeg", "a.jpg", func(t testing.TB) []byte { return jpegBytes(t, 64, 48) }},
		{"image/png", "b.png", func(t testing.TB) []byte { return pngBytes(t, 64, 48) }},
		{"image/webp", "c.webp", webpBytes},
	}

	for _, tc := range cases {
		t.Run(tc.mime, func(t *testing.T) {
			env := newTestEnv(t)

			photo, err := env.svc.Upload(context.Background(), UploadRequest{
				Title:       "hello",
				Filename:    tc.filename,
				ContentType: tc.mime,
				File:        bytes.NewReader(tc.data(t)),
			})
			require.NoError(t, err)

			assert.Equal(t, tc.filename, photo.Filename)
			assert.Equal(t, tc.mime, photo.Mime)
			assert.FileExists(t, filepath.Join(env.origDir, tc.filename))
			assert.FileExists(t, filepath.Join(env.thumbsDir, tc.filename))
			assert.Equal(t, 1, env.count(t))
		})
	}
}

func TestUploadRejectsWithoutSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.svc.Upload(ctx, UploadRequest{Filename: "x.gif", ContentType: "image/gif", File: bytes.NewReader([]byte("GIF89a"))})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = env.svc.Upload(ctx, UploadRequest{Filename: "x.jpg", ContentType: "image/jpeg"})
	assert.ErrorIs(t, err, ErrNoFile)

	entries, err := os.ReadDir(env.origDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
	assert.Equal(t, 0, env.count(t))
	assert.Empty(t, env.notifier.Events())
}

func TestUploadSanitizesNameAndNotifies(t *testing.T) {
	env := newTestEnv(t)

	photo, err := env.svc.Upload(context.Background(), UploadRequest{
		Title:       "Beach",
		Filename:    "My Photo #1.JPG",
		ContentType: "image/jpeg",
		File:        bytes.NewReader(jpegBytes(t, 32, 32)),
	})
	require.NoError(t, err)

	assert.Equal(t, "My_Photo_1.JPG", photo.Filename)
	assert.Equal(t, []interface{}{models.PhotoEvent{
		Type:     "new_photo",
		ID:       photo.ID,
		ThumbURL: "/media/thumbs/My_Photo_1.JPG",
		Title:    "Beach",
	}}, env.notifier.Events())
}

func TestUploadSynthesizesNameForUnsafeInput(t *testing.T) {
	env := newTestEnv(t)
	env.svc.now = func() time.Time { return time.Unix(1700000000, 0) }

	photo, err := env.svc.Upload(context.Background(), UploadRequest{
		Filename:    "###",
		ContentType: "image/png",
		File:        bytes.NewReader(pngBytes(t, 10, 10)),
	})
	require.NoError(t, err)
	assert.Equal(t, "photo_1700000000.jpg", photo.Filename)
}

func TestUploadDisambiguatesDuplicateNames(t *testing.T) {
	env := newTestEnv(t)
	suffixes := []string{"aaaa1111", "bbbb2222"}
	env.svc.newSuffix = func() string {
		s := suffixes[0]
		suffixes = suffixes[1:]
		return s
	}
	ctx := context.Background()

	first := jpegBytes(t, 20, 20)
	second := jpegBytes(t, 40, 40)

	p1, err := env.svc.Upload(ctx, UploadRequest{Filename: "cat.jpg", ContentType: "image/jpeg", File: bytes.NewReader(first)})
	require.NoError(t, err)
	p2, err := env.svc.Upload(ctx, UploadRequest{Filename: "cat.jpg", ContentType: "image/jpeg", File: bytes.NewReader(second)})
	require.NoError(t, err)

	assert.Equal(t, "cat.jpg", p1.Filename)
	assert.Equal(t, "cat_aaaa1111.jpg", p2.Filename)

	got, err := os.ReadFile(filepath.Join(env.origDir, "cat.jpg"))
	require.NoError(t, err)
	assert.Equal(t, first, got, "first original must not be overwritten")
}

func TestUploadSkipsNamesKnownOnlyToStore(t *testing.T) {
	env := newTestEnv(t)
	env.svc.newSuffix = func() string { return "feedbeef" }
	ctx := context.Background()

	require.NoError(t, env.store.Create(ctx, &models.Photo{Filename: "dog.png", Mime: "image/png"}))

	photo, err := env.svc.Upload(ctx, UploadRequest{Filename: "dog.png", ContentType: "image/png", File: bytes.NewReader(pngBytes(t, 8, 8))})
	require.NoError(t, err)
	assert.Equal(t, "dog_feedbeef.png", photo.Filename)
}

func TestConcurrentSameNameUploadsDoNotClobber(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	const n = 6
	data := pngBytes(t, 16, 16)
	var wg sync.WaitGroup
	names := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := env.svc.Upload(ctx, UploadRequest{Filename: "same.png", ContentType: "image/png", File: bytes.NewReader(data)})
			if assert.NoError(t, err) {
				names <- p.Filename
			}
		}()
	}
	wg.Wait()
	close(names)

	seen := map[string]bool{}
	for name := range names {
		assert.False(t, seen[name], "duplicate name %s", name)
		seen[name] = true
	}
	assert.Len(t, seen, n)
	assert.Equal(t, n, env.count(t))
}

func TestUploadRollsBackOnInvalidImage(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Upload(context.Background(), UploadRequest{
		Filename:    "fake.png",
		ContentType: "image/png",
		File:        bytes.NewReader([]byte("not an image")),
	})
	assert.ErrorIs(t, err, ErrInvalidImage)

	assert.NoFileExists(t, filepath.Join(env.origDir, "fake.png"))
	assert.NoFileExists(t, filepath.Join(env.thumbsDir, "fake.png"))
	assert.Equal(t, 0, env.count(t))
	assert.Empty(t, env.notifier.Events())
}

type failingStore struct {
	PhotoStore
}

func (failingStore) Create(context.Context, *models.Photo) error {
	return errors.New("disk full")
}

func TestUploadRollsBackOnStoreFailure(t *testing.T) {
	env := newTestEnv(t)
	env.svc.store = failingStore{PhotoStore: env.store}

	_, err := env.svc.Upload(context.Background(), UploadRequest{
		Filename:    "ok.png",
		ContentType: "image/png",
		File:        bytes.NewReader(pngBytes(t, 8, 8)),
	})

	var serr *StorageError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "record photo", serr.Op)
	assert.NoFileExists(t, filepath.Join(env.origDir, "ok.png"))
	assert.NoFileExists(t, filepath.Join(env.thumbsDir, "ok.png"))
	assert.Empty(t, env.notifier.Events())
}

func TestIsAllowedMime(t *testing.T) {
	assert.True(t, IsAllowedMime("image/jpeg"))
	assert.True(t, IsAllowedMime("IMAGE/PNG"))
	assert.True(t, IsAllowedMime("image/webp; q=1"))
	assert.False(t, IsAllowedMime("image/gif"))
	assert.False(t, IsAllowedMime(""))
	assert.False(t, IsAllowedMime("application/octet-stream"))
}
