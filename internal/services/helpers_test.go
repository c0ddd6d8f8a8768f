package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"photo-share/internal/db"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// 1x1 lossless WEBP.
const tinyWebP = "UklGRhoAAABXRUJQVlA4TA0AAAAvAAAAEAcQERGIiP4HAA=="

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 128, 255})
		}
	}
	return img
}

func pngBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, testImage(w, h)))
	return buf.Bytes()
}

func jpegBytes(t testing.TB, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, testImage(w, h), nil))
	return buf.Bytes()
}

func webpBytes(t testing.TB) []byte {
	t.Helper()
	b, err := base64.StdEncoding.DecodeString(tinyWebP)
	require.NoError(t, err)
	return b
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []interface{}
}

func (r *recordingNotifier) Broadcast(event interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *recordingNotifier) Events() []interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]interface{}(nil), r.events...)
}

type testEnv struct {
	svc       *PhotoService
	store     *GormPhotoStore
	notifier  *recordingNotifier
	origDir   string
	thumbsDir string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()

	gdb, err := db.OpenSQLite(filepath.Join(dir, "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.CloseSQLite(gdb) })

	env := &testEnv{
		store:     NewGormPhotoStore(gdb),
		notifier:  &recordingNotifier{},
		origDir:   filepath.Join(dir, "originals"),
		thumbsDir: filepath.Join(dir, "thumbs"),
	}
	require.NoError(t, mkdirs(env.origDir, env.thumbsDir))

	env.svc = NewPhotoService(env.store, NewThumbnailer(480, 2), env.notifier,
		env.origDir, env.thumbsDir, zap.NewNop())
	return env
}

func (e *testEnv) count(t *testing.T) int {
	t.Helper()
	photos, err := e.store.List(context.Background())
	require.NoError(t, err)
	return len(photos)
}

func mkdirs(dirs ...string) error {
	for _, d := range dirs {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return err
		}
	}
	return nil
}
