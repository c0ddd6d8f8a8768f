package services

import (
	"context"
	"fmt"
	"image"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"golang.org/x/sync/semaphore"

	// Register the WEBP decoder; JPEG and PNG come with imaging.
	_ "golang.org/x/image/webp"
)

const DefaultThumbSize = 480

// Thumbnailer renders bounded-size thumbnails on a fixed number of workers.
// Callers block until their own thumbnail is written.
type Thumbnailer struct {
	maxWidth  int
	maxHeight int
	sem       *semaphore.Weighted
	observe   func(time.Duration)
}

type ThumbnailerOption func(*Thumbnailer)

// WithDurationObserver receives the wall time of every rendered thumbnail.
func WithDurationObserver(fn func(time.Duration)) ThumbnailerOption {
	return func(t *Thumbnailer) { t.observe = fn }
}

func NewThumbnailer(size, workers int, opts ...ThumbnailerOption) *Thumbnailer {
	if size <= 0 {
		size = DefaultThumbSize
	}
	if workers <= 0 {
		workers = 1
	}
	t := &Thumbnailer{
		maxWidth:  size,
		maxHeight: size,
		sem:       semaphore.NewWeighted(int64(workers)),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Generate writes a thumbnail of src to dst. Waiting for a free worker
// honours ctx; once rendering starts it runs to completion.
func (t *Thumbnailer) Generate(ctx context.Context, src, dst string) error {
	if err := t.sem.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer t.sem.Release(1)
		start := time.Now()
		err := t.render(src, dst)
		if t.observe != nil && err == nil {
			t.observe(time.Since(start))
		}
		done <- err
	}()
	return <-done
}

func (t *Thumbnailer) render(src, dst string) error {
	f, err := os.Open(src)
	if err != nil {
		return storageErr("open original", err)
	}
	defer f.Close()

	img, err := imaging.Decode(f, imaging.AutoOrientation(true))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImage, err)
	}

	thumb := imaging.Fit(img, t.maxWidth, t.maxHeight, imaging.Lanczos)
	if err := writeImage(thumb, dst); err != nil {
		return storageErr("write thumbnail", err)
	}
	return nil
}

// writeImage encodes img in the format implied by dst's extension, falling
// back to JPEG for formats imaging cannot encode (e.g. WEBP). The file is
// renamed into place so readers never see a partial thumbnail.
func writeImage(img image.Image, dst string) error {
	format, err := imaging.FormatFromFilename(dst)
	if err != nil {
		format = imaging.JPEG
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".thumb-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := imaging.Encode(tmp, img, format, imaging.JPEGQuality(85)); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0644); err != nil {
		return err
	}
	return os.Rename(tmpName, dst)
}
