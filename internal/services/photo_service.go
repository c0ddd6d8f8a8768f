package services

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"photo-share/internal/models"
	"photo-share/internal/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// maxNameAttempts bounds how many suffixed names are tried for one upload.
const maxNameAttempts = 5

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

// NormalizeMime lowercases a declared content type and drops parameters.
func NormalizeMime(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

func IsAllowedMime(contentType string) bool {
	_, ok := allowedMimeTypes[NormalizeMime(contentType)]
	return ok
}

// Notifier delivers events to live viewers.
type Notifier interface {
	Broadcast(event interface{})
}

// UploadRequest is one uploaded file. File is nil when the form had no file.
type UploadRequest struct {
	Title       string
	Filename    string
	ContentType string
	File        io.Reader
}

type PhotoService struct {
	store        PhotoStore
	thumbs       *Thumbnailer
	notifier     Notifier
	originalsDir string
	thumbsDir    string
	logger       *zap.Logger

	now       func() time.Time
	newSuffix func() string
}

func NewPhotoService(store PhotoStore, thumbs *Thumbnailer, notifier Notifier, originalsDir, thumbsDir string, logger *zap.Logger) *PhotoService {
	return &PhotoService{
		store:        store,
		thumbs:       thumbs,
		notifier:     notifier,
		originalsDir: originalsDir,
		thumbsDir:    thumbsDir,
		logger:       logger,
		now:          time.Now,
		newSuffix:    func() string { return uuid.NewString()[:8] },
	}
}

// List returns all photos, newest first.
func (s *PhotoService) List(ctx context.Context) ([]models.Photo, error) {
	return s.store.List(ctx)
}

// Upload validates req, stores the original, renders its thumbnail, records
// the photo and notifies viewers. On any failure after the original is
// written, the files of this upload are removed again.
func (s *PhotoService) Upload(ctx context.Context, req UploadRequest) (*models.Photo, error) {
	if req.File == nil {
		return nil, ErrNoFile
	}
	mimeType := NormalizeMime(req.ContentType)
	if _, ok := allowedMimeTypes[mimeType]; !ok {
		return nil, ErrUnsupportedType
	}

	data, err := io.ReadAll(req.File)
	if err != nil {
		return nil, storageErr("read upload", err)
	}

	name, origPath, err := s.persistOriginal(ctx, utils.StorageName(req.Filename, s.now()), data)
	if err != nil {
		return nil, err
	}
	thumbPath := filepath.Join(s.thumbsDir, name)

	if err := s.thumbs.Generate(ctx, origPath, thumbPath); err != nil {
		s.rollback(origPath, thumbPath)
		return nil, err
	}

	photo := &models.Photo{Filename: name, Title: req.Title, Mime: mimeType}
	if err := s.store.Create(ctx, photo); err != nil {
		s.rollback(origPath, thumbPath)
		return nil, storageErr("record photo", err)
	}

	s.logger.Info("photo uploaded",
		zap.Int("id", photo.ID),
		zap.String("filename", photo.Filename),
		zap.String("mime", photo.Mime),
		zap.Int("bytes", len(data)))

	s.notifier.Broadcast(models.NewPhotoEvent(photo))
	return photo, nil
}

// persistOriginal claims a free file name derived from base and writes data
// to it. Names taken on disk or in the store get a random suffix.
func (s *PhotoService) persistOriginal(ctx context.Context, base string, data []byte) (string, string, error) {
	for attempt := 0; attempt < maxNameAttempts; attempt++ {
		candidate := base
		if attempt > 0 {
			candidate = utils.WithSuffix(base, s.newSuffix())
		}

		taken, err := s.store.FilenameExists(ctx, candidate)
		if err != nil {
			return "", "", storageErr("check filename", err)
		}
		if taken {
			continue
		}

		path := filepath.Join(s.originalsDir, candidate)
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", storageErr("create original", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", "", storageErr("write original", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(path)
			return "", "", storageErr("write original", err)
		}

		if candidate != base {
			s.logger.Debug("renamed colliding upload",
				zap.String("requested", base), zap.String("stored", candidate))
		}
		return candidate, path, nil
	}
	return "", "", storageErr("resolve filename", ErrDuplicateFilename)
}

func (s *PhotoService) rollback(paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("rollback failed", zap.String("path", p), zap.Error(err))
		}
	}
}
