package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"photo-share/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"gorm.io/gorm"
)

// PhotoStore is the append-only record of uploaded photos.
type PhotoStore interface {
	// Create inserts p, filling in ID and CreatedAt. A taken filename
	// yields ErrDuplicateFilename.
	Create(ctx context.Context, p *models.Photo) error
	// List returns every photo, newest first.
	List(ctx context.Context) ([]models.Photo, error)
	// FilenameExists reports whether a photo already uses filename.
	FilenameExists(ctx context.Context, filename string) (bool, error)
}

// GormPhotoStore keeps photos in the embedded SQLite database.
type GormPhotoStore struct {
	db *gorm.DB
}

func NewGormPhotoStore(db *gorm.DB) *GormPhotoStore {
	return &GormPhotoStore{db: db}
}

func (s *GormPhotoStore) Create(ctx context.Context, p *models.Photo) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	err := s.db.WithContext(ctx).Create(p).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) || (err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")) {
		return ErrDuplicateFilename
	}
	return err
}

func (s *GormPhotoStore) List(ctx context.Context) ([]models.Photo, error) {
	var photos []models.Photo
	err := s.db.WithContext(ctx).Order("id DESC").Find(&photos).Error
	return photos, err
}

func (s *GormPhotoStore) FilenameExists(ctx context.Context, filename string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Photo{}).Where("filename = ?", filename).Count(&count).Error
	return count > 0, err
}

// PgxPhotoStore keeps photos in PostgreSQL.
type PgxPhotoStore struct {
	pool *pgxpool.Pool
}

func NewPgxPhotoStore(pool *pgxpool.Pool) *PgxPhotoStore {
	return &PgxPhotoStore{pool: pool}
}

const pgUniqueViolation = "23505"

func (s *PgxPhotoStore) Create(ctx context.Context, p *models.Photo) error {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	query := `INSERT INTO photos (filename, title, mime, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
	err := s.pool.QueryRow(ctx, query, p.Filename, p.Title, p.Mime, p.CreatedAt).Scan(&p.ID)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return ErrDuplicateFilename
	}
	return err
}

func (s *PgxPhotoStore) List(ctx context.Context) ([]models.Photo, error) {
	query := `SELECT id, filename, title, mime, created_at FROM photos ORDER BY id DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var photos []models.Photo
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.Filename, &p.Title, &p.Mime, &p.CreatedAt); err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (s *PgxPhotoStore) FilenameExists(ctx context.Context, filename string) (bool, error) {
	var id int
	err := s.pool.QueryRow(ctx, `SELECT id FROM photos WHERE filename = $1`, filename).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}
