package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"photo-share/internal/utils"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Port         string `yaml:"port"`
	MediaDir     string `yaml:"media_dir"`
	SQLitePath   string `yaml:"sqlite_path"`
	DatabaseURL  string `yaml:"database_url"`
	ThumbSize    int    `yaml:"thumb_size"`
	ThumbWorkers int    `yaml:"thumb_workers"`
	MaxUploadMB  int    `yaml:"max_upload_mb"`
	Env          string `yaml:"env"`
}

func Default() Config {
	return Config{
		Port:         "8000",
		MediaDir:     "media",
		SQLitePath:   filepath.Join("data", "app.db"),
		ThumbSize:    480,
		ThumbWorkers: 2,
		MaxUploadMB:  32,
		Env:          "production",
	}
}

// Load builds the config from defaults, then the YAML file at path (if it
// exists), then environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port)
	cfg.MediaDir = utils.GetEnv("MEDIA_DIR", cfg.MediaDir)
	cfg.SQLitePath = utils.GetEnv("SQLITE_PATH", cfg.SQLitePath)
	cfg.DatabaseURL = utils.GetEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.ThumbSize = utils.GetEnvInt("THUMB_SIZE", cfg.ThumbSize)
	cfg.ThumbWorkers = utils.GetEnvInt("THUMB_WORKERS", cfg.ThumbWorkers)
	cfg.MaxUploadMB = utils.GetEnvInt("MAX_UPLOAD_MB", cfg.MaxUploadMB)
	cfg.Env = utils.GetEnv("APP_ENV", cfg.Env)

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.MediaDir == "" {
		return errors.New("media_dir is required")
	}
	if c.DatabaseURL == "" && c.SQLitePath == "" {
		return errors.New("either database_url or sqlite_path is required")
	}
	if c.ThumbSize <= 0 {
		return fmt.Errorf("thumb_size must be positive, got %d", c.ThumbSize)
	}
	if c.ThumbWorkers <= 0 {
		return fmt.Errorf("thumb_workers must be positive, got %d", c.ThumbWorkers)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max_upload_mb must be positive, got %d", c.MaxUploadMB)
	}
	return nil
}

func (c Config) IsDev() bool {
	return c.Env == "development" || c.Env == "dev"
}

func (c Config) OriginalsDir() string { return filepath.Join(c.MediaDir, "originals") }
func (c Config) ThumbsDir() string    { return filepath.Join(c.MediaDir, "thumbs") }

// EnsureDirs creates the media trees if they are missing.
func (c Config) EnsureDirs() error {
	for _, d := range []string{c.MediaDir, c.OriginalsDir(), c.ThumbsDir()} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return fmt.Errorf("create %s: %w", d, err)
		}
	}
	return nil
}
