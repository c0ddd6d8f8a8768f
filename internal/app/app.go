package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"photo-share/internal/config"
	"photo-share/internal/db"
	"photo-share/internal/handlers"
	"photo-share/internal/hub"
	"photo-share/internal/observability"
	"photo-share/internal/services"
	"photo-share/internal/utils"
	"photo-share/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"
)

// Deps is everything the HTTP layer needs.
type Deps struct {
	Config   config.Config
	Photos   *services.PhotoService
	Registry *hub.Registry
	Metrics  *observability.Metrics
	Logger   *zap.Logger
}

// New builds the Fiber application and its routes.
func New(d Deps) (*fiber.App, error) {
	engine, err := web.NewEngine()
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	app := fiber.New(fiber.Config{
		Views:                 engine,
		BodyLimit:             d.Config.MaxUploadMB * 1024 * 1024,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New())

	app.Use("/static", filesystem.New(filesystem.Config{Root: web.Static()}))

	app.Get("/", handlers.IndexHandler(d.Photos, d.Logger))
	app.Get("/upload", handlers.UploadFormHandler())
	app.Post("/upload", handlers.UploadPhotoHandler(d.Photos, d.Metrics, d.Logger))

	app.Get("/media/thumbs/:filename", handlers.MediaHandler(d.Config.ThumbsDir(), true))
	app.Get("/media/originals/:filename", handlers.MediaHandler(d.Config.OriginalsDir(), false))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", d.Metrics.Handler())

	app.Use("/ws", handlers.WSUpgradeMiddleware)
	app.Get("/ws", handlers.WebSocketHandler(d.Registry, d.Logger))

	return app, nil
}

// Wire builds the store, thumbnailer, registry and notifier from cfg. The
// returned cleanup releases the database.
func Wire(ctx context.Context, cfg config.Config, log *zap.Logger) (Deps, func(), error) {
	if err := cfg.EnsureDirs(); err != nil {
		return Deps{}, nil, err
	}

	store, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return Deps{}, nil, err
	}

	metrics := observability.NewMetrics()

	registry := hub.NewRegistry()
	registry.OnSizeChange(func(n int) { metrics.Viewers.Set(float64(n)) })
	notifier := hub.NewNotifier(registry, log,
		hub.WithFailureHook(metrics.BroadcastFailures.Inc))

	thumbs := services.NewThumbnailer(cfg.ThumbSize, cfg.ThumbWorkers,
		services.WithDurationObserver(func(d time.Duration) { metrics.ThumbnailSeconds.Observe(d.Seconds()) }))

	photos := services.NewPhotoService(store, thumbs, notifier, cfg.OriginalsDir(), cfg.ThumbsDir(), log)

	return Deps{
		Config:   cfg,
		Photos:   photos,
		Registry: registry,
		Metrics:  metrics,
		Logger:   log,
	}, closeStore, nil
}

func openStore(ctx context.Context, cfg config.Config, log *zap.Logger) (services.PhotoStore, func(), error) {
	if cfg.DatabaseURL != "" {
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		log.Info("connected to PostgreSQL")
		return services.NewPgxPhotoStore(pool), pool.Close, nil
	}

	gdb, err := db.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		return nil, nil, err
	}
	log.Info("opened SQLite database", zap.String("path", cfg.SQLitePath))
	return services.NewGormPhotoStore(gdb), func() {
		utils.LogError(log, db.CloseSQLite(gdb), "close sqlite")
	}, nil
}

func Run() error {
	_ = utils.LoadEnv()

	cfg, err := config.Load(utils.GetEnv("CONFIG_FILE", "config.yaml"))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := observability.InitLogger(cfg.IsDev())
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	deps, cleanup, err := Wire(context.Background(), cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	app, err := New(deps)
	if err != nil {
		return err
	}

	go func() {
		log.Info("listening", zap.String("port", cfg.Port), zap.String("media", cfg.MediaDir))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal("server stopped", zap.Error(err))
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	<-c
	log.Info("gracefully shutting down")
	deps.Registry.CloseAll()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	log.Info("server shutdown complete")
	return nil
}
