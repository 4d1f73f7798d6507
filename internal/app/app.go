package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"event-album/internal/config"
	"event-album/internal/db"
	"event-album/internal/handlers"
	"event-album/internal/lib/logger/sl"
	"event-album/internal/metrics"
	"event-album/internal/services"
	"event-album/internal/storage"
	"event-album/internal/storage/filestore"
	"event-album/internal/storage/memory"
	"event-album/internal/storage/postgres"
	"event-album/internal/storage/sqlite"
	"event-album/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/filesystem"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stores are the persistence backends selected by configuration.
type Stores struct {
	Records storage.RecordStore
	Objects storage.ObjectStore
	closers []func()
}

func (s *Stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func Run() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", sl.Err(err))
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting event album",
		slog.String("env", cfg.Env),
		slog.String("record_store", cfg.RecordStore),
		slog.String("object_store", cfg.ObjectStore),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	stores, err := OpenStores(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Error("failed to open storage", sl.Err(err))
		os.Exit(1)
	}
	defer stores.Close()

	app := NewServer(cfg, log, stores)

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server stopped", sl.Err(err))
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sign := <-c
	log.Info("gracefully shutting down", slog.String("signal", sign.String()))
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("shutdown failed", sl.Err(err))
	}
	log.Info("server shutdown complete")
}

// OpenStores connects the record and object stores named in cfg.
func OpenStores(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Stores, error) {
	stores := &Stores{}

	switch cfg.RecordStore {
	case config.RecordStorePostgres:
		dsn := cfg.DatabaseDSN()
		if err := db.Migrate(dsn, log); err != nil {
			return nil, err
		}
		pool, err := db.Connect(ctx, dsn, log)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, pool.Close)
		stores.Records = postgres.New(pool)
	case config.RecordStoreSQLite:
		store, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		stores.closers = append(stores.closers, func() {
			if err := store.Close(); err != nil {
				log.Warn("failed to close sqlite store", sl.Err(err))
			}
		})
		stores.Records = store
	case config.RecordStoreMemory:
		stores.Records = memory.NewRecordStore()
	default:
		return nil, fmt.Errorf("unknown record store %q", cfg.RecordStore)
	}

	objectsURL := strings.TrimRight(cfg.PublicBaseURL, "/") + "/objects"
	switch cfg.ObjectStore {
	case config.ObjectStoreFilesystem:
		fs, err := filestore.New(cfg.UploadDir, objectsURL)
		if err != nil {
			stores.Close()
			return nil, err
		}
		stores.Objects = fs
	case config.ObjectStoreMemory:
		stores.Objects = memory.NewObjectStore(objectsURL)
	default:
		stores.Close()
		return nil, fmt.Errorf("unknown object store %q", cfg.ObjectStore)
	}

	return stores, nil
}

// NewServer builds the services over stores and registers every route.
func NewServer(cfg *config.Config, log *slog.Logger, stores *Stores) *fiber.App {
	eventService := services.NewEventService(log, stores.Records, cfg.EventCacheSize, cfg.EventCacheTTL)
	photoService := services.NewPhotoService(log, eventService, stores.Records, stores.Objects, cfg.MaxPhotoBytes)
	albumService := services.NewAlbumService(
		log,
		eventService,
		stores.Records,
		services.NewStoreFetcher(stores.Objects, cfg.FetchTimeout),
		cfg.PhotoListLimit,
		cfg.ExportConcurrency,
	)
	authService := services.NewAuthService(log, services.AdminConfig{
		Email:      cfg.Admin.Email,
		Password:   cfg.Admin.Password,
		Secret:     cfg.Admin.JWTSecret,
		SessionTTL: cfg.Admin.SessionTTL,
	})

	app := fiber.New(fiber.Config{
		AppName:   "event-album",
		BodyLimit: cfg.MaxBodyBytes,
	})

	// Middleware
	app.Use(logger.New())
	app.Use(recover.New())
	app.Use(cors.New())
	app.Use(metrics.Middleware())

	app.Use("/static", filesystem.New(filesystem.Config{
		Root:   http.FS(web.Static()),
		MaxAge: 3600,
	}))
	app.Get("/objects/*", handlers.ServeObjectHandler(stores.Objects))

	// Routes
	api := app.Group("/api")
	adminOnly := handlers.AuthMiddleware(authService)

	api.Post("/auth/login", handlers.LoginHandler(authService))
	api.Post("/auth/logout", handlers.LogoutHandler)

	api.Get("/events", handlers.ListEventsHandler(eventService))
	api.Post("/events", adminOnly, handlers.CreateEventHandler(eventService))
	api.Get("/events/:id", handlers.GetEventHandler(eventService))
	api.Get("/events/:id/photos", handlers.ListPhotosHandler(albumService))
	api.Get("/events/:id/archive", adminOnly, handlers.ExportAlbumHandler(albumService))
	api.Get("/events/:id/qrcode", adminOnly, handlers.QRCodeHandler(eventService, cfg.PublicBaseURL))

	api.Post("/upload-photo", handlers.UploadPhotoHandler(photoService))

	// Pages
	app.Get("/", handlers.HomePage)
	app.Get("/event/:id", handlers.CapturePage(eventService))
	app.Get("/admin/login", handlers.LoginPage)

	admin := app.Group("/admin", handlers.AdminPageMiddleware(authService))
	admin.Get("/", handlers.DashboardPage(eventService))
	admin.Get("/event/:id", handlers.AlbumPage(eventService, albumService))

	// Health Check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvProd:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return log
}
