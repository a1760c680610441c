package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/vidhub/internal/api/http"
	"github.com/aussiebroadwan/vidhub/internal/api/metrics"
	"github.com/aussiebroadwan/vidhub/internal/api/service"
	"github.com/aussiebroadwan/vidhub/internal/api/store"
	"github.com/aussiebroadwan/vidhub/internal/api/store/drivers/mongodb"
	"github.com/aussiebroadwan/vidhub/internal/api/store/drivers/sqlite"
	"github.com/aussiebroadwan/vidhub/internal/api/upload"
	"github.com/aussiebroadwan/vidhub/pkg/cryptox"
	"github.com/aussiebroadwan/vidhub/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the API server with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	uploader upload.Uploader
	media    http.Handler
	tokens   *service.TokenIssuer
	metrics  *metrics.Metrics

	// Services
	sessionService      *service.SessionService
	userService         *service.UserService
	videoService        *service.VideoService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "vidhub-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initUploads(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Handler returns the fully wired HTTP handler without starting a listener.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("vidhub api starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
		"uploads", app.cfg.UploadDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down vidhub api...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("vidhub api stopped")
	return nil
}

// Close releases the database without going through the HTTP server. Used
// when the application was never Run.
func (app *Application) Close() error {
	return app.db.Close()
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.StoreDriver {
	case StoreMongo:
		db, err = mongodb.NewStore(app.cfg.MongoURI, app.cfg.MongoDatabase)
	default:
		dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err = sqlite.NewStore(dsn)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.Ping(pingCtx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to reach database: %w", err)
	}

	if err := db.ApplyMigrations(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.StoreDriver)
	return nil
}

// initUploads picks the object storage backend. The disk backend also serves
// its files under /media/.
func (app *Application) initUploads(ctx context.Context) error {
	switch app.cfg.UploadDriver {
	case UploadS3:
		u, err := upload.NewS3Uploader(ctx, app.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize s3 uploads: %w", err)
		}
		app.uploader = u
	default:
		u, err := upload.NewDiskUploader(app.cfg.UploadDir, app.cfg.UploadBaseURL)
		if err != nil {
			return fmt.Errorf("failed to initialize disk uploads: %w", err)
		}
		app.uploader = u
		app.media = u.Handler()
		app.logger.Warn("serving uploads from local disk", "dir", app.cfg.UploadDir)
	}
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	tokens, err := service.NewTokenIssuer(service.TokenConfig{
		Issuer:        app.cfg.TokenIssuer,
		AccessSecret:  []byte(app.cfg.AccessTokenSecret),
		RefreshSecret: []byte(app.cfg.RefreshTokenSecret),
		AccessTTL:     app.cfg.AccessTokenExpiry,
		RefreshTTL:    app.cfg.RefreshTokenExpiry,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize token issuer: %w", err)
	}
	app.tokens = tokens
	app.metrics = metrics.New()

	credentials := &service.CredentialStore{Users: app.db.Users()}

	app.sessionService = &service.SessionService{
		Credentials: credentials,
		Tokens:      tokens,
		Uploader:    app.uploader,
		Events:      app.metrics,
	}
	app.userService = &service.UserService{Credentials: credentials}
	app.videoService = &service.VideoService{
		Videos:   app.db.Videos(),
		Uploader: app.uploader,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db.Users(),
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens.AccessVerifier(),
		BuildVersion,
		app.db,
		app.logger,
		app.metrics,
	)

	// Wire services to router
	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.VideoService = app.videoService
	router.Media = app.media
	router.CookieSecure = app.cfg.CookieSecure
	router.RateLimits = app.cfg.RateLimits
	router.MaxUploadBytes = app.cfg.UploadMaxBytes
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
