package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/femundo/cms/internal/admin/http"
	"github.com/femundo/cms/internal/admin/service"
	"github.com/femundo/cms/internal/admin/store"
	"github.com/femundo/cms/internal/admin/store/drivers/sqlite"
	"github.com/femundo/cms/pkg/cryptox"
	"github.com/femundo/cms/pkg/jwtx"
	"github.com/femundo/cms/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v1.0.0"
)

// Application encapsulates the admin backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.HS256

	limiter         *service.LoginLimiter
	activityService *service.ActivityService
	authService     *service.AuthService
	userService     *service.UserService
	mfaService      *service.MFAService

	server *http.Server
	router *httpapi.Router

	stopSweep chan struct{}
}

// New creates an Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "admin-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		stopSweep: make(chan struct{}),
	}

	cryptox.SetCost(cfg.BcryptCost)

	tokens, err := jwtx.NewHS256([]byte(cfg.JWTSecret), cfg.Issuer)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_JWT_SECRET: %w", err)
	}
	app.tokens = tokens

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	go app.sweepLoop()

	app.logger.Info("admin api starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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
	app.logger.Info("shutting down admin api...")

	close(app.stopSweep)

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admin api stopped")
	return nil
}

// sweepLoop prunes expired lockout windows so idle keys do not accumulate.
func (app *Application) sweepLoop() {
	ticker := time.NewTicker(app.cfg.LimiterSweepPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			app.limiter.Sweep()
		case <-app.stopSweep:
			return
		}
	}
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.limiter = service.NewLoginLimiter(app.cfg.MaxAttempts, app.cfg.LockoutDuration)
	app.activityService = &service.ActivityService{Store: app.db}

	app.authService = &service.AuthService{
		Store:    app.db,
		Signer:   app.tokens,
		Limiter:  app.limiter,
		Activity: app.activityService,
		Issuer:   app.cfg.Issuer,
		TokenTTL: app.cfg.TokenTTL,
	}

	app.userService = &service.UserService{
		Store:    app.db,
		Activity: app.activityService,
	}

	app.mfaService = &service.MFAService{
		Store:    app.db,
		Activity: app.activityService,
		Issuer:   app.cfg.Issuer,
	}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.cfg.AllowedOrigins,
		app.db,
		app.logger,
	)

	router.AuthService = app.authService
	router.UserService = app.userService
	router.MFAService = app.mfaService
	router.ActivityService = app.activityService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
