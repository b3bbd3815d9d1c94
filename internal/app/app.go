// Package app assembles the Kvotizza backend: configuration, database,
// services, HTTP server, and lifecycle management.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Djalobre/kvotizza/internal/email"
	httpapi "github.com/Djalobre/kvotizza/internal/http"
	"github.com/Djalobre/kvotizza/internal/service"
	"github.com/Djalobre/kvotizza/internal/store"
	"github.com/Djalobre/kvotizza/internal/store/drivers/postgres"
	"github.com/Djalobre/kvotizza/internal/store/drivers/sqlite"
	"github.com/Djalobre/kvotizza/internal/upstream"
	"github.com/Djalobre/kvotizza/pkg/jwtx"
	"github.com/Djalobre/kvotizza/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the backend with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HS256Signer

	accountService      *service.AccountService
	sessionService      *service.SessionService
	mailService         *service.MailService
	affiliateService    *service.AffiliateService
	housekeepingService *service.HousekeepingService

	server *http.Server
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "kvotizza-backend",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	signer, err := jwtx.NewHS256Signer([]byte(cfg.SessionSecret), cfg.SessionIssuer)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize session signer: %w", err)
	}
	app.signer = signer

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("kvotizza backend starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down kvotizza backend...")

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

	app.logger.Info("kvotizza backend stopped")
	return nil
}

// initDatabase opens the configured store and applies migrations.
func (app *Application) initDatabase() error {
	var (
		db  store.Store
		err error
	)

	switch app.cfg.DatabaseDriver {
	case "postgres":
		db, err = postgres.NewStore(app.cfg.DatabaseDSN)
	case "sqlite", "":
		db, err = sqlite.NewStore(app.cfg.DatabaseDSN)
	default:
		return fmt.Errorf("unknown database driver %q", app.cfg.DatabaseDriver)
	}
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.mailService = &service.MailService{
		Sender:       app.mailSender(),
		From:         app.cfg.MailFrom,
		BaseURL:      app.cfg.BaseURL,
		ContactInbox: app.cfg.ContactInbox,
	}

	app.accountService = &service.AccountService{
		Store: app.db,
		Mail:  app.mailService,
		Role:  service.AllowlistRolePolicy(app.cfg.AdminEmails),
	}

	app.sessionService = &service.SessionService{
		Store:      app.db,
		Signer:     app.signer,
		AccessTTL:  app.cfg.AccessTTL,
		RefreshTTL: app.cfg.RefreshTTL,
	}

	app.affiliateService = &service.AffiliateService{
		Store: app.db,
		Links: ParseAffiliateLinks(app.cfg.AffiliateLinks),
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// mailSender selects the mail transport for the environment.
func (app *Application) mailSender() email.Sender {
	if app.cfg.MailMode == "smtp" {
		return email.NewSMTPSender(email.SMTPConfig{
			Host:     app.cfg.SMTPHost,
			Port:     app.cfg.SMTPPort,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
		})
	}
	return email.NewLogSender(app.logger)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := &httpapi.Router{
		Accounts:   app.accountService,
		Sessions:   app.sessionService,
		Mail:       app.mailService,
		Affiliates: app.affiliateService,
		Upstream:   upstream.NewClient(app.cfg.UpstreamBaseURL),
		Store:      app.db,
		Verifier:   app.signer,
		Logger:     app.logger,
		Config: httpapi.Config{
			CORSOrigins:  app.cfg.CORSOrigins,
			CookieSecure: app.cfg.CookieSecure,
			RefreshTTL:   app.cfg.RefreshTTL,
			Version:      BuildVersion,
		},
	}

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router.Handler(),
	}
}
