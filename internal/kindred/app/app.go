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

	httpapi "github.com/AvallenSolutions/kindredcollective/internal/kindred/http"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/service"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store/drivers/sqlite"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/jwtx"
	"github.com/AvallenSolutions/kindredcollective/pkg/mailx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the membership service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	tokens *jwtx.Tokens
	mailer mailx.Mailer

	// Services
	authService         *service.AuthService
	bootstrapService    *service.BootstrapService
	userService         *service.UserService
	inviteLinkService   *service.InviteLinkService
	organisationService *service.OrganisationService
	orgInviteService    *service.OrganisationInviteService
	claimService        *service.ClaimService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "kindred",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initTokens()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	// Start housekeeping service
	app.housekeepingService.Start()

	app.logger.Info("kindred service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down kindred service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	// Shutdown the HTTP server
	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	// Stop the housekeeping service
	app.housekeepingService.Stop()

	// Close database connection
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("kindred service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations
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

// initTokens configures the session token signer. A missing secret outside
// dev gets a generated one, which invalidates sessions on restart.
func (app *Application) initTokens() {
	secret := app.cfg.SessionSecret
	if secret == "" {
		secret = cryptox.MustGenerateToken(cryptox.TokenSize256)
		app.logger.Warn("KINDRED_SESSION_SECRET not set; sessions will not survive restarts")
	}

	app.tokens = &jwtx.Tokens{
		Secret: []byte(secret),
		Issuer: app.cfg.Issuer,
		TTL:    jwtx.DefaultSessionTTL,
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.mailer = &mailx.LogMailer{Logger: app.logger}

	app.inviteLinkService = &service.InviteLinkService{
		Store:  app.db,
		AppURL: app.cfg.AppURL,
	}
	app.authService = &service.AuthService{
		Store:       app.db,
		Tokens:      app.tokens,
		InviteLinks: app.inviteLinkService,
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}
	app.userService = &service.UserService{Store: app.db}
	app.organisationService = &service.OrganisationService{Store: app.db}
	app.orgInviteService = &service.OrganisationInviteService{
		Store:  app.db,
		Mailer: app.mailer,
		AppURL: app.cfg.AppURL,
	}
	app.claimService = &service.ClaimService{
		Store:   app.db,
		Mailer:  app.mailer,
		DevMode: app.cfg.Env == "dev",
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.tokens,
		BuildVersion,
		app.db,
		app.logger,
	)

	// Wire services to router
	router.AuthService = app.authService
	router.BootstrapService = app.bootstrapService
	router.UserService = app.userService
	router.InviteLinks = app.inviteLinkService
	router.Organisations = app.organisationService
	router.OrgInviteService = app.orgInviteService
	router.ClaimService = app.claimService
	router.ApplyRoutes()

	app.router = router

	// Initialize HTTP server
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
