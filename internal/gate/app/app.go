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

	gatehttp "github.com/growersgate/gate/internal/gate/http"
	"github.com/growersgate/gate/internal/gate/service"
	"github.com/growersgate/gate/internal/gate/store"
	"github.com/growersgate/gate/internal/gate/store/drivers/redis"
	"github.com/growersgate/gate/internal/gate/store/drivers/sqlite"
	"github.com/growersgate/gate/pkg/cryptox"
	"github.com/growersgate/gate/pkg/httpx"
	"github.com/growersgate/gate/pkg/jwtx"
	"github.com/growersgate/gate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the gate service with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	sqlStore *sqlite.Store
	state    *redis.State // nil unless AUTH_SESSION_STATE=redis
	db       store.Store
	secrets  *jwtx.SecretSet

	// Services
	tokenService        *service.TokenService
	authService         *service.AuthService
	passwordService     *service.PasswordService
	twoFactorService    *service.TwoFactorService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *gatehttp.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "growers-gate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// a bad pepper path fails here rather than on the first login
	cryptox.SetPepperPath(app.cfg.PepperFile)
	if err := cryptox.LoadPepper(); err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSessionState(); err != nil {
		_ = app.sqlStore.Close()
		return nil, err
	}

	secrets, err := InitSecrets(app.cfg, app.logger)
	if err != nil {
		app.closeStores()
		return nil, fmt.Errorf("failed to initialize JWT secrets: %w", err)
	}
	app.secrets = secrets

	app.initServices()
	if err := app.initHTTP(); err != nil {
		app.closeStores()
		return nil, err
	}

	return app, nil
}

// Handler exposes the routed HTTP handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("gate service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"session_state", app.cfg.SessionState,
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
			app.closeStores()
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
	app.logger.Info("shutting down gate service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.closeStores(); err != nil {
		return err
	}

	app.logger.Info("gate service stopped")
	return nil
}

func (app *Application) closeStores() error {
	if app.state != nil {
		if err := app.state.Close(); err != nil {
			app.logger.Error("error closing redis", "error", err)
		}
	}
	if err := app.sqlStore.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the SQLite database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(sqlite.FileDSN(app.cfg.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.sqlStore = db
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initSessionState moves the deny-list and failure counters to Redis when
// configured. SQLite keeps them otherwise.
func (app *Application) initSessionState() error {
	switch app.cfg.SessionState {
	case "", SessionStateSQLite:
		return nil
	case SessionStateRedis:
		if app.cfg.RedisAddr == "" {
			return errors.New("AUTH_SESSION_STATE=redis requires REDIS_ADDR")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		state, err := redis.Dial(ctx, app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect session state: %w", err)
		}
		app.state = state
		app.db = store.WithSessionState(app.sqlStore, state)
		app.logger.Info("session state kept in redis", "addr", app.cfg.RedisAddr, "db", app.cfg.RedisDB)
		return nil
	default:
		return fmt.Errorf("unknown AUTH_SESSION_STATE %q", app.cfg.SessionState)
	}
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Signer:           jwtx.NewSignerHS256(app.secrets),
		Verifier:         jwtx.NewVerifierHS256(app.secrets, app.cfg.Issuer),
		Store:            app.db,
		Issuer:           app.cfg.Issuer,
		SessionTTL:       app.cfg.SessionTTL,
		ChallengeTTL:     app.cfg.ChallengeTTL,
		ResetTTL:         app.cfg.ResetTTL,
		RefreshThreshold: app.cfg.RefreshThreshold,
	}

	totp := &service.TOTP{Issuer: app.cfg.TOTPIssuer}
	validator := &service.Validator{BlockedEmailDomains: app.cfg.BlockedEmailDomains}

	app.authService = &service.AuthService{
		Store:     app.db,
		Tokens:    app.tokenService,
		TOTP:      totp,
		Validator: validator,
	}
	app.passwordService = &service.PasswordService{
		Store:     app.db,
		Tokens:    app.tokenService,
		Validator: validator,
	}
	app.twoFactorService = &service.TwoFactorService{
		Store: app.db,
		TOTP:  totp,
	}
	app.bootstrapService = &service.BootstrapService{
		Store:     app.db,
		TOTP:      totp,
		Validator: validator,
		Token:     app.cfg.BootstrapToken,
	}
	if app.cfg.BootstrapToken == "" {
		app.logger.Info("bootstrap disabled, BOOTSTRAP_TOKEN not set")
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() error {
	proxies, err := httpx.ParseTrustedProxies(app.cfg.TrustedProxies)
	if err != nil {
		return fmt.Errorf("invalid TRUSTED_PROXIES: %w", err)
	}

	router := gatehttp.NewRouter(app.secrets, BuildVersion, app.db, app.logger)

	router.TokenService = app.tokenService
	router.AuthService = app.authService
	router.PasswordService = app.passwordService
	router.TwoFactorService = app.twoFactorService
	router.BootstrapService = app.bootstrapService
	router.CORSAllowedOrigins = app.cfg.CORSAllowedOrigins
	router.HideUnknownResetEmail = app.cfg.HideUnknownResetEmail
	router.TrustedProxies = proxies
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
