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

	"github.com/KimDog-Studios/linkgate/internal/linkgate/audit"
	httpapi "github.com/KimDog-Studios/linkgate/internal/linkgate/http"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/service"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store/drivers/memory"
	redisstore "github.com/KimDog-Studios/linkgate/internal/linkgate/store/drivers/redis"
	"github.com/KimDog-Studios/linkgate/internal/linkgate/store/drivers/sqlite"
	"github.com/KimDog-Studios/linkgate/pkg/cryptox"
	"github.com/KimDog-Studios/linkgate/pkg/netguard"
	"github.com/KimDog-Studios/linkgate/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// devTokenSecret keeps local development working without configuration.
	// Config.Validate refuses it outside dev.
	devTokenSecret = "linkgate-dev-only-binding-secret"
)

// Application wires the link service together: token store, audit trail,
// services, HTTP server and the housekeeping worker.
type Application struct {
	cfg    Config
	logger *slog.Logger

	store      store.Store
	auditStore audit.Store

	linkService         *service.LinkService
	proxyService        *service.ProxyService
	giftService         *service.GiftService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "linkgate",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initStores(); err != nil {
		return nil, err
	}
	app.initServices()
	app.initHTTP()

	return app, nil
}

func (app *Application) initStores() error {
	if app.cfg.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		st, err := redisstore.NewStore(ctx, app.cfg.RedisAddr, app.cfg.RedisPassword, app.cfg.RedisDB)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.store = st
		app.logger.Info("using redis token store", "addr", app.cfg.RedisAddr)
	} else {
		app.store = memory.NewStore()
		app.logger.Info("using in-memory token store")
	}

	if app.cfg.AuditDatabaseFile != "" {
		st, err := sqlite.NewStore(app.cfg.AuditDatabaseFile)
		if err != nil {
			return fmt.Errorf("failed to open audit database: %w", err)
		}
		if err := st.ApplyMigrations(); err != nil {
			return fmt.Errorf("failed to migrate audit database: %w", err)
		}
		app.auditStore = st
	} else {
		app.logger.Warn("audit trail disabled")
	}

	return nil
}

func (app *Application) initServices() {
	tokenSecret := app.cfg.TokenSecret
	if tokenSecret == "" {
		app.logger.Warn("DOWNLOAD_TOKEN_HMAC_SECRET not set, using dev fallback")
		tokenSecret = devTokenSecret
	}
	giftSecret := app.cfg.GiftSecret
	if giftSecret == "" {
		giftSecret = tokenSecret
	}

	var recorder *audit.Recorder
	if app.auditStore != nil {
		recorder = audit.NewRecorder(app.auditStore, app.logger)
	}

	allowlist := netguard.NewAllowlist(app.cfg.AllowedHosts...)

	app.linkService = &service.LinkService{
		Store:     app.store,
		Binder:    cryptox.NewBinder([]byte(tokenSecret)),
		Allowlist: allowlist,
		Audit:     recorder,
	}
	app.proxyService = &service.ProxyService{
		Guard:    netguard.NewGuard(),
		MainHost: app.cfg.MainHost,
		Audit:    recorder,
	}
	app.giftService = &service.GiftService{
		Store:  app.store,
		Secret: []byte(giftSecret),
		Audit:  recorder,
	}
	app.housekeepingService = service.NewHousekeepingService(
		app.store, app.auditStore, app.logger, app.cfg.HousekeepingInterval)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(BuildVersion, app.cfg.SecureCookies, app.store, app.auditStore, app.logger)
	app.router.LinkService = app.linkService
	app.router.ProxyService = app.proxyService
	app.router.GiftService = app.giftService
	app.router.GiftMintKeyHash = app.cfg.MintKeyHash
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           app.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("linkgate starting", "port", app.cfg.Port, "version", BuildVersion)

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
	app.logger.Info("shutting down linkgate...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if app.auditStore != nil {
		if err := app.auditStore.Close(); err != nil {
			app.logger.Error("error closing audit store", "error", err)
		}
	}
	if err := app.store.Close(); err != nil {
		app.logger.Error("error closing token store", "error", err)
	}

	app.logger.Info("linkgate stopped")
	return nil
}
