package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MianAhsan577/waapi-server/internal/domain/admin"
	"github.com/MianAhsan577/waapi-server/internal/domain/auth"
	"github.com/MianAhsan577/waapi-server/internal/domain/broadcast"
	"github.com/MianAhsan577/waapi-server/internal/domain/eventbus"
	"github.com/MianAhsan577/waapi-server/internal/domain/selection"
	"github.com/MianAhsan577/waapi-server/internal/domain/store"
	platformconfig "github.com/MianAhsan577/waapi-server/internal/platform/config"
	platformerrors "github.com/MianAhsan577/waapi-server/internal/platform/errors"
	platformlogging "github.com/MianAhsan577/waapi-server/internal/platform/logging"
	platformstorage "github.com/MianAhsan577/waapi-server/internal/platform/storage"
	httptransport "github.com/MianAhsan577/waapi-server/internal/transport/http"
	httpadminapi "github.com/MianAhsan577/waapi-server/internal/transport/http/adminapi"
	httpauthapi "github.com/MianAhsan577/waapi-server/internal/transport/http/authapi"
	httpselectionapi "github.com/MianAhsan577/waapi-server/internal/transport/http/selectionapi"
)

const shutdownTimeout = 5 * time.Second

// Run starts the whole service lifecycle: config, logging, store, domain
// services, HTTP transport, then blocks until the context is cancelled or a
// termination signal arrives, and shuts everything down in order.
func Run(ctx context.Context) error {
	loaded, err := platformconfig.NewLoader().WithDotEnv(true).Load()
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindConfig, "bootstrap.config", "failed to load configuration", err)
	}
	cfg := loaded.Config

	logger, err := platformlogging.New(platformlogging.Config{
		Level:    cfg.Log.Level,
		Dir:      cfg.Log.Dir,
		Filename: cfg.Log.File,
	})
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindBootstrap, "bootstrap.logging", "failed to initialise logging", err)
	}
	defer logger.Close()

	if loaded.Path != "" {
		logger.InfoTag("Boot", "configuration loaded from %s", loaded.Path)
	} else {
		logger.InfoTag("Boot", "no configuration file found, using defaults")
	}
	if cfg.Auth.DevLogin.Enabled {
		logger.WarnTag("Boot", "dev login is ENABLED for %s; do not run this in production", cfg.Auth.DevLogin.Email)
	}

	documentStore, err := buildStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := documentStore.Close(closeCtx); err != nil {
			logger.WarnTag("Boot", "store did not close cleanly: %v", err)
		}
	}()
	logger.InfoTag("Boot", "collection store ready (driver=%s, remote=%t)",
		cfg.Store.Driver, documentStore.IsRemoteBacked())

	// Startup trim: restarts inherit whatever the previous process left
	// behind, so re-apply the retention cap before serving.
	if err := documentStore.ApplyCap(ctx, cfg.Store.LogCap); err != nil {
		logger.WarnTag("Boot", "startup log trim failed: %v", err)
	}

	bus := eventbus.New()

	selectionSvc := selection.NewService(documentStore, bus, logger)

	authSvc, err := auth.NewService(auth.Options{
		Store:  documentStore,
		Tokens: auth.NewTokenIssuer(cfg.Auth.JWTSecret).WithTTL(cfg.Auth.TokenTTL),
		Hasher: auth.NewPasswordHasher(0),
		Logger: logger,
		DevLogin: auth.DevLogin{
			Enabled:  cfg.Auth.DevLogin.Enabled,
			Email:    cfg.Auth.DevLogin.Email,
			Password: cfg.Auth.DevLogin.Password,
		},
	})
	if err != nil {
		return err
	}

	adminSvc, err := admin.NewService(admin.Options{
		Store:  documentStore,
		Bus:    bus,
		Logger: logger,
		LogCap: cfg.Store.LogCap,
	})
	if err != nil {
		return err
	}

	broadcaster := broadcast.New(broadcast.Options{
		Lister:    adminSvc,
		Bus:       bus,
		Logger:    logger,
		Interval:  cfg.Broadcast.Interval,
		Heartbeat: cfg.Broadcast.Heartbeat,
	})
	broadcaster.Start()
	defer broadcaster.Stop()

	router, err := buildRouter(ctx, cfg, logger, selectionSvc, authSvc, adminSvc, broadcaster, documentStore)
	if err != nil {
		return err
	}

	rootCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	signalCtx, stop := signal.NotifyContext(rootCtx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(rootCtx)

	addr := fmt.Sprintf("%s:%d", cfg.Server.IP, cfg.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router.Engine,
	}

	group.Go(func() error {
		logger.InfoTag("HTTP", "listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return platformerrors.Wrap(platformerrors.KindTransport, "bootstrap.http", "http server failed", err)
		}
		return nil
	})

	group.Go(func() error {
		select {
		case <-signalCtx.Done():
			logger.InfoTag("Boot", "shutdown signal received")
		case <-groupCtx.Done():
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.WarnTag("HTTP", "server did not shut down cleanly: %v", err)
		}
		return nil
	})

	if err := group.Wait(); err != nil {
		return err
	}
	logger.InfoTag("Boot", "service stopped")
	return nil
}

// buildStore selects and constructs the collection store driver.
func buildStore(cfg *platformconfig.Config, logger *platformlogging.Logger) (store.Store, error) {
	storeCfg := store.Config{
		Driver: cfg.Store.Driver,
		Cap:    cfg.Store.LogCap,
		Logger: logger,
	}

	var deps store.Dependencies
	switch cfg.Store.Driver {
	case store.DriverSQLite:
		db, err := platformstorage.OpenDatabase(cfg.Store.SQLite.DSN)
		if err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "bootstrap.store", "failed to open sqlite database", err)
		}
		deps.SQLiteDB = db
	case store.DriverRedis:
		storeCfg.Redis = &store.RedisConfig{
			Addr:     cfg.Store.Redis.Addr,
			Username: cfg.Store.Redis.Username,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
			Prefix:   cfg.Store.Redis.Prefix,
		}
	}

	s, err := store.New(storeCfg, deps)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindBootstrap, "bootstrap.store", "failed to build collection store", err)
	}
	return s, nil
}

// buildRouter wires the transport services onto the gin engine.
func buildRouter(
	ctx context.Context,
	cfg *platformconfig.Config,
	logger *platformlogging.Logger,
	selectionSvc *selection.Service,
	authSvc *auth.Service,
	adminSvc *admin.Service,
	broadcaster *broadcast.Broadcaster,
	documentStore store.Store,
) (*httptransport.Router, error) {
	authMiddleware := httptransport.NewAuthMiddleware(authSvc)

	router, err := httptransport.Build(httptransport.Options{
		Config:         cfg,
		Logger:         logger,
		AuthMiddleware: authMiddleware,
		StaticRoot:     cfg.Web.StaticDir,
	})
	if err != nil {
		return nil, err
	}

	selectionAPI, err := httpselectionapi.NewService(selectionSvc, documentStore, logger)
	if err != nil {
		return nil, err
	}
	if err := selectionAPI.Register(ctx, router.API); err != nil {
		return nil, err
	}

	authAPI, err := httpauthapi.NewService(authSvc, logger)
	if err != nil {
		return nil, err
	}
	if err := authAPI.Register(ctx, router.Auth, authMiddleware); err != nil {
		return nil, err
	}

	adminAPI, err := httpadminapi.NewService(adminSvc, broadcaster, logger)
	if err != nil {
		return nil, err
	}
	if err := adminAPI.Register(ctx, router.Admin); err != nil {
		return nil, err
	}

	return router, nil
}
