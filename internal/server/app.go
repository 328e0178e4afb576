// Package server wires configuration, storage, services and transports into
// the runnable application and handles graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/gophsocial/internal/logging"
	"github.com/dmitrijs2005/gophsocial/internal/server/config"
	gs "github.com/dmitrijs2005/gophsocial/internal/server/grpc"
	"github.com/dmitrijs2005/gophsocial/internal/server/media"
	"github.com/dmitrijs2005/gophsocial/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/gophsocial/internal/server/rest"
	"github.com/dmitrijs2005/gophsocial/internal/server/services"
	"github.com/dmitrijs2005/gophsocial/internal/server/shared/db"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	httpServer  *http.Server
	health      *gs.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config error: %w", err)
	}

	logger, err := logging.New(c.LogBackend, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	conn, err := db.Open(ctx, db.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	storage, err := media.NewStorage(ctx, c)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("media init error: %w", err)
	}
	mediaService := media.NewService(storage, c.MediaURLPrefix)

	rm := repomanager.NewPostgresRepositoryManager()

	api := rest.NewServer(c, logger.With("module", "rest"), rest.Services{
		Users:         services.NewUserService(conn, rm, mediaService, logger, c),
		Posts:         services.NewPostService(conn, rm, mediaService, logger),
		Comments:      services.NewCommentService(conn, rm),
		Notifications: services.NewNotificationService(conn, rm),
		Media:         mediaService.Handler(),
	})

	return &App{
		config:      c,
		logger:      logger,
		db:          conn,
		repomanager: rm,
		httpServer: &http.Server{
			Addr:              c.EndpointAddrHTTP,
			Handler:           api.Handler(),
			ReadHeaderTimeout: c.RequestTimeout,
		},
		health: gs.NewHealthServer(c.EndpointAddrGRPC, conn, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		sctx, cancel := context.WithTimeout(context.Background(), app.config.ShutdownTimeout)
		defer cancel()
		if err := app.httpServer.Shutdown(sctx); err != nil {
			app.logger.Error(ctx, "http shutdown error", "error", err)
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run applies migrations and serves HTTP and gRPC until ctx is cancelled or
// a signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...", "environment", app.config.Environment)

	if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
		return fmt.Errorf("migrations error: %w", err)
	}

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
	app.logger.Info(context.Background(), "App stopped")
	return nil
}
