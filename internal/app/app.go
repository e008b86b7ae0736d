// Package app wires configuration, logging, storage, authentication and both
// transports together, and handles graceful shutdown.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"

	"github.com/patric-chuzhbe/mesto/internal/auth"
	"github.com/patric-chuzhbe/mesto/internal/config"
	"github.com/patric-chuzhbe/mesto/internal/db/jsondb"
	"github.com/patric-chuzhbe/mesto/internal/db/memorystorage"
	"github.com/patric-chuzhbe/mesto/internal/db/postgresdb"
	"github.com/patric-chuzhbe/mesto/internal/db/storage"
	"github.com/patric-chuzhbe/mesto/internal/grpcserver"
	"github.com/patric-chuzhbe/mesto/internal/ipchecker"
	"github.com/patric-chuzhbe/mesto/internal/logger"
	"github.com/patric-chuzhbe/mesto/internal/models"
	"github.com/patric-chuzhbe/mesto/internal/passhash"
	"github.com/patric-chuzhbe/mesto/internal/router"
	"github.com/patric-chuzhbe/mesto/internal/service"
	"github.com/patric-chuzhbe/mesto/internal/tracing"
)

const (
	serviceName     = "mesto"
	shutdownTimeout = 10 * time.Second
)

// App holds everything needed to serve the Mesto API over HTTP and gRPC.
type App struct {
	cfg            *config.Config
	db             storage.Storage
	auth           *auth.Auth
	service        *service.Service
	httpHandler    http.Handler
	tracerShutdown func(context.Context) error
}

// New loads the configuration and builds every component. Nothing listens
// until Run is called.
func New(configOptions ...config.InitOption) (*App, error) {
	var err error
	app := &App{}

	app.cfg, err = config.New(configOptions...)
	if err != nil {
		return nil, err
	}

	err = logger.Init(app.cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	app.tracerShutdown, err = setupTracing(app.cfg)
	if err != nil {
		return nil, err
	}

	app.db, err = newStorage(context.Background(), app.cfg)
	if err != nil {
		return nil, err
	}

	signingKey, err := app.cfg.SigningKey()
	if err != nil {
		return nil, err
	}

	hasher, err := passhash.New(app.cfg.PasswordHashCost)
	if err != nil {
		return nil, err
	}

	app.auth = auth.New(signingKey, app.cfg.TokenTTL)
	app.service = service.New(app.db, hasher, app.auth)

	subnet, err := ipchecker.New(app.cfg.TrustedSubnet)
	if err != nil {
		return nil, err
	}

	app.httpHandler = router.New(
		app.service,
		app.auth,
		subnet,
		router.WithAllowedOrigins(app.cfg.AllowedOrigins),
		router.WithTracing(app.cfg.OTELEndpoint != ""),
	)

	return app, nil
}

func setupTracing(cfg *config.Config) (func(context.Context) error, error) {
	shutdown, enabled, err := tracing.Setup(context.Background(), cfg.OTELEndpoint, serviceName)
	if err != nil {
		return nil, err
	}
	if enabled {
		logger.Log.Infow("tracing enabled", "endpoint", cfg.OTELEndpoint)
	}

	return shutdown, nil
}

// Run serves HTTP and gRPC until SIGINT/SIGTERM arrives or a server fails,
// then shuts both down and closes the storage.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	grpcServer, listener, err := grpcserver.NewGRPCServer(
		a.cfg.GRPCAddr,
		grpcserver.NewMestoHandler(a.service),
		a.auth,
	)
	if err != nil {
		return fmt.Errorf("in internal/app/app.go/Run(): error while `grpcserver.NewGRPCServer()` calling: %w", err)
	}

	server := &http.Server{
		Addr:              a.cfg.RunAddr,
		Handler:           a.httpHandler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrCh := make(chan error, 2)
	go func() {
		logger.Log.Infow("http server running", "RunAddr", a.cfg.RunAddr, "storage", storageName(a.cfg))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- fmt.Errorf("http server error: %w", err)
		}
	}()
	go func() {
		logger.Log.Infow("grpc server running", "GRPCAddr", a.cfg.GRPCAddr)
		if err := grpcServer.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			serverErrCh <- fmt.Errorf("grpc server error: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Log.Infoln("Received shutdown signal. Closing the servers and the storage...")
	case runErr = <-serverErrCh:
		logger.Log.Errorw("server stopped unexpectedly", zap.Error(runErr))
	}

	return errors.Join(runErr, a.shutdown(server, grpcServer))
}

func (a *App) shutdown(server *http.Server, grpcServer *grpc.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	var errs []error

	if err := server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("http server shutdown error: %w", err))
	}

	stopped := make(chan struct{})
	go func() {
		grpcServer.GracefulStop()
		close(stopped)
	}()
	select {
	case <-stopped:
	case <-shutdownCtx.Done():
		grpcServer.Stop()
	}

	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("storage close error: %w", err))
	}

	if err := a.tracerShutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("tracer shutdown error: %w", err))
	}

	return errors.Join(errs...)
}

// Close flushes the logger.
func (a *App) Close() {
	if err := logger.Sync(); err != nil {
		fmt.Println("Logger sync error:", err)
	}
}

func storageName(cfg *config.Config) string {
	switch cfg.StorageType() {
	case models.StorageTypePostgresql:
		return "postgresql"
	case models.StorageTypeFile:
		return "file"
	default:
		return "memory"
	}
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	switch cfg.StorageType() {
	case models.StorageTypeUnknown:
		return nil, errors.New("unknown storage type")

	case models.StorageTypePostgresql:
		return postgresdb.New(
			ctx,
			cfg.DatabaseDSN,
			cfg.DBConnectionTimeout,
			cfg.MigrationsDir,
		)

	case models.StorageTypeFile:
		return jsondb.New(cfg.DBFileName)
	}

	return memorystorage.New()
}
