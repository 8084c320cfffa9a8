// Package server assembles the auth service: configuration, logging,
// tracing, the database and its migrations, and the gRPC and HTTP
// endpoints. It handles graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/noteauth/internal/logging"
	"github.com/dmitrijs2005/noteauth/internal/server/config"
	"github.com/dmitrijs2005/noteauth/internal/server/httpapi"
	"github.com/dmitrijs2005/noteauth/internal/server/profiles"
	"github.com/dmitrijs2005/noteauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/noteauth/internal/server/services"
	"github.com/dmitrijs2005/noteauth/internal/telemetry"

	gs "github.com/dmitrijs2005/noteauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	shutdown    func(context.Context) error
}

// NewApp validates c, connects to the database, applies migrations and
// builds the auth service. Nothing is served yet.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewJSON(os.Stdout, c.LogLevel).With("service", c.ServiceName)

	shutdown, err := telemetry.Setup(ctx, c.ServiceName, c.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("telemetry init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		_ = shutdown(ctx)
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		_ = shutdown(ctx)
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	pc := profiles.NewHTTPClient(c.UserServiceURL, c.UserServiceTimeout)
	as := services.NewAuthService(db, rm, c, pc, logger)

	return &App{config: c, logger: logger, db: db, authService: as, shutdown: shutdown}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

type runner interface {
	Run(ctx context.Context) error
}

// start runs r until ctx is done. A failing server takes the others down.
func (app *App) start(ctx context.Context, cancelFunc context.CancelFunc, name string, r runner) {
	if err := r.Run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves gRPC and HTTP until a signal arrives or ctx is cancelled, then
// releases the database and flushes traces.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "grpc", gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService))
	}()
	go func() {
		defer wg.Done()
		app.start(ctx, cancelFunc, "http", httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.authService))
	}()

	wg.Wait()

	closeCtx := context.WithoutCancel(ctx)
	if err := app.db.Close(); err != nil {
		app.logger.Error(closeCtx, "close database", "error", err)
	}
	if err := app.shutdown(closeCtx); err != nil {
		app.logger.Error(closeCtx, "telemetry shutdown", "error", err)
	}

	app.logger.Info(closeCtx, "App stopped")
}
