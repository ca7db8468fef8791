// Package server initializes and runs the auth API: it picks the storage
// backends, wires the token registry and session service, and runs the
// HTTP and gRPC boundaries until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/lanzath/authapi/internal/logging"
	"github.com/lanzath/authapi/internal/server/config"
	"github.com/lanzath/authapi/internal/server/httpserver"
	"github.com/lanzath/authapi/internal/server/metrics"
	"github.com/lanzath/authapi/internal/server/registry"
	"github.com/lanzath/authapi/internal/server/repositories/accesstokens"
	"github.com/lanzath/authapi/internal/server/repositories/repomanager"
	"github.com/lanzath/authapi/internal/server/services"
	"github.com/redis/go-redis/v9"

	gs "github.com/lanzath/authapi/internal/server/grpc"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	db       *sql.DB
	rdb      *redis.Client
	metrics  *metrics.Metrics
	sessions *services.SessionService
}

// openDB is a seam for tests.
var openDB = func(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func NewApp(c *config.Config) (*App, error) {
	return newApp(context.Background(), c, logging.NewJSONLogger(os.Stdout, c.LogLevel))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	app := &App{config: c, logger: logger, metrics: metrics.New()}

	var rm repomanager.RepositoryManager
	switch c.Storage {
	case config.StorageMemory:
		rm = repomanager.NewMemoryRepositoryManager()
	case config.StoragePostgres:
		db, err := openDB(ctx, c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		rm = repomanager.NewPostgresRepositoryManager()
		if err := rm.RunMigrations(ctx, db); err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("migrations error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown storage %q", c.Storage)
	}

	var tokens accesstokens.Repository
	switch c.TokenBackend() {
	case config.StorageRedis:
		app.rdb = redis.NewClient(&redis.Options{Addr: c.RedisAddr})
		if err := app.rdb.Ping(ctx).Err(); err != nil {
			app.close(ctx)
			return nil, fmt.Errorf("redis init error: %w", err)
		}
		tokens = accesstokens.NewRedisRepository(app.rdb)
	case config.StorageMemory, config.StoragePostgres:
		tokens = rm.AccessTokens(app.db)
	default:
		app.close(ctx)
		return nil, fmt.Errorf("unknown token store %q", c.TokenStore)
	}

	reg := registry.New(tokens,
		registry.WithDefaultTTL(c.AccessTokenValidityDuration),
		registry.WithTimeout(c.StoreTimeout),
		registry.WithLogger(logger),
		registry.WithObserver(app.metrics),
	)
	creds := services.NewCredentialStore(app.db, rm, c.BcryptCost, c.StoreTimeout)
	app.sessions = services.NewSessionService(creds, reg, []byte(c.SecretKey), logger, app.metrics)

	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	gin.SetMode(app.config.GinMode)
	s := httpserver.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, app.sessions, app.metrics)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.sessions)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves both boundaries until ctx is cancelled or a termination signal
// arrives, then releases storage connections.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

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

	app.close(ctx)
	app.logger.Info(ctx, "App stopped")
}

func (app *App) close(ctx context.Context) {
	var errs []error
	if app.rdb != nil {
		errs = append(errs, app.rdb.Close())
	}
	if app.db != nil {
		errs = append(errs, app.db.Close())
	}
	if err := errors.Join(errs...); err != nil {
		app.logger.Error(ctx, "close storage", "error", err)
	}
}
