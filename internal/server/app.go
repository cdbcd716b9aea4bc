// Package server wires the remote store: configuration, Postgres, the blob
// store for book PDFs and the gRPC front end. It also handles graceful
// shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/blobs"
	"github.com/dmitrijs2005/notekeeper/internal/server/config"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/notekeeper/internal/server/services"

	gs "github.com/dmitrijs2005/notekeeper/internal/server/grpc"
)

// Seams for tests.
var (
	openDB         = repomanager.OpenDB
	newRepoManager = repomanager.NewPostgresRepositoryManager
	newS3Store     = func(ctx context.Context, c blobs.S3Config) (blobs.Store, error) { return blobs.NewS3Store(ctx, c) }
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	userService   *services.UserService
	recordService *services.RecordService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	bs, err := newBlobStore(ctx, c, logger)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	return &App{
		config:        c,
		logger:        logger,
		db:            db,
		userService:   services.NewUserService(db, rm, c),
		recordService: services.NewRecordService(db, rm, bs, logger),
	}, nil
}

// newBlobStore returns the S3 store, or an in-memory one when no bucket is set.
func newBlobStore(ctx context.Context, c *config.Config, l logging.Logger) (blobs.Store, error) {
	if c.S3Bucket == "" {
		l.Warn(ctx, "no S3 bucket configured, book files are kept in memory")
		return blobs.NewMemoryStore(), nil
	}
	return newS3Store(ctx, blobs.S3Config{
		User:     c.S3RootUser,
		Password: c.S3RootPassword,
		Bucket:   c.S3Bucket,
		Region:   c.S3Region,
		Endpoint: c.S3BaseEndpoint,
	})
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.userService, app.recordService, app.config.SecretKey)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "Stopped")
}
