// Package server wires the doccoon API server: database and migrations, the
// credential vault, the services and the HTTP server.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/doccoon/internal/cryptox"
	"github.com/dmitrijs2005/doccoon/internal/logging"
	"github.com/dmitrijs2005/doccoon/internal/server/archive"
	"github.com/dmitrijs2005/doccoon/internal/server/config"
	"github.com/dmitrijs2005/doccoon/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/doccoon/internal/server/rest"
	"github.com/dmitrijs2005/doccoon/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.Server
}

// OpenDB connects to PostgreSQL through the pgx driver and checks the
// connection.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	return db, nil
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := OpenDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	m := repomanager.NewPostgresRepositoryManager()
	if err := m.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	vault, err := cryptox.NewVault([]byte(c.SecretKey), c.KDFParams())
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("vault init error: %w", err)
	}

	var snapshots services.SnapshotArchive
	if c.ArchiveEnabled() {
		a, err := archive.NewS3Archive(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("archive init error: %w", err)
		}
		snapshots = a
	}

	ns := services.NewNotificationService(db, m, logger)
	cs := services.NewCredentialService(db, m, vault, logger)
	svc := rest.Services{
		Users:         services.NewUserService(db, m, c),
		Books:         services.NewBookService(db, m, ns, logger),
		Sharing:       services.NewSharingService(db, m, ns, snapshots, logger),
		Credentials:   cs,
		AI:            services.NewAIService(cs, ns, c.GeminiAPIKey, logger),
		Notifications: ns,
		Settings:      services.NewSettingsService(db, m, logger),
	}

	router := rest.NewRouter(svc, rest.DefaultRateLimits(), logger)
	server := rest.NewServer(c.EndpointAddrHTTP, router, logger)

	return &App{config: c, logger: logger, db: db, server: server}, nil
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
	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until SIGINT, SIGTERM or SIGQUIT, then closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
