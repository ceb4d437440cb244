package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/aussiebroadwan/stockroom/internal/cli"
	"github.com/aussiebroadwan/stockroom/internal/metrics"
	"github.com/aussiebroadwan/stockroom/internal/notify"
	"github.com/aussiebroadwan/stockroom/internal/session"
	"github.com/aussiebroadwan/stockroom/internal/store"
	"github.com/aussiebroadwan/stockroom/internal/store/drivers/redis"
	"github.com/aussiebroadwan/stockroom/internal/store/drivers/sqlite"
	"github.com/aussiebroadwan/stockroom/pkg/cryptox"
	"github.com/aussiebroadwan/stockroom/pkg/httpx"
	"github.com/aussiebroadwan/stockroom/pkg/invsdk"
	"github.com/aussiebroadwan/stockroom/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the stockroom client with all its dependencies
type Application struct {
	cfg     Config
	logger  *slog.Logger
	logFile io.Closer

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer

	// Core dependencies
	metrics *metrics.Metrics
	store   store.Store
	client  *invsdk.SDKClient

	// Session and view
	manager  *session.Manager
	queue    *notify.Queue
	notifier *notify.Notifier
	router   *cli.Router
	cli      *cli.CLI

	// Optional metrics endpoint, shell only
	metricsServer *http.Server
}

// Option adjusts an Application before it is wired.
type Option func(*Application)

// WithIO replaces the process standard streams.
func WithIO(stdin io.Reader, stdout, stderr io.Writer) Option {
	return func(app *Application) {
		app.stdin, app.stdout, app.stderr = stdin, stdout, stderr
	}
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config, opts ...Option) (*Application, error) {
	app := &Application{
		cfg:    cfg,
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(app)
	}

	if err := app.initLogger(); err != nil {
		return nil, err
	}
	app.metrics = metrics.New()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := app.initStore(ctx); err != nil {
		app.closeLog()
		return nil, err
	}

	app.initClient()

	if err := app.initSession(); err != nil {
		_ = app.store.Close()
		app.closeLog()
		return nil, err
	}

	app.initCLI()

	return app, nil
}

// Run executes one command line and returns the process exit status. The
// shell keeps its own interrupt handling; everything else is cancelled by
// SIGINT or SIGTERM.
func (app *Application) Run(ctx context.Context, args []string) int {
	if len(args) > 0 && args[0] == "shell" {
		app.startMetricsServer()
	} else {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	err := app.cli.Run(ctx, args)
	if err != nil {
		app.logger.Debug("command failed", "args", cli.RedactArgs(args), "error", err)
	}
	return cli.ExitCode(err)
}

// Shutdown stops background work and releases the store
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if app.metricsServer != nil {
		if err := app.metricsServer.Shutdown(ctx); err != nil {
			app.logger.Error("metrics server shutdown failed", "error", err)
			_ = app.metricsServer.Close()
		}
	}

	app.manager.Stop()
	app.queue.Close()

	err := app.store.Close()
	if err != nil {
		app.logger.Error("error closing session store", "error", err)
	}

	app.closeLog()
	return err
}

// initLogger sends logs to the configured file, stdout stays for output
func (app *Application) initLogger() error {
	out := app.stderr

	if path := app.cfg.LogFile; path != "" && path != "-" {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		app.logFile = f
	}

	app.logger = slogx.New(slogx.Config{
		Service: "stockroom",
		Version: BuildVersion,
		Env:     app.cfg.Env,
		Level:   app.cfg.LogLevel,
		Format:  app.cfg.LogFormat,
		Output:  out,
	})
	return nil
}

func (app *Application) closeLog() {
	if app.logFile != nil {
		_ = app.logFile.Close()
		app.logFile = nil
	}
}

// initStore opens the configured session store and seals it when a master
// key is set
func (app *Application) initStore(ctx context.Context) error {
	var st store.Store

	switch app.cfg.Store {
	case StoreMemory:
		st = store.NewMemory()

	case StoreSQLite:
		db, err := app.openSQLite(ctx)
		if err != nil {
			return err
		}
		st = db

	case StoreRedis:
		rdb, err := redis.NewStore(ctx, redis.Config{
			Addr:     app.cfg.RedisAddr,
			Password: app.cfg.RedisPassword,
			DB:       app.cfg.RedisDB,
			Session:  app.cfg.SessionName,
			TTL:      app.cfg.SessionTTL,
		})
		if err != nil {
			return fmt.Errorf("failed to connect session store: %w", err)
		}
		st = rdb

	default:
		return fmt.Errorf("%w: unknown store %q", ErrConfig, app.cfg.Store)
	}

	if app.cfg.MasterKey != "" {
		sealer, err := cryptox.NewSealer(app.cfg.MasterKey, cryptox.DeriveSalt(app.cfg.SessionName), cryptox.KDFParams{})
		if err != nil {
			_ = st.Close()
			return fmt.Errorf("failed to initialize token encryption: %w", err)
		}
		st = store.NewSealed(st, sealer)
	}

	app.store = st
	app.logger.Debug("session store ready",
		"store", app.cfg.Store,
		"session", app.cfg.SessionName,
		"sealed", app.cfg.MasterKey != "",
	)
	return nil
}

// openSQLite opens the database, applies migrations and drops sessions idle
// for longer than the session TTL
func (app *Application) openSQLite(ctx context.Context) (*sqlite.Store, error) {
	if err := os.MkdirAll(filepath.Dir(app.cfg.DatabaseFile), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn, app.cfg.SessionName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	if v, err := db.SchemaVersion(); err == nil {
		app.logger.Debug("session schema ready", "version", v)
	}

	if app.cfg.SessionTTL > 0 {
		n, err := db.Prune(ctx, time.Now().Add(-app.cfg.SessionTTL))
		if err != nil {
			app.logger.Warn("failed to prune idle sessions", "error", err)
		} else if n > 0 {
			app.logger.Info("pruned idle sessions", "values", n)
		}
	}

	return db, nil
}

// initClient builds the backend client: request ids, a client side rate
// limit and request logging around the default transport
func (app *Application) initClient() {
	app.client = invsdk.NewSDKClient(app.cfg.APIURL)
	app.client.HTTPClient = &http.Client{
		Timeout: app.cfg.HTTPTimeout,
		Transport: httpx.Chain(
			&slogx.Transport{Base: http.DefaultTransport, Logger: app.logger},
			httpx.RequestID(),
			httpx.RateLimit(app.cfg.RateLimitConfig(), httpx.HostKeyExtractor),
		),
	}
}

func (app *Application) initSession() error {
	app.router = cli.NewRouter()

	manager, err := session.NewManager(
		session.Config{
			RefreshInterval: app.cfg.RefreshInterval,
			StoreTimeout:    app.cfg.StoreTimeout,
		},
		app.client,
		app.store,
		session.WithLogger(app.logger),
		session.WithNavigator(app.router),
		session.WithMetrics(app.metrics),
	)
	if err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	app.manager = manager

	app.queue = notify.NewQueue(
		notify.WithTTL(app.cfg.NotifyTTL),
		notify.WithMetrics(app.metrics),
	)
	app.notifier = notify.NewNotifier(app.queue, app.logger)
	return nil
}

func (app *Application) initCLI() {
	app.cli = cli.New(cli.Deps{
		Manager:     app.manager,
		API:         app.client.Session(app.manager),
		Queue:       app.queue,
		Notifier:    app.notifier,
		Router:      app.router,
		Logger:      app.logger,
		Stdin:       app.stdin,
		Stdout:      app.stdout,
		Stderr:      app.stderr,
		HistoryFile: app.cfg.HistoryFile,
		Version:     BuildVersion,
	})
}

// startMetricsServer serves /metrics while the shell runs
func (app *Application) startMetricsServer() {
	if app.cfg.MetricsAddr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", app.metrics.Handler())

	app.metricsServer = &http.Server{
		Addr:              app.cfg.MetricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		app.logger.Info("metrics server starting", "addr", app.cfg.MetricsAddr)
		if err := app.metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error("metrics server failed", "error", err)
		}
	}()
}
