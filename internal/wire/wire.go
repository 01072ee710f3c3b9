// Package wire provides dependency injection for grievd.
// It builds the component graph once, lazily, from the configured options.
package wire

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/example/grievd/internal/adapters/auth"
	"github.com/example/grievd/internal/adapters/httpapi"
	"github.com/example/grievd/internal/adapters/notify"
	"github.com/example/grievd/internal/adapters/sqlite"
	"github.com/example/grievd/internal/app"
	"github.com/example/grievd/internal/config"
	"github.com/example/grievd/internal/db"
	"github.com/example/grievd/internal/ports/secondary"
)

// Options locate the configuration and database. Empty fields fall back to
// the config file's values and then to the defaults under ~/.grievd.
type Options struct {
	ConfigPath string
	DBPath     string
	LogOutput  io.Writer
}

// Components is the assembled application.
type Components struct {
	Loader     *config.Loader
	Routing    *config.Routing
	Logger     *slog.Logger
	DB         *sql.DB
	Store      *sqlite.EventStore
	Stats      *sqlite.StatsRepository
	Gateway    *app.CommandGatewayImpl
	Queries    *app.QueryServiceImpl
	Monitor    *app.EscalationMonitorImpl
	Reconciler *app.ReconcileServiceImpl

	// Auth is nil when no JWT secret is configured.
	Auth *auth.JWTAuthenticator

	closers []func() error
}

// Build assembles every component described by opts.
func Build(opts Options) (*Components, error) {
	loader, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	cfg := loader.Config()

	out := opts.LogOutput
	if out == nil {
		out = os.Stderr
	}
	logger := config.NewLogger(out, cfg.Server)
	loader.SetLogger(logger)

	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = cfg.Database.Path
	}
	if dbPath == "" {
		if dbPath, err = db.DefaultPath(); err != nil {
			return nil, err
		}
	}
	conn, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	c := &Components{
		Loader:  loader,
		Routing: config.NewRouting(loader),
		Logger:  logger,
		DB:      conn,
		closers: []func() error{conn.Close},
	}

	clock := secondary.SystemClock{}
	c.Store = sqlite.NewEventStore(conn, clock)
	c.Stats = sqlite.NewStatsRepository(conn, clock)

	notifier := c.buildNotifier(cfg.Notify)

	c.Gateway = app.NewCommandGateway(app.GatewayDeps{
		Store:       c.Store,
		Routing:     c.Routing,
		Notifier:    notifier,
		Clock:       clock,
		Logger:      logger,
		LockTimeout: cfg.Engine.LockTimeout,
	})
	c.Queries = app.NewQueryService(c.Store, c.Stats, c.Routing, clock)
	c.Monitor = app.NewEscalationMonitor(c.Store, c.Gateway, clock, logger, app.MonitorOptions{
		Workers: cfg.Engine.MonitorWorkers,
		Budget:  cfg.Engine.SweepBudget,
	})
	c.Reconciler = app.NewReconcileService(c.Store, c.Stats, logger)

	if secret := jwtSecret(cfg.Auth); secret != "" {
		c.Auth = auth.NewJWTAuthenticator(secret, cfg.Auth.Issuer)
	}

	loader.OnChange(func(next *config.Config) {
		logger.Info("routing table updated",
			"categories", len(next.Routing.Categories),
			"departments", len(next.Routing.Departments),
		)
	})

	return c, nil
}

// buildNotifier picks the configured sink and puts it behind a queue.
func (c *Components) buildNotifier(n config.NotifyConf) secondary.Notifier {
	var sink secondary.Notifier
	switch n.Sink {
	case config.SinkKafka:
		k := notify.NewKafkaNotifier(n.Kafka.Brokers, n.Kafka.Topic)
		c.closers = append(c.closers, k.Close)
		sink = k
	default:
		sink = notify.NewLogNotifier(c.Logger)
	}

	async := notify.NewAsyncNotifier(sink, n.Workers, n.QueueDepth, c.Logger)
	// Closers run in reverse, so the queue drains before the sink closes.
	c.closers = append(c.closers, func() error {
		async.Close()
		return nil
	})
	return async
}

// HTTPHandler returns the API handler. It fails when no authenticator is configured.
func (c *Components) HTTPHandler() (http.Handler, error) {
	if c.Auth == nil {
		return nil, errors.New("auth.jwt_secret (or GRIEVD_JWT_SECRET) is required to serve the API")
	}
	return httpapi.New(c.Gateway, c.Queries, c.Auth, c.Logger), nil
}

// Close flushes pending notifications and closes the database.
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func loadConfig(path string) (*config.Loader, error) {
	if path != "" {
		return config.NewLoader(path)
	}
	def, err := config.DefaultPath()
	if err == nil {
		if _, statErr := os.Stat(def); statErr == nil {
			return config.NewLoader(def)
		}
	}
	return config.NewStaticLoader(config.Default()), nil
}

func jwtSecret(a config.AuthConf) string {
	if s := os.Getenv("GRIEVD_JWT_SECRET"); s != "" {
		return s
	}
	return a.JWTSecret
}

var (
	options    Options
	components *Components
	initErr    error
	once       sync.Once
)

// Configure sets the options used by the singleton. It must be called
// before the first accessor; later calls have no effect.
func Configure(opts Options) {
	options = opts
}

// Get returns the singleton components, building them on first use.
func Get() (*Components, error) {
	once.Do(func() {
		components, initErr = Build(options)
		if initErr != nil {
			initErr = fmt.Errorf("failed to initialize grievd: %w", initErr)
		}
	})
	return components, initErr
}

// Shutdown closes the singleton if it was built.
func Shutdown() error {
	if components == nil {
		return nil
	}
	return components.Close()
}
