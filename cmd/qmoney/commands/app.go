package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/qmoney/internal/api/handlers"
	"github.com/wonny/qmoney/internal/history"
	"github.com/wonny/qmoney/internal/portfolio"
	"github.com/wonny/qmoney/internal/quotes"
	"github.com/wonny/qmoney/internal/reports"
	"github.com/wonny/qmoney/pkg/config"
	"github.com/wonny/qmoney/pkg/database"
	"github.com/wonny/qmoney/pkg/httputil"
	"github.com/wonny/qmoney/pkg/logger"
	"github.com/wonny/qmoney/pkg/redis"
)

// app holds the wired dependencies shared by the commands
type app struct {
	cfg    *config.Config
	log    *logger.Logger
	quotes quotes.Service
	engine *portfolio.Engine

	// set by openStores
	db        *database.DB
	redis     *redis.Client
	history   *history.Repository
	store     *reports.Store
	publisher *reports.Publisher
}

type appOptions struct {
	provider     string        // "" = QUOTE_PROVIDER
	batchTimeout time.Duration // 0 = ENGINE_BATCH_TIMEOUT
	persistence  bool          // connect postgres/redis when configured
}

// newApp loads config and wires the engine
func newApp(ctx context.Context, opts appOptions) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	if opts.batchTimeout > 0 {
		cfg.Engine.BatchTimeout = opts.batchTimeout
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Quote provider
	httpClient := httputil.New(cfg, log)
	svc, err := quotes.NewService(opts.provider, cfg.Quote, httpClient, log)
	if err != nil {
		return nil, err
	}

	// 4. Engine
	engine := portfolio.NewEngine(svc, portfolio.EngineConfig{
		BatchTimeout:  cfg.Engine.BatchTimeout,
		ShutdownGrace: cfg.Engine.ShutdownGrace,
	}, log)

	a := &app{cfg: cfg, log: log, quotes: svc, engine: engine}

	if opts.persistence {
		if err := a.openStores(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}

	return a, nil
}

// openStores connects run history (postgres) and the snapshot store (redis).
// Each is skipped when not configured.
func (a *app) openStores(ctx context.Context) error {
	if a.cfg.Database.Enabled() {
		db, err := database.New(ctx, a.cfg)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		a.db = db

		if err := db.Migrate(ctx, history.Schema...); err != nil {
			return fmt.Errorf("migrate run history: %w", err)
		}
		a.history = history.NewRepository(db.Pool)
		a.log.Info("Connected to database")
	}

	rc, err := redis.New(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	a.redis = rc
	a.store = reports.NewStore(rc)

	var recorder reports.RunRecorder
	if a.history != nil {
		recorder = a.history
	}
	a.publisher = reports.NewPublisher(a.store, recorder, a.log)

	return nil
}

// runHistory returns the history repository as an interface, nil when not configured
func (a *app) runHistory() handlers.RunHistory {
	if a.history == nil {
		return nil
	}
	return a.history
}

// Close releases connections
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
