// Package app wires configuration into a running set of components: the
// catalog, question store, layering engine, event bus and composition
// service.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/matthewbaird/signatures/internal/activity"
	"github.com/matthewbaird/signatures/internal/catalog"
	"github.com/matthewbaird/signatures/internal/compose"
	"github.com/matthewbaird/signatures/internal/config"
	"github.com/matthewbaird/signatures/internal/eventbus"
	"github.com/matthewbaird/signatures/internal/layering"
	"github.com/matthewbaird/signatures/internal/question"
	"github.com/matthewbaird/signatures/internal/signals"
	"github.com/matthewbaird/signatures/internal/types"
)

// App holds the wired components.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Catalog  *catalog.Catalog
	Store    question.Store
	Engine   *layering.Engine
	Bus      *eventbus.Bus
	Stats    *eventbus.StatsConsumer
	Activity *activity.MemoryStore
	Service  *compose.Service

	closers []io.Closer
	started bool
}

// New builds an App from cfg. The event bus is created but not started; see
// Start.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	cat, err := LoadCatalog(cfg.Catalog.Path)
	if err != nil {
		return nil, err
	}
	a.Catalog = cat
	logger.Info("catalog loaded",
		zap.String("version", cat.Version()),
		zap.Int("conditions", len(cat.ConditionCodes())),
		zap.Int("drivers", len(cat.DriverCodes())),
		zap.Int("rules", len(cat.Rules())))

	bank, err := LoadBank(cfg.Questions.BankPath)
	if err != nil {
		return nil, err
	}
	for _, issue := range question.Validate(bank, cat) {
		logger.Warn("question bank issue", zap.String("issue", issue))
	}

	if err := a.openStore(ctx, bank); err != nil {
		return nil, err
	}

	policy := signals.PolicyPermissive
	if cfg.Engine.StrictFlags {
		policy = signals.PolicyStrict
	}
	a.Engine = layering.NewEngine(cat, layering.EngineConfig{
		Options: layering.Options{
			RequireQuestionRelevance: cfg.Engine.RequireQuestionRelevance,
			FlagPolicy:               policy,
		},
		StrictContext: cfg.Engine.StrictContext,
		Logger:        logger.Named("layering"),
	})

	a.Bus = eventbus.New(cfg.Server.EventBuffer, logger)
	a.Stats = eventbus.NewStatsConsumer()
	a.Activity = activity.NewMemoryStore(activity.DefaultCapacity)
	a.Bus.Subscribe("stats", a.Stats)
	a.Bus.Subscribe("activity", activity.NewIndexer(a.Activity))
	a.Bus.Subscribe("log", eventbus.NewLogConsumer(logger.Named("events")))

	a.Service = compose.NewService(a.Engine, a.Store,
		compose.WithPublisher(a.Bus),
		compose.WithLogger(logger.Named("compose")))
	return a, nil
}

func (a *App) openStore(ctx context.Context, bank []types.Question) error {
	switch a.Config.Questions.Driver {
	case config.DriverSQLite:
		s, err := question.OpenSQLStore(ctx, a.Config.Questions.DSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, s)
		if err := s.Seed(ctx, bank); err != nil {
			return errors.Join(err, a.Close())
		}
		a.Store = s
	default:
		s, err := question.NewMemoryStore(bank...)
		if err != nil {
			return err
		}
		a.Store = s
	}
	a.Logger.Info("question store ready",
		zap.String("driver", a.Config.Questions.Driver),
		zap.Int("questions", len(bank)))
	return nil
}

// Start runs the event bus consumer until ctx is cancelled.
func (a *App) Start(ctx context.Context) {
	if a.started {
		return
	}
	a.started = true
	a.Bus.Start(ctx)
}

// Close stops the event bus if it was started and releases the store.
func (a *App) Close() error {
	if a.started {
		a.Bus.Stop()
		a.started = false
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// LoadCatalog reads the catalog at path, or the embedded one when path is
// empty.
func LoadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	c, err := catalog.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadBank reads the question bank at path, or the embedded one when path
// is empty.
func LoadBank(path string) ([]types.Question, error) {
	if path == "" {
		return question.DefaultBank()
	}
	qs, err := question.LoadBankFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading question bank %s: %w", path, err)
	}
	return qs, nil
}
