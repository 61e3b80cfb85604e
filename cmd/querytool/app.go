package main

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/config"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/httpapi"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/query/infrastructure/profile"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/query/infrastructure/sqlstore"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
	pgsession "github.com/krew-solutions/ascetic-query-go/asceticquery/session/pg"
	sqlsession "github.com/krew-solutions/ascetic-query-go/asceticquery/session/sql"
	spec "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/infrastructure"
)

// app is the wiring shared by the query and serve commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	handler *httpapi.Handler
	closers []func()
}

func newApp(ctx context.Context, global *globalFlags) (*app, error) {
	cfg, err := loadConfig(ctx, global)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create logger")
	}
	zap.ReplaceGlobals(logger)

	a := &app{cfg: cfg, logger: logger}
	a.closers = append(a.closers, func() { _ = logger.Sync() })
	if err := a.wire(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func (a *app) wire(ctx context.Context) error {
	p, err := profile.Load(a.cfg.Profile)
	if err != nil {
		return err
	}
	pool, dialect, err := a.openPool(ctx)
	if err != nil {
		return err
	}
	a.handler, err = buildHandler(p, pool, dialect, a.cfg)
	return err
}

func (a *app) openPool(ctx context.Context) (session.ObservableSessionPool, spec.Dialect, error) {
	dialect, err := spec.DialectByName(a.cfg.Database.Driver)
	if err != nil {
		return nil, nil, err
	}
	var pool session.ObservableSessionPool
	switch dialect {
	case spec.PostgreSQL:
		pgPool, err := pgsession.Connect(ctx, a.cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		a.closers = append(a.closers, pgPool.Close)
		pool = pgPool
	default:
		sqlPool, err := sqlsession.Open("sqlite", a.cfg.Database.DSN)
		if err != nil {
			return nil, nil, err
		}
		// Every connection to :memory: is a distinct database.
		if a.cfg.Database.DSN == ":memory:" {
			sqlPool.DB().SetMaxOpenConns(1)
		}
		a.closers = append(a.closers, func() { _ = sqlPool.Close() })
		pool = sqlPool
	}
	a.closers = append(a.closers, logging.LogQueries(pool, a.logger).Dispose)
	a.logger.Debug("database opened", zap.String("dialect", dialect.Name()))
	return pool, dialect, nil
}

// buildHandler registers one SQL-backed lister per profiled entity.
func buildHandler(p *profile.Profile, pool session.SessionPool, dialect spec.Dialect, cfg *config.Config) (*httpapi.Handler, error) {
	h := httpapi.NewHandler()
	for _, name := range p.Names() {
		entity, _ := p.Entity(name)
		if len(entity.Columns) == 0 {
			return nil, errors.Errorf("entity \"%s\" declares no columns", name)
		}
		fields, err := entity.FieldConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "entity \"%s\"", name)
		}
		if fields.Limits == (query.PageLimits{}) {
			fields.Limits = cfg.Limits()
		}
		repo := sqlstore.NewRepository(pool, entity.SQLTable(), dialect, sqlstore.RecordMapper(entity.Columns))
		h.Register(name, httpapi.NewLister[map[string]any](repo, fields))
	}
	return h, nil
}

// Close releases resources in reverse order of acquisition.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
