package sql

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/signals"
)

// SessionPool hands out sessions over a database/sql handle.
type SessionPool struct {
	db               *sql.DB
	onSessionStarted signals.Signal[session.SessionScopeStartedEvent]
	onSessionEnded   signals.Signal[session.SessionScopeEndedEvent]
	querySignals     session.QuerySignals
}

func NewSessionPool(db *sql.DB) *SessionPool {
	return &SessionPool{
		db:               db,
		onSessionStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onSessionEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
		querySignals:     session.NewQuerySignals(),
	}
}

// Open opens driverName (e.g. "sqlite") at dsn.
func Open(driverName, dsn string) (*SessionPool, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open %s database", driverName)
	}
	return NewSessionPool(db), nil
}

func (p *SessionPool) OnSessionStarted() signals.Signal[session.SessionScopeStartedEvent] {
	return p.onSessionStarted
}

func (p *SessionPool) OnSessionEnded() signals.Signal[session.SessionScopeEndedEvent] {
	return p.onSessionEnded
}

func (p *SessionPool) OnQueryStarted() signals.Signal[session.QueryStartedEvent] {
	return p.querySignals.Started
}

func (p *SessionPool) OnQueryEnded() signals.Signal[session.QueryEndedEvent] {
	return p.querySignals.Ended
}

func (p *SessionPool) Session(ctx context.Context, callback session.SessionPoolCallback) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	sess := NewSession(ctx, p.db, p.querySignals)

	p.onSessionStarted.Notify(session.SessionScopeStartedEvent{Session: sess})
	defer p.onSessionEnded.Notify(session.SessionScopeEndedEvent{Session: sess})

	return callback(sess)
}

func (p *SessionPool) DB() *sql.DB {
	return p.db
}

func (p *SessionPool) Close() error {
	return p.db.Close()
}
