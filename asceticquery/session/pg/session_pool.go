package pg

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/signals"
)

type SessionPool struct {
	pool             *pgxpool.Pool
	onSessionStarted signals.Signal[session.SessionScopeStartedEvent]
	onSessionEnded   signals.Signal[session.SessionScopeEndedEvent]
	querySignals     session.QuerySignals
}

func NewSessionPool(pool *pgxpool.Pool) *SessionPool {
	return &SessionPool{
		pool:             pool,
		onSessionStarted: signals.NewSignal[session.SessionScopeStartedEvent](),
		onSessionEnded:   signals.NewSignal[session.SessionScopeEndedEvent](),
		querySignals:     session.NewQuerySignals(),
	}
}

// Connect opens a pgx pool for dsn and checks that the server answers.
func Connect(ctx context.Context, dsn string) (*SessionPool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "unable to create connection pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "unable to reach database")
	}
	return NewSessionPool(pool), nil
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

	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return errors.Wrap(err, "unable to acquire connection")
	}
	defer conn.Release()

	sess := NewSession(ctx, conn, p.querySignals)

	p.onSessionStarted.Notify(session.SessionScopeStartedEvent{Session: sess})
	defer p.onSessionEnded.Notify(session.SessionScopeEndedEvent{Session: sess})

	return callback(sess)
}

func (p *SessionPool) Close() {
	p.pool.Close()
}
