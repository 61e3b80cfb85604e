package sql

import (
	"context"
	"database/sql"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
)

type Session struct {
	ctx        context.Context
	db         *sql.DB
	dbExecutor DbExecutor
	signals    session.QuerySignals
}

func NewSession(ctx context.Context, db *sql.DB, signals session.QuerySignals) *Session {
	return &Session{
		ctx:        ctx,
		db:         db,
		dbExecutor: db,
		signals:    signals,
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return session.NewObservedConnection(&connection{ctx: s.ctx, exec: s.dbExecutor}, s, s.signals)
}

func (s *Session) Atomic(callback session.SessionCallback) error {
	return s.begin(callback, nil)
}

// ReadOnly runs callback in a plain transaction; not every driver accepts
// sql.TxOptions.ReadOnly. Inside a transaction it reuses it.
func (s *Session) ReadOnly(callback session.SessionCallback) error {
	if s.db == nil {
		return callback(s)
	}
	return s.begin(callback, nil)
}

func (s *Session) begin(callback session.SessionCallback, opts *sql.TxOptions) error {
	// database/sql has no savepoints: https://github.com/golang/go/issues/7898
	if s.db == nil {
		return errors.New("savepoints are not supported")
	}
	tx, err := s.db.BeginTx(s.ctx, opts)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	txSession := &Session{
		ctx:        s.ctx,
		dbExecutor: tx,
		signals:    s.signals,
	}
	err = callback(txSession)
	if err != nil {
		if txErr := tx.Rollback(); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(); txErr != nil {
		return errors.Wrap(txErr, "failed to commit tx")
	}
	return nil
}

type DbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type connection struct {
	ctx  context.Context
	exec DbExecutor
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	return c.exec.ExecContext(c.ctx, query, args...)
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	return c.exec.QueryContext(c.ctx, query, args...)
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	return c.exec.QueryRowContext(c.ctx, query, args...)
}
