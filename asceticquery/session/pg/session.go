package pg

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/session/result"
)

// Session represents a database session without transaction
type Session struct {
	ctx     context.Context
	conn    *pgxpool.Conn
	signals session.QuerySignals
}

func NewSession(ctx context.Context, conn *pgxpool.Conn, signals session.QuerySignals) *Session {
	return &Session{
		ctx:     ctx,
		conn:    conn,
		signals: signals,
	}
}

func (s *Session) Context() context.Context {
	return s.ctx
}

func (s *Session) Connection() session.DbConnection {
	return session.NewObservedConnection(&connection{ctx: s.ctx, exec: s.conn}, s, s.signals)
}

// Atomic runs callback in a read-write transaction.
func (s *Session) Atomic(callback session.SessionCallback) error {
	tx, err := s.conn.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start transaction")
	}
	return runAtomic(s.ctx, tx, NewAtomicSession(s.ctx, tx, s.signals), callback, "transaction")
}

// ReadOnly runs callback in a read-only repeatable-read transaction, so
// that every statement sees the same snapshot.
func (s *Session) ReadOnly(callback session.SessionCallback) error {
	tx, err := s.conn.BeginTx(s.ctx, pgx.TxOptions{
		IsoLevel:   pgx.RepeatableRead,
		AccessMode: pgx.ReadOnly,
	})
	if err != nil {
		return errors.Wrap(err, "unable to start read-only transaction")
	}
	return runAtomic(s.ctx, tx, NewAtomicSession(s.ctx, tx, s.signals), callback, "read-only transaction")
}

// AtomicSession represents a session inside transaction
type AtomicSession struct {
	ctx     context.Context
	tx      pgx.Tx
	signals session.QuerySignals
}

func NewAtomicSession(ctx context.Context, tx pgx.Tx, signals session.QuerySignals) *AtomicSession {
	return &AtomicSession{
		ctx:     ctx,
		tx:      tx,
		signals: signals,
	}
}

func (s *AtomicSession) Context() context.Context {
	return s.ctx
}

func (s *AtomicSession) Connection() session.DbConnection {
	return session.NewObservedConnection(&connection{ctx: s.ctx, exec: s.tx}, s, s.signals)
}

// Atomic opens a savepoint.
func (s *AtomicSession) Atomic(callback session.SessionCallback) error {
	nestedTx, err := s.tx.Begin(s.ctx)
	if err != nil {
		return errors.Wrap(err, "unable to start savepoint")
	}
	return runAtomic(s.ctx, nestedTx, NewAtomicSession(s.ctx, nestedTx, s.signals), callback, "savepoint")
}

// ReadOnly inside a transaction reuses it.
func (s *AtomicSession) ReadOnly(callback session.SessionCallback) error {
	return callback(s)
}

func runAtomic(ctx context.Context, tx pgx.Tx, sess session.Session, callback session.SessionCallback, label string) error {
	err := callback(sess)
	if err != nil {
		if txErr := tx.Rollback(ctx); txErr != nil {
			return multierror.Append(err, txErr)
		}
		return err
	}
	if txErr := tx.Commit(ctx); txErr != nil {
		return errors.Wrapf(txErr, "failed to commit %s", label)
	}
	return nil
}

// executor interface for both *pgxpool.Conn and pgx.Tx
type executor interface {
	Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) pgx.Row
}

// connection implements session.DbConnection
type connection struct {
	ctx  context.Context
	exec executor
}

func (c *connection) Exec(query string, args ...any) (session.Result, error) {
	tag, err := c.exec.Exec(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return result.RowsAffected(tag.RowsAffected()), nil
}

func (c *connection) Query(query string, args ...any) (session.Rows, error) {
	rows, err := c.exec.Query(c.ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &rowsAdapter{rows: rows}, nil
}

func (c *connection) QueryRow(query string, args ...any) session.Row {
	row := c.exec.QueryRow(c.ctx, query, args...)
	return &rowAdapter{row: row}
}
