package session

import (
	"time"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/signals"
)

// QuerySignals is the pair of signals a connection reports statements to.
type QuerySignals struct {
	Started signals.Signal[QueryStartedEvent]
	Ended   signals.Signal[QueryEndedEvent]
}

func NewQuerySignals() QuerySignals {
	return QuerySignals{
		Started: signals.NewSignal[QueryStartedEvent](),
		Ended:   signals.NewSignal[QueryEndedEvent](),
	}
}

// NewObservedConnection wraps conn so that every statement is reported to
// the given signals on behalf of sess.
func NewObservedConnection(conn DbConnection, sess DbSession, sig QuerySignals) DbConnection {
	return &observedConnection{delegate: conn, session: sess, signals: sig}
}

type observedConnection struct {
	delegate DbConnection
	session  DbSession
	signals  QuerySignals
}

func (c *observedConnection) started(query string, args []any) time.Time {
	c.signals.Started.Notify(QueryStartedEvent{
		SQL:     query,
		Args:    args,
		Sender:  c,
		Session: c.session,
	})
	return time.Now()
}

func (c *observedConnection) ended(query string, args []any, start time.Time, err error) {
	c.signals.Ended.Notify(QueryEndedEvent{
		SQL:          query,
		Args:         args,
		Sender:       c,
		Session:      c.session,
		ResponseTime: time.Since(start),
		Err:          err,
	})
}

func (c *observedConnection) Exec(query string, args ...any) (Result, error) {
	start := c.started(query, args)
	result, err := c.delegate.Exec(query, args...)
	c.ended(query, args, start, err)
	return result, err
}

func (c *observedConnection) Query(query string, args ...any) (Rows, error) {
	start := c.started(query, args)
	rows, err := c.delegate.Query(query, args...)
	c.ended(query, args, start, err)
	return rows, err
}

func (c *observedConnection) QueryRow(query string, args ...any) Row {
	start := c.started(query, args)
	row := c.delegate.QueryRow(query, args...)
	c.ended(query, args, start, row.Err())
	return row
}
