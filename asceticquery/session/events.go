package session

import (
	"time"
)

type SessionScopeStartedEvent struct {
	Session Session
}

type SessionScopeEndedEvent struct {
	Session Session
}

// QueryStartedEvent is emitted before a statement is sent to the database.
type QueryStartedEvent struct {
	SQL     string
	Args    []any
	Sender  any
	Session DbSession
}

// QueryEndedEvent is emitted once the statement returned. Err is the
// driver error, if any.
type QueryEndedEvent struct {
	SQL          string
	Args         []any
	Sender       any
	Session      DbSession
	ResponseTime time.Duration
	Err          error
}

func (e QueryEndedEvent) Failed() bool {
	return e.Err != nil
}
