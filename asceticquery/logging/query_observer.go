package logging

import (
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/signals"
)

// QueryObserver logs every finished statement at debug level, and failed
// ones at warn.
func QueryObserver(logger *zap.Logger) signals.Observer[session.QueryEndedEvent] {
	return func(e session.QueryEndedEvent) {
		fields := []zap.Field{
			zap.String("sql", e.SQL),
			zap.Int("args", len(e.Args)),
			zap.Duration("response_time", e.ResponseTime),
		}
		if e.Failed() {
			logger.Warn("query failed", append(fields, zap.Error(e.Err))...)
			return
		}
		logger.Debug("query executed", fields...)
	}
}

// LogQueries attaches a QueryObserver to pool.
func LogQueries(pool session.ObservableSessionPool, logger *zap.Logger) signals.Disposable {
	return pool.OnQueryEnded().Attach(QueryObserver(logger), "logging.LogQueries")
}
