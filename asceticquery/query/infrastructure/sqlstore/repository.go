package sqlstore

import (
	"context"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/session"
	spec "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/infrastructure"
)

// Scanner is the part of session.Rows a RowMapper may use.
type Scanner interface {
	Scan(dest ...any) error
}

// RowMapper scans the current row into an entity.
type RowMapper[T any] func(row Scanner) (T, error)

// Repository is a query.DataSource over a SQL table reached through a
// session pool.
type Repository[T any] struct {
	pool     session.SessionPool
	compiler Compiler
	mapper   RowMapper[T]
}

func NewRepository[T any](pool session.SessionPool, table Table, dialect spec.Dialect, mapper RowMapper[T]) *Repository[T] {
	return &Repository[T]{
		pool:     pool,
		compiler: NewCompiler(table, dialect),
		mapper:   mapper,
	}
}

func (r *Repository[T]) Find(ctx context.Context, q query.Query) ([]T, int64, error) {
	stmt, err := r.compiler.Compile(q)
	if err != nil {
		return nil, 0, errors.Wrap(err, "unable to compile query")
	}
	logging.FromContext(ctx).Debug("sql query compiled",
		zap.String("select", stmt.Select),
		zap.String("count", stmt.Count),
		zap.Int("params", len(stmt.Params)),
	)

	var content []T
	var total int64
	err = r.pool.Session(ctx, func(s session.Session) error {
		return readOnly(s, func(s session.Session) error {
			dbs, ok := session.DbSessionOf(s)
			if !ok {
				return errors.Errorf("session %T has no database connection", s)
			}
			conn := dbs.Connection()
			if err := conn.QueryRow(stmt.Count, stmt.Params...).Scan(&total); err != nil {
				return errors.Wrap(err, "unable to count rows")
			}
			if total == 0 {
				return nil
			}
			content, err = r.fetch(conn, stmt)
			return err
		})
	})
	if err != nil {
		return nil, 0, err
	}
	return content, total, nil
}

func (r *Repository[T]) fetch(conn session.DbConnection, stmt Statement) (result []T, err error) {
	rows, err := conn.Query(stmt.Select, stmt.Params...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to select rows")
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			err = multierror.Append(err, closeErr)
		}
	}()
	for rows.Next() {
		entity, err := r.mapper(rows)
		if err != nil {
			return nil, errors.Wrap(err, "unable to scan row")
		}
		result = append(result, entity)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "unable to iterate rows")
	}
	return result, nil
}

func readOnly(s session.Session, callback session.SessionCallback) error {
	if ro, ok := s.(session.ReadOnlySession); ok {
		return ro.ReadOnly(callback)
	}
	return callback(s)
}
