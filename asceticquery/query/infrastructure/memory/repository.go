package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain/operators"
)

type Option[T s.Context] func(*Repository[T])

func WithRegistry[T s.Context](registry *operators.OperatorRegistry) Option[T] {
	return func(r *Repository[T]) {
		r.registry = registry
	}
}

// Repository is a query.DataSource over entities held in memory.
type Repository[T s.Context] struct {
	mu       sync.RWMutex
	items    []T
	registry *operators.OperatorRegistry
}

func NewRepository[T s.Context](items []T, opts ...Option[T]) *Repository[T] {
	r := &Repository[T]{
		items:    append([]T(nil), items...),
		registry: operators.NewDefaultRegistry(),
	}
	for i := range opts {
		opts[i](r)
	}
	return r
}

func (r *Repository[T]) Add(items ...T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, items...)
}

func (r *Repository[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func (r *Repository[T]) Find(ctx context.Context, q query.Query) ([]T, int64, error) {
	r.mu.RLock()
	items := append([]T(nil), r.items...)
	r.mu.RUnlock()

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		ok, err := r.matches(item, q)
		if err != nil {
			return nil, 0, err
		}
		if ok {
			matched = append(matched, item)
		}
	}

	if q.Pageable.IsSorted() {
		if err := r.sort(matched, q.Pageable.Sort); err != nil {
			return nil, 0, err
		}
	}

	total := int64(len(matched))
	start := min(q.Pageable.Offset(), len(matched))
	end := min(start+q.Pageable.PageSize, len(matched))

	logging.FromContext(ctx).Debug("memory query",
		zap.Int("scanned", len(items)),
		zap.Int64("matched", total),
	)
	return matched[start:end], total, nil
}

// matches is true when any joined row satisfies the predicate, so an
// entity is returned at most once.
func (r *Repository[T]) matches(item T, q query.Query) (bool, error) {
	if q.Predicate == nil {
		return true, nil
	}
	rows, err := expandRows(item, q.Joins)
	if err != nil {
		return false, err
	}
	for _, row := range rows {
		ok, err := s.Evaluate(row, q.Predicate, r.registry)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// sort orders NULLs last when ascending and first when descending.
func (r *Repository[T]) sort(items []T, orders []query.SortOrder) error {
	var sortErr error
	sort.SliceStable(items, func(i, j int) bool {
		for _, o := range orders {
			c, err := r.compare(items[i], items[j], o.Path)
			if err != nil {
				if sortErr == nil {
					sortErr = err
				}
				return false
			}
			if c == 0 {
				continue
			}
			if o.Direction == query.Descending {
				return c > 0
			}
			return c < 0
		}
		return false
	})
	return sortErr
}

func (r *Repository[T]) compare(a, b s.Context, path string) (int, error) {
	left, err := valueAt(a, path)
	if err != nil {
		return 0, err
	}
	right, err := valueAt(b, path)
	if err != nil {
		return 0, err
	}
	switch {
	case left == nil && right == nil:
		return 0, nil
	case left == nil:
		return 1, nil
	case right == nil:
		return -1, nil
	}
	lt, err := r.registry.ExecBinary(left, operators.OperatorLt, right)
	if err != nil {
		return 0, err
	}
	if lt == true {
		return -1, nil
	}
	gt, err := r.registry.ExecBinary(left, operators.OperatorGt, right)
	if err != nil {
		return 0, err
	}
	if gt == true {
		return 1, nil
	}
	return 0, nil
}

func valueAt(ctx s.Context, path string) (any, error) {
	segments := strings.Split(path, ".")
	var current any = ctx
	for _, segment := range segments {
		if current == nil {
			return nil, nil
		}
		obj, ok := current.(s.Context)
		if !ok {
			return nil, fmt.Errorf("\"%s\" is not an object in path \"%s\"", segment, path)
		}
		value, err := obj.Get(segment)
		if err != nil {
			return nil, err
		}
		current = value
	}
	return current, nil
}
