package query

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
)

// QueryParams is the untrusted query input of one request.
type QueryParams struct {
	Page    option.Option[int]    `json:"page"`
	Size    option.Option[int]    `json:"size"`
	Search  option.Option[string] `json:"search"`
	Sort    option.Option[string] `json:"sort"`
	Filters []string              `json:"filters"`
}

// Query is what a DataSource executes. A nil Predicate matches everything.
// Joins lists the collection relations to reach by left outer join, each
// once.
type Query struct {
	Predicate s.Visitable
	Joins     []string
	Pageable  Pageable
}

// DataSource executes a Query and returns one page of entities together
// with the total number of distinct matching entities.
type DataSource[T any] interface {
	Find(ctx context.Context, q Query) ([]T, int64, error)
}

type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
	// Number is the 1-based page number.
	Number int `json:"page"`
	Size   int `json:"size"`
}

func NewPage[T any](content []T, total int64, pageable Pageable) Page[T] {
	if content == nil {
		content = []T{}
	}
	totalPages := 0
	if pageable.PageSize > 0 {
		totalPages = int((total + int64(pageable.PageSize) - 1) / int64(pageable.PageSize))
	}
	return Page[T]{
		Content:       content,
		TotalElements: total,
		TotalPages:    totalPages,
		Number:        pageable.PageIndex + 1,
		Size:          pageable.PageSize,
	}
}

// Compile turns QueryParams into a Query without executing it. Any invalid
// input fails here, before a data source is touched.
func Compile(ctx context.Context, params QueryParams, cfg FieldConfig) (Query, error) {
	logger := logging.FromContext(ctx)

	pageable := cfg.Limits.BuildPageable(params.Page, params.Size, params.Sort, cfg.Sortable, cfg.Aliases)
	pageable.Sort = dropCollectionSorts(logger, pageable.Sort, cfg)

	descs, err := ParseFilters(params.Filters)
	if err != nil {
		return Query{}, err
	}
	resolved, err := NewFieldResolver(cfg).Resolve(descs)
	if err != nil {
		return Query{}, err
	}

	joins := NewJoinSet()
	builder := PredicateBuilder{Paths: joins, Logger: logger}
	filters := make([]s.Visitable, 0, len(resolved))
	for _, f := range resolved {
		predicate, err := builder.Build(f, cfg.TypeOf(f.Path))
		if err != nil {
			return Query{}, err
		}
		filters = append(filters, predicate)
	}

	search, err := ExpandSearch(params.Search, cfg, joins)
	if err != nil {
		return Query{}, err
	}

	var predicate s.Visitable
	filter := s.AllOf(filters...)
	switch {
	case filter != nil && search != nil:
		predicate = s.And(filter, search)
	case filter != nil:
		predicate = filter
	default:
		predicate = search
	}

	logger.Debug("query compiled",
		zap.Stringers("filters", descs),
		zap.Bool("search", search != nil),
		zap.Strings("joins", joins.Relations()),
		zap.Int("page_index", pageable.PageIndex),
		zap.Int("page_size", pageable.PageSize),
	)
	return Query{Predicate: predicate, Joins: joins.Relations(), Pageable: pageable}, nil
}

// Execute compiles params and runs the query against ds.
func Execute[T any](ctx context.Context, ds DataSource[T], params QueryParams, cfg FieldConfig) (Page[T], error) {
	q, err := Compile(ctx, params, cfg)
	if err != nil {
		return Page[T]{}, err
	}
	content, total, err := ds.Find(ctx, q)
	if err != nil {
		return Page[T]{}, errors.Wrap(err, "query execution failed")
	}
	return NewPage(content, total, q.Pageable), nil
}

// dropCollectionSorts removes sort orders through a collection; such an
// order is ambiguous per entity.
func dropCollectionSorts(logger *zap.Logger, orders []SortOrder, cfg FieldConfig) []SortOrder {
	result := orders[:0]
	for _, o := range orders {
		if cfg.RelationOf(o.Path) == RelationCollection {
			logger.Debug("sort through a collection dropped", zap.String("path", o.Path))
			continue
		}
		result = append(result, o)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
