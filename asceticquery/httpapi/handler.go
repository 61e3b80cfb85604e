package httpapi

import (
	"context"
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/logging"
	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
)

// Lister runs one list query and returns the page to render.
type Lister func(ctx context.Context, params query.QueryParams) (any, error)

// NewLister binds a data source to its field configuration.
func NewLister[T any](ds query.DataSource[T], cfg query.FieldConfig) Lister {
	return func(ctx context.Context, params query.QueryParams) (any, error) {
		return query.Execute(ctx, ds, params, cfg)
	}
}

// Handler serves GET /:entity for every registered entity.
type Handler struct {
	listers map[string]Lister
}

func NewHandler() *Handler {
	return &Handler{listers: make(map[string]Lister)}
}

func (h *Handler) Register(entity string, lister Lister) *Handler {
	h.listers[entity] = lister
	return h
}

func (h *Handler) Lister(entity string) (Lister, bool) {
	lister, ok := h.listers[entity]
	return lister, ok
}

func (h *Handler) Entities() []string {
	entities := make([]string, 0, len(h.listers))
	for entity := range h.listers {
		entities = append(entities, entity)
	}
	sort.Strings(entities)
	return entities
}

func (h *Handler) List(c echo.Context) error {
	entity := c.Param("entity")
	lister, ok := h.listers[entity]
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown entity \""+entity+"\"")
	}
	params, err := query.QueryParamsFromValues(c.QueryParams())
	if err != nil {
		return toHTTPError(err)
	}
	ctx := c.Request().Context()
	page, err := lister(ctx, params)
	if err != nil {
		logging.FromContext(ctx).Info("list query failed", zap.String("entity", entity), zap.Error(err))
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, page)
}

// toHTTPError exposes client errors as 400 and hides everything else
// behind a 500.
func toHTTPError(err error) *echo.HTTPError {
	if query.IsClientError(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
}
