package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/query/infrastructure/memory"
)

type failingSource struct{}

func (failingSource) Find(context.Context, query.Query) ([]memory.Record, int64, error) {
	return nil, 0, errors.New("connection refused")
}

func productConfig() query.FieldConfig {
	return query.FieldConfig{
		Filterable:  query.NewFieldSet("name", "price", "categories.name"),
		Sortable:    query.NewFieldSet("name", "price"),
		Aliases:     map[string]string{"category": "categories.name"},
		Searchable:  []string{"name"},
		Collections: query.NewFieldSet("categories"),
		Types: map[string]query.FieldType{
			"name":            query.TypeOf(query.KindString),
			"price":           query.TypeOf(query.KindInt),
			"categories.name": query.TypeOf(query.KindString),
		},
	}
}

func newServer() http.Handler {
	products := memory.NewRepository([]memory.Record{
		{"name": "Laptop Pro", "price": 1999, "categories": []memory.Record{{"name": "Computers"}}},
		{"name": "Desktop PC", "price": 1499, "categories": []memory.Record{{"name": "Computers"}, {"name": "Office"}}},
		{"name": "Mouse", "price": 20, "categories": []memory.Record{{"name": "Electronics"}}},
	})
	h := NewHandler().
		Register("products", NewLister[memory.Record](products, productConfig())).
		Register("broken", NewLister[memory.Record](failingSource{}, productConfig()))
	return NewRouter(h, zap.NewNop())
}

func get(t *testing.T, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	newServer().ServeHTTP(rec, req)
	return rec
}

type pageBody struct {
	Content       []map[string]any `json:"content"`
	TotalElements int64            `json:"totalElements"`
	TotalPages    int              `json:"totalPages"`
	Page          int              `json:"page"`
	Size          int              `json:"size"`
}

func TestList(t *testing.T) {
	rec := get(t, "/products?filter=category:eq:Computers&sort=price:asc&size=1&page=2")
	require.Equal(t, http.StatusOK, rec.Code)

	var body pageBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Content, 1)
	assert.Equal(t, "Laptop Pro", body.Content[0]["name"])
	assert.Equal(t, int64(2), body.TotalElements)
	assert.Equal(t, 2, body.TotalPages)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 1, body.Size)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestList_EmptyContentIsAnArray(t *testing.T) {
	rec := get(t, "/products?search=keyboard")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":[]`)
}

func TestList_ClientErrors(t *testing.T) {
	for name, target := range map[string]string{
		"field outside allow-list": "/products?filter=password:eq:x",
		"unknown operator":         "/products?filter=price:between:1",
		"uncoercible value":        "/products?filter=price:gt:cheap",
		"invalid page":             "/products?page=first",
		"contains on number":       "/products?filter=price:contains:1",
	} {
		t.Run(name, func(t *testing.T) {
			rec := get(t, target)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body errorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body.Error)
		})
	}
}

func TestList_UnknownEntity(t *testing.T) {
	rec := get(t, "/orders")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestList_DataSourceFailureIsHidden(t *testing.T) {
	rec := get(t, "/broken")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestHandler_Entities(t *testing.T) {
	h := NewHandler().Register("products", nil).Register("vendors", nil)
	assert.Equal(t, []string{"products", "vendors"}, h.Entities())
}
