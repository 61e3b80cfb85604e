package query

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
)

func TestQueryParamsFromValues(t *testing.T) {
	values, err := url.ParseQuery("page=2&size=50&search=lap&sort=name:asc&filter=price:gt:10&filter=tags:contains:business")
	require.NoError(t, err)

	params, err := QueryParamsFromValues(values)
	require.NoError(t, err)
	assert.Equal(t, QueryParams{
		Page:    option.Some(2),
		Size:    option.Some(50),
		Search:  option.Some("lap"),
		Sort:    option.Some("name:asc"),
		Filters: []string{"price:gt:10", "tags:contains:business"},
	}, params)
}

func TestQueryParamsFromValues_Missing(t *testing.T) {
	params, err := QueryParamsFromValues(url.Values{})
	require.NoError(t, err)
	assert.True(t, params.Page.IsNothing())
	assert.True(t, params.Size.IsNothing())
	assert.True(t, params.Search.IsNothing())
	assert.Empty(t, params.Filters)
}

func TestQueryParamsFromValues_InvalidNumber(t *testing.T) {
	_, err := QueryParamsFromValues(url.Values{"size": {"ten"}})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Contains(t, err.Error(), "size")
}
