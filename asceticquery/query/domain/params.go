package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
)

// Query string keys understood by QueryParamsFromValues.
const (
	ParamPage   = "page"
	ParamSize   = "size"
	ParamSearch = "search"
	ParamSort   = "sort"
	ParamFilter = "filter"
)

// QueryParamsFromValues decodes page, size, search, sort and the repeated
// filter key from a URL query.
func QueryParamsFromValues(values url.Values) (QueryParams, error) {
	page, err := intParam(values, ParamPage)
	if err != nil {
		return QueryParams{}, err
	}
	size, err := intParam(values, ParamSize)
	if err != nil {
		return QueryParams{}, err
	}
	return QueryParams{
		Page:    page,
		Size:    size,
		Search:  stringParam(values, ParamSearch),
		Sort:    stringParam(values, ParamSort),
		Filters: values[ParamFilter],
	}, nil
}

func stringParam(values url.Values, key string) option.Option[string] {
	if !values.Has(key) {
		return option.Nothing[string]()
	}
	return option.Some(values.Get(key))
}

func intParam(values url.Values, key string) (option.Option[int], error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return option.Nothing[int](), nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return option.Nothing[int](), &InvalidParameterError{Field: key, Value: raw, Expected: "integer"}
	}
	return option.Some(n), nil
}
