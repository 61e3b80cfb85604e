package query

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
)

func TestBuildPageable_Defaults(t *testing.T) {
	p := BuildPageable(option.Nothing[int](), option.Nothing[int](), option.Nothing[string](), nil, nil)
	assert.Equal(t, Pageable{PageIndex: 0, PageSize: DefaultPageSize}, p)
	assert.False(t, p.IsSorted())
}

func TestBuildPageable_Clamping(t *testing.T) {
	p := BuildPageable(option.Some(-5), option.Some(5000), option.Nothing[string](), nil, nil)
	assert.Equal(t, 0, p.PageIndex)
	assert.Equal(t, 1000, p.PageSize)

	p = BuildPageable(option.Some(3), option.Some(0), option.Nothing[string](), nil, nil)
	assert.Equal(t, 2, p.PageIndex)
	assert.Equal(t, 1, p.PageSize)
	assert.Equal(t, 2, p.Offset())
}

func TestPageLimits(t *testing.T) {
	limits := PageLimits{DefaultSize: 50, MaxSize: 100}
	p := limits.BuildPageable(option.Nothing[int](), option.Nothing[int](), option.Nothing[string](), nil, nil)
	assert.Equal(t, 50, p.PageSize)

	p = limits.BuildPageable(option.Nothing[int](), option.Some(500), option.Nothing[string](), nil, nil)
	assert.Equal(t, 100, p.PageSize)

	p = PageLimits{DefaultSize: 500, MaxSize: 100}.BuildPageable(option.Nothing[int](), option.Nothing[int](), option.Nothing[string](), nil, nil)
	assert.Equal(t, 100, p.PageSize)
}

func TestParseSort_DropsDisallowedFields(t *testing.T) {
	orders := ParseSort("name:asc,secret:desc", NewFieldSet("name"), nil)
	assert.Equal(t, []SortOrder{{Path: "name", Direction: Ascending}}, orders)
}

func TestParseSort_Directions(t *testing.T) {
	orders := ParseSort("a:ASC, b ,c:desc,d:ascending,,e:", NewFieldSet("a", "b", "c", "d", "e"), nil)
	assert.Equal(t, []SortOrder{
		{Path: "a", Direction: Ascending},
		{Path: "b", Direction: Descending},
		{Path: "c", Direction: Descending},
		{Path: "d", Direction: Descending},
		{Path: "e", Direction: Descending},
	}, orders)
}

func TestParseSort_AllDroppedIsUnsorted(t *testing.T) {
	assert.Nil(t, ParseSort("secret:asc", NewFieldSet("name"), nil))
	assert.Nil(t, ParseSort("name:asc", nil, nil))
	assert.Nil(t, ParseSort("  ", NewFieldSet("name"), nil))
}

func TestParseSort_Aliases(t *testing.T) {
	aliases := map[string]string{"createdAt": "created_at"}
	orders := ParseSort("createdAt:asc", NewFieldSet("created_at"), aliases)
	assert.Equal(t, []SortOrder{{Path: "created_at", Direction: Ascending}}, orders)
}

func TestDirection(t *testing.T) {
	assert.Equal(t, "ASC", Ascending.String())
	assert.Equal(t, "DESC", ParseDirection("whatever").String())
}
