package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
)

func searchConfig() FieldConfig {
	return FieldConfig{
		Searchable:  []string{"name", "category"},
		Aliases:     map[string]string{"category": "categories.name"},
		Collections: NewFieldSet("categories"),
		Types: map[string]FieldType{
			"name":            TypeOf(KindString),
			"categories.name": TypeOf(KindString),
		},
	}
}

func TestExpandSearch_Empty(t *testing.T) {
	for _, term := range []option.Option[string]{option.Nothing[string](), option.Some(""), option.Some("   ")} {
		predicate, err := ExpandSearch(term, searchConfig(), NewJoinSet())
		require.NoError(t, err)
		assert.Nil(t, predicate)
	}

	predicate, err := ExpandSearch(option.Some("top"), FieldConfig{}, NewJoinSet())
	require.NoError(t, err)
	assert.Nil(t, predicate)
}

func TestExpandSearch_OrsSearchableFields(t *testing.T) {
	joins := NewJoinSet()
	predicate, err := ExpandSearch(option.Some("  TOP "), searchConfig(), joins)
	require.NoError(t, err)
	require.NotNil(t, predicate)
	assert.Equal(t, []string{"categories"}, joins.Relations())

	byName := entity{"name": "Laptop Pro", "categories": entity{"name": "Computers"}}
	assert.True(t, matches(t, predicate, byName))

	byCategory := entity{"name": "Mouse", "categories": entity{"name": "Desktops"}}
	assert.True(t, matches(t, predicate, byCategory))

	none := entity{"name": "Mouse", "categories": nil}
	assert.False(t, matches(t, predicate, none))
}
