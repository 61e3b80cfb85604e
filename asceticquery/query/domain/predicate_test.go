package query

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain/operators"
)

type entity map[string]any

func (e entity) Get(key string) (any, error) {
	v, ok := e[key]
	if !ok {
		return nil, s.ErrKeyNotFound
	}
	return v, nil
}

func filter(field string, op Operation, raw string) ResolvedFilter {
	return ResolvedFilter{
		FilterDescriptor: FilterDescriptor{Field: field, Operation: op, RawValue: raw},
		Path:             field,
	}
}

func matches(t *testing.T, predicate s.Visitable, e entity) bool {
	t.Helper()
	ok, err := s.Evaluate(e, predicate, operators.NewDefaultRegistry())
	require.NoError(t, err)
	return ok
}

func build(t *testing.T, f ResolvedFilter, typ FieldType) s.Visitable {
	t.Helper()
	predicate, err := BuildPredicate(f, typ, NewJoinSet())
	require.NoError(t, err)
	return predicate
}

func TestBuildPredicate_Equals(t *testing.T) {
	predicate := build(t, filter("age", Equals, "30"), TypeOf(KindInt))
	assert.True(t, matches(t, predicate, entity{"age": 30}))
	assert.False(t, matches(t, predicate, entity{"age": 31}))
	assert.False(t, matches(t, predicate, entity{"age": nil}))
}

func TestBuildPredicate_NotEquals(t *testing.T) {
	predicate := build(t, filter("name", NotEquals, "Mouse"), TypeOf(KindString))
	assert.True(t, matches(t, predicate, entity{"name": "Laptop Pro"}))
	assert.False(t, matches(t, predicate, entity{"name": "Mouse"}))
}

func TestBuildPredicate_EmptyValueIsNull(t *testing.T) {
	predicate := build(t, filter("deletedAt", Equals, ""), TypeOf(KindDateTime))
	assert.IsType(t, s.PostfixNode{}, predicate)
	assert.True(t, matches(t, predicate, entity{"deletedAt": nil}))

	predicate = build(t, filter("deletedAt", NotEquals, ""), TypeOf(KindDateTime))
	assert.False(t, matches(t, predicate, entity{"deletedAt": nil}))
}

func TestBuildPredicate_LikeIsSubstring(t *testing.T) {
	predicate := build(t, filter("name", Like, "TOP"), TypeOf(KindString))
	assert.True(t, matches(t, predicate, entity{"name": "Laptop Pro"}))
	assert.True(t, matches(t, predicate, entity{"name": "Desktop PC"}))
	assert.True(t, matches(t, predicate, entity{"name": "top"}))
	assert.False(t, matches(t, predicate, entity{"name": "Mouse"}))

	or, ok := predicate.(s.InfixNode)
	require.True(t, ok)
	assert.Equal(t, operators.OperatorOr, or.Operator())
}

func TestBuildPredicate_LikeEscapesWildcards(t *testing.T) {
	predicate := build(t, filter("code", Like, "50%"), TypeOf(KindString))
	assert.True(t, matches(t, predicate, entity{"code": "save 50% now"}))
	assert.False(t, matches(t, predicate, entity{"code": "save 500 now"}))

	predicate = build(t, filter("code", Like, "a_b"), TypeOf(KindString))
	assert.False(t, matches(t, predicate, entity{"code": "axb"}))
}

func TestBuildPredicate_LikeOnNonStringKind(t *testing.T) {
	predicate := build(t, filter("year", Like, "202"), TypeOf(KindInt))
	assert.True(t, matches(t, predicate, entity{"year": 2024}))
	assert.False(t, matches(t, predicate, entity{"year": 1999}))
}

func TestBuildPredicate_Contains(t *testing.T) {
	predicate := build(t, filter("tags", Contains, "business"), TypeOf(KindString))
	assert.True(t, matches(t, predicate, entity{"tags": "business,portable"}))
	assert.True(t, matches(t, predicate, entity{"tags": "portable,business"}))
	assert.True(t, matches(t, predicate, entity{"tags": "business"}))
	assert.False(t, matches(t, predicate, entity{"tags": "businesses,portable"}))
}

func TestBuildPredicate_ContainsRejectsNonString(t *testing.T) {
	_, err := BuildPredicate(filter("price", Contains, "1"), TypeOf(KindDecimal), NewJoinSet())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidParameter))
	assert.Contains(t, err.Error(), "CONTAINS operation only supported for String fields")
}

func TestBuildPredicate_In(t *testing.T) {
	predicate := build(t, filter("qty", In, "1, 2 ,3"), TypeOf(KindInt))
	assert.True(t, matches(t, predicate, entity{"qty": 2}))
	assert.False(t, matches(t, predicate, entity{"qty": 4}))

	_, err := BuildPredicate(filter("qty", In, "1,x"), TypeOf(KindInt), NewJoinSet())
	assert.True(t, errors.Is(err, ErrInvalidParameter))
}

func TestBuildPredicate_OrderedComparisons(t *testing.T) {
	cases := []struct {
		op       Operation
		value    int
		expected bool
	}{
		{GreaterThan, 30, true},
		{GreaterThan, 20, false},
		{GreaterThanEqual, 20, true},
		{LessThan, 20, false},
		{LessThan, 10, true},
		{LessThanEqual, 20, true},
	}
	for _, c := range cases {
		t.Run(c.op.String(), func(t *testing.T) {
			predicate := build(t, filter("price", c.op, "20"), TypeOf(KindInt))
			if c.expected {
				assert.True(t, matches(t, predicate, entity{"price": c.value}))
			} else {
				assert.False(t, matches(t, predicate, entity{"price": c.value}))
			}
		})
	}
}

func TestBuildPredicate_NumericCoercionFailure(t *testing.T) {
	_, err := BuildPredicate(filter("price", GreaterThan, "abc"), TypeOf(KindFloat64), NewJoinSet())
	require.Error(t, err)
	var paramErr *InvalidParameterError
	require.True(t, errors.As(err, &paramErr))
	assert.Equal(t, "price", paramErr.Field)
	assert.Equal(t, "double", paramErr.Expected)
}

func TestBuildPredicate_OrderedComparisonWithEmptyValueMatchesAll(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	builder := PredicateBuilder{Paths: NewJoinSet(), Logger: zap.New(core)}

	predicate, err := builder.Build(filter("price", GreaterThan, ""), TypeOf(KindInt))
	require.NoError(t, err)
	assert.Equal(t, s.Value(true), predicate)
	assert.True(t, matches(t, predicate, entity{"price": nil}))
	assert.Equal(t, 1, logs.Len())
}

func TestJoinSet_SingleJoinPerRelation(t *testing.T) {
	joins := NewJoinSet()
	f := ResolvedFilter{
		FilterDescriptor: FilterDescriptor{Field: "categories.name", Operation: Equals, RawValue: "Computers"},
		Path:             "categories.name",
		Relation:         RelationCollection,
	}
	_, err := BuildPredicate(f, TypeOf(KindString), joins)
	require.NoError(t, err)
	f.Operation = Like
	_, err = BuildPredicate(f, TypeOf(KindString), joins)
	require.NoError(t, err)
	_, err = joins.Path("vendor.name", RelationScalar)
	require.NoError(t, err)

	assert.Equal(t, []string{"categories"}, joins.Relations())
}

func TestJoinSet_RejectsInvalidSegments(t *testing.T) {
	for _, path := range []string{"categories..name", "name; DROP TABLE products", "1=1"} {
		_, err := NewJoinSet().Path(path, RelationScalar)
		assert.True(t, errors.Is(err, ErrInvalidField), path)
	}
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `50\% \_off\\`, EscapeLike(`50% _off\`))
}
