package specification

import (
	"errors"
	"testing"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain/operators"
)

func TestValueNode(t *testing.T) {
	valNode := Value(42)
	if valNode.Value() != 42 {
		t.Errorf("Expected value 42, got %v", valNode.Value())
	}
}

func TestEqualNode(t *testing.T) {
	left := Value(5)
	right := Value(5)
	eqNode := Equal(left, right)

	if eqNode.Left() != left {
		t.Error("Equal node left operand mismatch")
	}
	if eqNode.Right() != right {
		t.Error("Equal node right operand mismatch")
	}
}

func TestAndNodeFoldsLeft(t *testing.T) {
	a := Value(true)
	b := Value(false)
	c := Value(true)

	// (a AND b) AND c
	andNode := And(a, b, c)

	inner, ok := andNode.Left().(InfixNode)
	if !ok {
		t.Fatalf("Expected nested infix on the left, got %T", andNode.Left())
	}
	if inner.Left() != a || inner.Right() != b {
		t.Error("Inner AND operands mismatch")
	}
	if andNode.Right() != c {
		t.Error("Outer AND right operand mismatch")
	}
}

func TestAllOfAnyOf(t *testing.T) {
	if AllOf() != nil {
		t.Error("Expected nil for empty AllOf")
	}
	a := Value(true)
	if AllOf(a) != a {
		t.Error("Expected single operand to be returned as is")
	}
	or, ok := AnyOf(a, Value(false)).(InfixNode)
	if !ok || or.Operator() != operators.OperatorOr {
		t.Errorf("Expected OR node, got %v", or)
	}
}

func TestFieldPath(t *testing.T) {
	field := FieldPath("categories.name")
	path := ExtractFieldPath(field)
	if len(path) != 2 || path[0] != "categories" || path[1] != "name" {
		t.Errorf("Expected [categories name], got %v", path)
	}

	field = FieldPath("name")
	if !field.Object().IsRoot() {
		t.Error("Expected root object for a plain field")
	}
}

type testContext map[string]any

func (c testContext) Get(key string) (any, error) {
	val, ok := c[key]
	if !ok {
		return nil, ErrKeyNotFound
	}
	return val, nil
}

func evaluate(t *testing.T, ctx Context, exp Visitable) bool {
	t.Helper()
	result, err := Evaluate(ctx, exp, operators.NewDefaultRegistry())
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	return result
}

func TestEvaluateComparison(t *testing.T) {
	ctx := testContext{"age": 30, "name": "Laptop Pro"}

	if !evaluate(t, ctx, GreaterThanEqual(FieldPath("age"), Value(18))) {
		t.Error("Expected age >= 18")
	}
	if evaluate(t, ctx, Not(Equal(FieldPath("age"), Value(30)))) {
		t.Error("Expected NOT age = 30 to be false")
	}
}

func TestEvaluateLikeOnLowered(t *testing.T) {
	ctx := testContext{"name": "Laptop Pro"}

	exp := Like(Lower(FieldPath("name")), Value("%top%"))
	if !evaluate(t, ctx, exp) {
		t.Error("Expected lower(name) to match the top pattern")
	}

	ctx = testContext{"name": "Desktop PC"}
	if !evaluate(t, ctx, exp) {
		t.Error("Expected lower(name) of Desktop PC to match the top pattern")
	}

	ctx = testContext{"name": "Mouse"}
	if evaluate(t, ctx, exp) {
		t.Error("Expected Mouse not to match the top pattern")
	}
}

func TestEvaluateIn(t *testing.T) {
	ctx := testContext{"status": "active"}
	if !evaluate(t, ctx, In(FieldPath("status"), List("new", "active"))) {
		t.Error("Expected status IN (new, active)")
	}
	if evaluate(t, ctx, In(FieldPath("status"), List("closed"))) {
		t.Error("Expected status not IN (closed)")
	}
}

func TestEvaluateConcatMembership(t *testing.T) {
	ctx := testContext{"tags": "business,portable"}
	exp := Like(Concat(Concat(Value(","), FieldPath("tags")), Value(",")), Value("%,business,%"))
	if !evaluate(t, ctx, exp) {
		t.Error("Expected token membership to match")
	}
}

func TestEvaluateNestedObject(t *testing.T) {
	ctx := testContext{"user": testContext{"name": "John"}}
	if !evaluate(t, ctx, Equal(FieldPath("user.name"), Value("John"))) {
		t.Error("Expected user.name = John")
	}
}

func TestEvaluateNullObjectYieldsNull(t *testing.T) {
	ctx := testContext{"user": nil}

	if evaluate(t, ctx, Equal(FieldPath("user.name"), Value("John"))) {
		t.Error("Expected NULL comparison to be unsatisfied")
	}
	if !evaluate(t, ctx, IsNull(FieldPath("user.name"))) {
		t.Error("Expected user.name IS NULL")
	}
}

func TestEvaluateNonObject(t *testing.T) {
	ctx := testContext{"user": "John"}
	_, err := Evaluate(ctx, Equal(FieldPath("user.name"), Value("John")), operators.NewDefaultRegistry())
	if err == nil {
		t.Fatal("Expected error for a scalar used as object")
	}
}

func TestEvaluateMissingKey(t *testing.T) {
	ctx := testContext{}
	_, err := Evaluate(ctx, Equal(FieldPath("missing"), Value(1)), operators.NewDefaultRegistry())
	if !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("Expected ErrKeyNotFound, got %v", err)
	}
}
