package operators

import (
	"bytes"
	"cmp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

func registerComparison[T cmp.Ordered](reg *OperatorRegistry) {
	registerCompare[T](reg, cmp.Compare[T])
}

// registerCompare registers the six comparison operators for T on top of a
// three-way compare function.
func registerCompare[T any](reg *OperatorRegistry, compare func(a, b T) int) {
	RegisterBinary[T, T](reg, OperatorEq, func(a, b T) (any, error) { return compare(a, b) == 0, nil })
	RegisterBinary[T, T](reg, OperatorNe, func(a, b T) (any, error) { return compare(a, b) != 0, nil })
	RegisterBinary[T, T](reg, OperatorGt, func(a, b T) (any, error) { return compare(a, b) > 0, nil })
	RegisterBinary[T, T](reg, OperatorGte, func(a, b T) (any, error) { return compare(a, b) >= 0, nil })
	RegisterBinary[T, T](reg, OperatorLt, func(a, b T) (any, error) { return compare(a, b) < 0, nil })
	RegisterBinary[T, T](reg, OperatorLte, func(a, b T) (any, error) { return compare(a, b) <= 0, nil })
}

func compareBool(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	default:
		return 1
	}
}

// NewDefaultRegistry creates a registry with SQL-compatible operators for
// every value kind the query engine produces.
func NewDefaultRegistry() *OperatorRegistry {
	reg := NewOperatorRegistry()

	// bool (false < true, as in PostgreSQL)
	registerCompare[bool](reg, compareBool)
	RegisterUnary[bool](reg, OperatorNot, func(a bool) (any, error) { return !a, nil })

	registerComparison[int](reg)
	registerComparison[int32](reg)
	registerComparison[int64](reg)
	registerComparison[float32](reg)
	registerComparison[float64](reg)

	// string
	registerComparison[string](reg)
	RegisterBinary[string, string](reg, OperatorLike, func(a, b string) (any, error) { return MatchLike(a, b), nil })
	RegisterBinary[string, string](reg, OperatorConcat, func(a, b string) (any, error) { return a + b, nil })
	RegisterUnary[string](reg, OperatorLower, func(a string) (any, error) { return strings.ToLower(a), nil })

	// time.Time (timestamp)
	registerCompare[time.Time](reg, func(a, b time.Time) int { return a.Compare(b) })

	registerCompare[uuid.UUID](reg, func(a, b uuid.UUID) int { return bytes.Compare(a[:], b[:]) })
	registerCompare[ulid.ULID](reg, func(a, b ulid.ULID) int { return a.Compare(b) })
	registerCompare[decimal.Decimal](reg, func(a, b decimal.Decimal) int { return a.Cmp(b) })

	return reg
}
