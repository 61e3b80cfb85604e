package operators

import (
	"fmt"
	"reflect"
	"time"
)

type BinaryOp func(left, right any) (any, error)
type UnaryOp func(operand any) (any, error)

type binaryKey struct {
	left  reflect.Type
	op    Operator
	right reflect.Type
}

type unaryKey struct {
	op      Operator
	operand reflect.Type
}

type OperatorRegistry struct {
	binary map[binaryKey]BinaryOp
	unary  map[unaryKey]UnaryOp
}

func NewOperatorRegistry() *OperatorRegistry {
	return &OperatorRegistry{
		binary: make(map[binaryKey]BinaryOp),
		unary:  make(map[unaryKey]UnaryOp),
	}
}

func RegisterBinary[L, R any](reg *OperatorRegistry, op Operator, fn func(L, R) (any, error)) {
	var zeroL L
	var zeroR R
	key := binaryKey{
		left:  reflect.TypeOf(zeroL),
		op:    op,
		right: reflect.TypeOf(zeroR),
	}
	reg.binary[key] = func(left, right any) (any, error) {
		return fn(left.(L), right.(R))
	}
}

func RegisterUnary[T any](reg *OperatorRegistry, op Operator, fn func(T) (any, error)) {
	var zero T
	key := unaryKey{
		op:      op,
		operand: reflect.TypeOf(zero),
	}
	reg.unary[key] = func(operand any) (any, error) {
		return fn(operand.(T))
	}
}

// ExecBinary executes a binary operator with SQL NULL semantics.
func (r *OperatorRegistry) ExecBinary(left any, op Operator, right any) (any, error) {
	// Three-valued logic for AND/OR
	if op == OperatorAnd {
		return execAnd(left, right)
	}
	if op == OperatorOr {
		return execOr(left, right)
	}
	if op == OperatorIn {
		return r.execIn(left, right)
	}

	// NULL propagation for all other binary operators
	if left == nil || right == nil {
		return nil, nil
	}

	fn, err := r.lookupBinary(left, op, right)
	if err != nil {
		return nil, err
	}
	return fn(left, right)
}

// ExecUnary executes a unary operator with SQL NULL semantics.
func (r *OperatorRegistry) ExecUnary(op Operator, operand any) (any, error) {
	// IS NULL / IS NOT NULL: definite result for any value including NULL
	if op == OperatorIsNull {
		return operand == nil, nil
	}
	if op == OperatorIsNotNull {
		return operand != nil, nil
	}

	// NULL propagation
	if operand == nil {
		return nil, nil
	}

	if op == OperatorText {
		return textOf(operand), nil
	}

	fn, err := r.lookupUnary(op, operand)
	if err != nil {
		return nil, err
	}
	return fn(operand)
}

func (r *OperatorRegistry) lookupBinary(left any, op Operator, right any) (BinaryOp, error) {
	key := binaryKey{
		left:  reflect.TypeOf(left),
		op:    op,
		right: reflect.TypeOf(right),
	}
	fn, ok := r.binary[key]
	if ok {
		return fn, nil
	}

	// Fallback: check if operands implement Value Object interfaces
	if fallback := interfaceFallback(left, op, right); fallback != nil {
		return fallback, nil
	}

	return nil, fmt.Errorf("operator \"%s\" is not supported for %T and %T", op, left, right)
}

func interfaceFallback(left any, op Operator, right any) BinaryOp {
	switch op {
	case OperatorEq, OperatorNe:
		if _, ok := left.(EqualOperand); !ok {
			return nil
		}
		return func(left, right any) (any, error) {
			r, ok := right.(EqualOperand)
			if !ok {
				return nil, fmt.Errorf("right operand %T does not implement EqualOperand", right)
			}
			eq := left.(EqualOperand).Equal(r)
			if op == OperatorNe {
				return !eq, nil
			}
			return eq, nil
		}
	case OperatorGt:
		if _, ok := left.(GreaterThanOperand); ok {
			return func(left, right any) (any, error) {
				r, ok := right.(GreaterThanOperand)
				if !ok {
					return nil, fmt.Errorf("right operand %T does not implement GreaterThanOperand", right)
				}
				return left.(GreaterThanOperand).GreaterThan(r), nil
			}
		}
	case OperatorGte:
		if _, ok := left.(GreaterThanEqualOperand); ok {
			return func(left, right any) (any, error) {
				r, ok := right.(GreaterThanEqualOperand)
				if !ok {
					return nil, fmt.Errorf("right operand %T does not implement GreaterThanEqualOperand", right)
				}
				return left.(GreaterThanEqualOperand).GreaterThanEqual(r), nil
			}
		}
	case OperatorLt:
		if _, ok := left.(LessThanOperand); ok {
			return func(left, right any) (any, error) {
				r, ok := right.(LessThanOperand)
				if !ok {
					return nil, fmt.Errorf("right operand %T does not implement LessThanOperand", right)
				}
				return left.(LessThanOperand).LessThan(r), nil
			}
		}
	case OperatorLte:
		if _, ok := left.(LessThanEqualOperand); ok {
			return func(left, right any) (any, error) {
				r, ok := right.(LessThanEqualOperand)
				if !ok {
					return nil, fmt.Errorf("right operand %T does not implement LessThanEqualOperand", right)
				}
				return left.(LessThanEqualOperand).LessThanEqual(r), nil
			}
		}
	}
	return nil
}

func (r *OperatorRegistry) lookupUnary(op Operator, operand any) (UnaryOp, error) {
	key := unaryKey{
		op:      op,
		operand: reflect.TypeOf(operand),
	}
	fn, ok := r.unary[key]
	if !ok {
		return nil, fmt.Errorf("operator \"%s\" is not supported for %T", op, operand)
	}
	return fn, nil
}

// IN over a list: TRUE on the first equal item, NULL if no item matched but
// some comparison was NULL, FALSE otherwise.
func (r *OperatorRegistry) execIn(left, right any) (any, error) {
	items, ok := right.([]any)
	if !ok {
		return nil, fmt.Errorf("operator \"IN\" requires a list, got %T", right)
	}
	if left == nil {
		return nil, nil
	}
	sawNull := false
	for _, item := range items {
		eq, err := r.ExecBinary(left, OperatorEq, item)
		if err != nil {
			return nil, err
		}
		if eq == nil {
			sawNull = true
			continue
		}
		if eq.(bool) {
			return true, nil
		}
	}
	if sawNull {
		return nil, nil
	}
	return false, nil
}

// Three-valued logic: NULL AND FALSE = FALSE, NULL AND TRUE = NULL
func execAnd(left, right any) (any, error) {
	if left == nil {
		if val, ok := right.(bool); ok && !val {
			return false, nil
		}
		return nil, nil
	}
	if right == nil {
		if val, ok := left.(bool); ok && !val {
			return false, nil
		}
		return nil, nil
	}
	l, ok := left.(bool)
	if !ok {
		return nil, fmt.Errorf("operator \"AND\" requires bool, got %T", left)
	}
	r, ok := right.(bool)
	if !ok {
		return nil, fmt.Errorf("operator \"AND\" requires bool, got %T", right)
	}
	return l && r, nil
}

// Three-valued logic: NULL OR TRUE = TRUE, NULL OR FALSE = NULL
func execOr(left, right any) (any, error) {
	if left == nil {
		if val, ok := right.(bool); ok && val {
			return true, nil
		}
		return nil, nil
	}
	if right == nil {
		if val, ok := left.(bool); ok && val {
			return true, nil
		}
		return nil, nil
	}
	l, ok := left.(bool)
	if !ok {
		return nil, fmt.Errorf("operator \"OR\" requires bool, got %T", left)
	}
	r, ok := right.(bool)
	if !ok {
		return nil, fmt.Errorf("operator \"OR\" requires bool, got %T", right)
	}
	return l || r, nil
}

func textOf(operand any) string {
	switch v := operand.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
