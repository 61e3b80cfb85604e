package specification

import (
	"errors"
	"fmt"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain/operators"
)

var ErrKeyNotFound = errors.New("key not found")

func NewEvaluateVisitor(context Context, registry *operators.OperatorRegistry) *EvaluateVisitor {
	return &EvaluateVisitor{
		Context:  context,
		registry: registry,
	}
}

type EvaluateVisitor struct {
	currentValue any
	stack        []Context
	registry     *operators.OperatorRegistry
	Context
}

func (v *EvaluateVisitor) push(ctx Context) {
	v.stack = append(v.stack, v.Context)
	v.Context = ctx
}

func (v *EvaluateVisitor) pop() {
	v.Context = v.stack[len(v.stack)-1]
	v.stack = v.stack[:len(v.stack)-1]
}

func (v EvaluateVisitor) CurrentValue() any {
	return v.currentValue
}

func (v *EvaluateVisitor) SetCurrentValue(val any) {
	v.currentValue = val
}

func (v *EvaluateVisitor) VisitGlobalScope(n GlobalScopeNode) error {
	v.push(v.Context)
	return nil
}

func (v *EvaluateVisitor) VisitObject(n ObjectNode) error {
	err := n.Parent().Accept(v)
	if err != nil {
		return err
	}
	obj, err := v.Context.Get(n.Name())
	v.pop()
	if err != nil {
		return err
	}
	// A missing related object (empty side of an outer join) yields NULL fields.
	if obj == nil {
		v.push(NullContext{})
		return nil
	}
	ctx, ok := obj.(Context)
	if !ok {
		return fmt.Errorf("\"%s\" is not an object, got %T", n.Name(), obj)
	}
	v.push(ctx)
	return nil
}

func (v *EvaluateVisitor) VisitField(n FieldNode) error {
	err := n.Object().Accept(v)
	if err != nil {
		return err
	}
	value, err := v.Context.Get(n.Name())
	v.pop()
	if err != nil {
		return err
	}
	v.SetCurrentValue(value)
	return nil
}

func (v *EvaluateVisitor) VisitValue(n ValueNode) error {
	v.SetCurrentValue(n.Value())
	return nil
}

func (v *EvaluateVisitor) VisitList(n ListNode) error {
	values := make([]any, 0, len(n.Items()))
	for _, item := range n.Items() {
		values = append(values, item.Value())
	}
	v.SetCurrentValue(values)
	return nil
}

func (v *EvaluateVisitor) VisitPrefix(n PrefixNode) error {
	err := n.Operand().Accept(v)
	if err != nil {
		return err
	}
	result, err := v.registry.ExecUnary(n.Operator(), v.CurrentValue())
	if err != nil {
		return err
	}
	v.SetCurrentValue(result)
	return nil
}

func (v *EvaluateVisitor) VisitPostfix(n PostfixNode) error {
	err := n.Operand().Accept(v)
	if err != nil {
		return err
	}
	result, err := v.registry.ExecUnary(n.Operator(), v.CurrentValue())
	if err != nil {
		return err
	}
	v.SetCurrentValue(result)
	return nil
}

func (v *EvaluateVisitor) VisitInfix(n InfixNode) error {
	err := n.Left().Accept(v)
	if err != nil {
		return err
	}
	left := v.CurrentValue()
	err = n.Right().Accept(v)
	if err != nil {
		return err
	}
	right := v.CurrentValue()
	result, err := v.registry.ExecBinary(left, n.Operator(), right)
	if err != nil {
		return err
	}
	v.SetCurrentValue(result)
	return nil
}

// Result returns the predicate outcome. NULL counts as not satisfied, the
// way a WHERE clause treats it.
func (v EvaluateVisitor) Result() (bool, error) {
	result := v.CurrentValue()
	if result == nil {
		return false, nil
	}
	resultTyped, ok := result.(bool)
	if !ok {
		return false, errors.New("the result is not a bool")
	}
	return resultTyped, nil
}

type Context interface {
	Get(string) (any, error)
}

// NullContext answers NULL for every key.
type NullContext struct{}

func (NullContext) Get(string) (any, error) {
	return nil, nil
}

// Evaluate runs exp against ctx with the given registry.
func Evaluate(ctx Context, exp Visitable, registry *operators.OperatorRegistry) (bool, error) {
	v := NewEvaluateVisitor(ctx, registry)
	if err := exp.Accept(v); err != nil {
		return false, err
	}
	return v.Result()
}
