package specification

import (
	"strings"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain/operators"
)

type Associativity string

const (
	LeftAssociative  Associativity = "LEFT"
	RightAssociative Associativity = "RIGHT"
	NonAssociative   Associativity = "NON"
)

type Operable interface {
	Associativity() Associativity
	Operator() operators.Operator
}

type Visitable interface {
	Accept(Visitor) error
}

type Visitor interface {
	VisitGlobalScope(GlobalScopeNode) error
	VisitObject(ObjectNode) error
	VisitField(FieldNode) error
	VisitValue(ValueNode) error
	VisitList(ListNode) error
	VisitPrefix(PrefixNode) error
	VisitInfix(InfixNode) error
	VisitPostfix(PostfixNode) error
}

func Value(value any) ValueNode {
	return ValueNode{
		value: value,
	}
}

type ValueNode struct {
	value any
}

func (n ValueNode) Value() any {
	return n.value
}

func (n ValueNode) Accept(v Visitor) error {
	return v.VisitValue(n)
}

// List is the right-hand side of IN.
func List(values ...any) ListNode {
	items := make([]ValueNode, len(values))
	for i := range values {
		items[i] = Value(values[i])
	}
	return ListNode{items: items}
}

type ListNode struct {
	items []ValueNode
}

func (n ListNode) Items() []ValueNode {
	return n.items
}

func (n ListNode) Accept(v Visitor) error {
	return v.VisitList(n)
}

func Not(operand Visitable) PrefixNode {
	return PrefixNode{
		operator:      operators.OperatorNot,
		operand:       operand,
		associativity: RightAssociative,
	}
}

// Lower folds a string operand to lower case.
func Lower(operand Visitable) PrefixNode {
	return PrefixNode{
		operator:      operators.OperatorLower,
		operand:       operand,
		associativity: RightAssociative,
	}
}

// Text casts any operand to its text representation.
func Text(operand Visitable) PrefixNode {
	return PrefixNode{
		operator:      operators.OperatorText,
		operand:       operand,
		associativity: RightAssociative,
	}
}

func NewPrefixNode(operator operators.Operator, operand Visitable, associativity Associativity) PrefixNode {
	return PrefixNode{
		operator:      operator,
		operand:       operand,
		associativity: associativity,
	}
}

type PrefixNode struct {
	operator      operators.Operator
	operand       Visitable
	associativity Associativity
}

func (n PrefixNode) Operand() Visitable {
	return n.operand
}
func (n PrefixNode) Operator() operators.Operator {
	return n.operator
}
func (n PrefixNode) Associativity() Associativity {
	return n.associativity
}
func (n PrefixNode) Accept(v Visitor) error {
	return v.VisitPrefix(n)
}

func Equal(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorEq, right, NonAssociative)
}

func NotEqual(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorNe, right, NonAssociative)
}

func GreaterThan(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorGt, right, NonAssociative)
}

func GreaterThanEqual(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorGte, right, NonAssociative)
}

func LessThan(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorLt, right, NonAssociative)
}

func LessThanEqual(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorLte, right, NonAssociative)
}

// Like matches left against a LIKE pattern; backslash escapes % and _.
func Like(left, pattern Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorLike, pattern, NonAssociative)
}

func In(left Visitable, values ListNode) InfixNode {
	return NewInfixNode(left, operators.OperatorIn, values, NonAssociative)
}

func Concat(left, right Visitable) InfixNode {
	return NewInfixNode(left, operators.OperatorConcat, right, LeftAssociative)
}

func And(left Visitable, rights ...Visitable) InfixNode {
	left, right := foldRights(And, left, rights...)
	return NewInfixNode(left, operators.OperatorAnd, right, LeftAssociative)
}

func Or(left Visitable, rights ...Visitable) InfixNode {
	left, right := foldRights(Or, left, rights...)
	return NewInfixNode(left, operators.OperatorOr, right, LeftAssociative)
}

// AllOf joins operands with AND. It returns nil for no operands and the
// operand itself for one.
func AllOf(operands ...Visitable) Visitable {
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return And(operands[0], operands[1:]...)
	}
}

// AnyOf joins operands with OR, with the same edge cases as AllOf.
func AnyOf(operands ...Visitable) Visitable {
	switch len(operands) {
	case 0:
		return nil
	case 1:
		return operands[0]
	default:
		return Or(operands[0], operands[1:]...)
	}
}

func foldRights(
	aCallable func(Visitable, ...Visitable) InfixNode,
	aLeft Visitable,
	aRights ...Visitable,
) (left, right Visitable) {
	for len(aRights) > 1 {
		aLeft = aCallable(aLeft, aRights[0])
		aRights = aRights[1:]
	}
	return aLeft, aRights[0]
}

func NewInfixNode(left Visitable, operator operators.Operator, right Visitable, associativity Associativity) InfixNode {
	return InfixNode{
		left:          left,
		operator:      operator,
		right:         right,
		associativity: associativity,
	}
}

type InfixNode struct {
	left          Visitable
	operator      operators.Operator
	right         Visitable
	associativity Associativity
}

func (n InfixNode) Left() Visitable {
	return n.left
}

func (n InfixNode) Operator() operators.Operator {
	return n.operator
}

func (n InfixNode) Right() Visitable {
	return n.right
}

func (n InfixNode) Associativity() Associativity {
	return n.associativity
}

func (n InfixNode) Accept(v Visitor) error {
	return v.VisitInfix(n)
}

func IsNull(operand Visitable) PostfixNode {
	return NewPostfixNode(operand, operators.OperatorIsNull, NonAssociative)
}

func IsNotNull(operand Visitable) PostfixNode {
	return NewPostfixNode(operand, operators.OperatorIsNotNull, NonAssociative)
}

func NewPostfixNode(operand Visitable, operator operators.Operator, associativity Associativity) PostfixNode {
	return PostfixNode{
		operand:       operand,
		operator:      operator,
		associativity: associativity,
	}
}

type PostfixNode struct {
	operand       Visitable
	operator      operators.Operator
	associativity Associativity
}

func (n PostfixNode) Operand() Visitable {
	return n.operand
}

func (n PostfixNode) Operator() operators.Operator {
	return n.operator
}

func (n PostfixNode) Associativity() Associativity {
	return n.associativity
}

func (n PostfixNode) Accept(v Visitor) error {
	return v.VisitPostfix(n)
}

type EmptiableObject interface {
	Visitable
	Parent() EmptiableObject
	Name() string
	IsRoot() bool
}

func GlobalScope() GlobalScopeNode {
	return GlobalScopeNode{}
}

type GlobalScopeNode struct{}

func (n GlobalScopeNode) Parent() EmptiableObject {
	return n
}

func (n GlobalScopeNode) Name() string {
	return "Empty"
}

func (n GlobalScopeNode) IsRoot() bool {
	return true
}
func (n GlobalScopeNode) Accept(v Visitor) error {
	return v.VisitGlobalScope(n)
}

func Object(parent EmptiableObject, name string) ObjectNode {
	return ObjectNode{
		parent: parent,
		name:   name,
	}
}

type ObjectNode struct {
	parent EmptiableObject
	name   string
}

func (n ObjectNode) Parent() EmptiableObject {
	return n.parent
}

func (n ObjectNode) Name() string {
	return n.name
}

func (n ObjectNode) IsRoot() bool {
	return false
}

func (n ObjectNode) Accept(v Visitor) error {
	return v.VisitObject(n)
}

func Field(object EmptiableObject, name string) FieldNode {
	return FieldNode{
		object: object,
		name:   name,
	}
}

// FieldPath creates a Field node from a dotted path string.
// Example: FieldPath("user.name") creates Object("user") with Field("name").
func FieldPath(path string) FieldNode {
	parts := strings.Split(path, ".")
	var object EmptiableObject = GlobalScope()
	for _, part := range parts[:len(parts)-1] {
		object = Object(object, part)
	}
	return Field(object, parts[len(parts)-1])
}

type FieldNode struct {
	object EmptiableObject
	name   string
}

func (n FieldNode) Name() string {
	return n.name
}

func (n FieldNode) Object() EmptiableObject {
	return n.object
}

func (n FieldNode) Accept(v Visitor) error {
	return v.VisitField(n)
}

func ExtractFieldPath(n FieldNode) []string {
	path := []string{n.Name()}
	var obj EmptiableObject = n.Object()
	for !obj.IsRoot() {
		path = append([]string{obj.Name()}, path...)
		obj = obj.Parent()
	}
	return path
}
