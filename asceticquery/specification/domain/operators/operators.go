package operators

type Operator string

const (
	// Comparison

	OperatorEq  Operator = "="
	OperatorGt  Operator = ">"
	OperatorLt  Operator = "<"
	OperatorGte Operator = ">="
	OperatorLte Operator = "<="
	OperatorNe  Operator = "!="

	// Pattern and membership

	OperatorLike Operator = "LIKE"
	OperatorIn   Operator = "IN"

	// Logical operators

	OperatorAnd Operator = "AND"
	OperatorOr  Operator = "OR"
	OperatorNot Operator = "NOT"

	// String

	OperatorConcat Operator = "||"
	OperatorLower  Operator = "LOWER"
	OperatorText   Operator = "TEXT"

	// Postfix

	OperatorIsNull    Operator = "IS NULL"
	OperatorIsNotNull Operator = "IS NOT NULL"
)

// IsFunction reports whether the operator is rendered as a function call
// rather than as a symbol placed before its operand.
func (o Operator) IsFunction() bool {
	return o == OperatorLower || o == OperatorText
}
