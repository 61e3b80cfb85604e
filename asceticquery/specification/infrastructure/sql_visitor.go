package specification

import (
	"fmt"
	"regexp"
	"strings"

	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain/operators"
)

// Dialect renders the parts of SQL that differ between engines.
type Dialect interface {
	Name() string
	Placeholder(index int) string
}

type postgresqlDialect struct{}

func (postgresqlDialect) Name() string { return "postgres" }

func (postgresqlDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Placeholder(int) string { return "?" }

var (
	PostgreSQL Dialect = postgresqlDialect{}
	SQLite     Dialect = sqliteDialect{}
)

// DialectByName resolves "postgres"/"pgx" and "sqlite".
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	}
	return nil, fmt.Errorf("unknown SQL dialect \"%s\"", name)
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// IsIdentifier reports whether name can be rendered as an unquoted SQL
// identifier.
func IsIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Compile compiles AST to SQL. Option WithJoins makes relation paths render
// against join aliases.
func Compile(exp s.Visitable, opts ...SQLVisitorOption) (sql string, params []any, err error) {
	v := NewSQLVisitor(opts...)
	err = exp.Accept(v)
	if err != nil {
		return "", nil, err
	}
	return v.Result()
}

type SQLVisitorOption func(*SQLVisitor)

func PlaceholderIndex(index int) SQLVisitorOption {
	return func(v *SQLVisitor) {
		v.placeholderIndex = index
	}
}

func WithDialect(dialect Dialect) SQLVisitorOption {
	return func(v *SQLVisitor) {
		v.dialect = dialect
	}
}

// WithJoins sets the join registry used to resolve relation fields and the
// root table reference.
func WithJoins(joins *JoinRegistry) SQLVisitorOption {
	return func(v *SQLVisitor) {
		v.joins = joins
	}
}

func NewPostgresqlVisitor(opts ...SQLVisitorOption) *SQLVisitor {
	return NewSQLVisitor(append([]SQLVisitorOption{WithDialect(PostgreSQL)}, opts...)...)
}

func NewSQLVisitor(opts ...SQLVisitorOption) *SQLVisitor {
	v := &SQLVisitor{
		dialect:           PostgreSQL,
		precedenceMapping: make(map[string]int),
	}
	// https://www.postgresql.org/docs/14/sql-syntax-lexical.html#SQL-PRECEDENCE-TABLE
	v.setPrecedence(160, ". LEFT")
	v.setPrecedence(160, ":: LEFT")
	v.setPrecedence(150, "[ LEFT")
	v.setPrecedence(140, "+ RIGHT", "- RIGHT")
	v.setPrecedence(130, "^ LEFT")
	v.setPrecedence(120, "* LEFT", "/ LEFT", "% LEFT")
	v.setPrecedence(110, "+ LEFT", "- LEFT")
	// all other native and user-defined operators 👇️
	v.setPrecedence(100, "(any other operator) LEFT")
	v.setPrecedence(90, "BETWEEN NON", "IN NON", "LIKE NON", "ILIKE NON", "SIMILAR NON")
	v.setPrecedence(80, "< NON", "> NON", "= NON", "<= NON", ">= NON", "!= NON")
	v.setPrecedence(70, "IS NON", "ISNULL NON", "NOTNULL NON", "IS NULL NON", "IS NOT NULL NON")
	v.setPrecedence(60, "NOT RIGHT")
	v.setPrecedence(50, "AND LEFT")
	v.setPrecedence(40, "OR LEFT")
	for i := range opts {
		opts[i](v)
	}
	return v
}

type SQLVisitor struct {
	sql               string
	placeholderIndex  int
	parameters        []any
	precedence        int
	precedenceMapping map[string]int
	dialect           Dialect
	joins             *JoinRegistry
}

func (v SQLVisitor) getNodePrecedenceKey(n s.Operable) string {
	operator := n.Operator()
	return fmt.Sprintf("%s %s", operator, n.Associativity())
}

func (v SQLVisitor) setPrecedence(precedence int, operators ...string) {
	for _, op := range operators {
		v.precedenceMapping[op] = precedence
	}
}

func (v *SQLVisitor) visit(precedenceKey string, callable func() error) error {
	outerPrecedence := v.precedence
	innerPrecedence, ok := v.precedenceMapping[precedenceKey]
	if !ok {
		innerPrecedence, ok = v.precedenceMapping["(any other operator) LEFT"]
		if !ok {
			innerPrecedence = outerPrecedence
		}
	}
	v.precedence = innerPrecedence
	if innerPrecedence < outerPrecedence {
		v.sql += "("
	}
	err := callable()
	if err != nil {
		return err
	}
	if innerPrecedence < outerPrecedence {
		v.sql += ")"
	}
	v.precedence = outerPrecedence
	return nil
}

// visitGrouped renders callable with precedence reset, for function arguments.
func (v *SQLVisitor) visitGrouped(callable func() error) error {
	outerPrecedence := v.precedence
	v.precedence = 0
	err := callable()
	v.precedence = outerPrecedence
	return err
}

func (v *SQLVisitor) VisitGlobalScope(_ s.GlobalScopeNode) error {
	return nil
}

func (v *SQLVisitor) VisitObject(_ s.ObjectNode) error {
	return nil
}

func (v *SQLVisitor) VisitField(n s.FieldNode) error {
	path := s.ExtractFieldPath(n)
	for _, segment := range path {
		if !IsIdentifier(segment) {
			return fmt.Errorf("invalid identifier \"%s\"", segment)
		}
	}
	if v.joins == nil || v.joins.schema == nil {
		v.sql += strings.Join(path, ".")
		return nil
	}
	if len(path) == 1 {
		v.sql += v.joins.schema.GetParentRef() + "." + path[0]
		return nil
	}
	alias, ok := v.joins.Alias(path[0])
	if !ok {
		return fmt.Errorf("\"%s\" is not a registered relation of \"%s\"", path[0], v.joins.schema.ParentTable)
	}
	v.sql += alias + "." + strings.Join(path[1:], ".")
	return nil
}

func (v *SQLVisitor) addParameter(value any) string {
	v.parameters = append(v.parameters, value)
	return v.dialect.Placeholder(v.placeholderIndex + len(v.parameters))
}

// VisitValue parameterizes values; booleans are rendered as literals so that
// a bare TRUE is a valid predicate in every dialect.
func (v *SQLVisitor) VisitValue(n s.ValueNode) error {
	if b, ok := n.Value().(bool); ok {
		if b {
			v.sql += "TRUE"
		} else {
			v.sql += "FALSE"
		}
		return nil
	}
	v.sql += v.addParameter(n.Value())
	return nil
}

func (v *SQLVisitor) VisitList(n s.ListNode) error {
	placeholders := make([]string, 0, len(n.Items()))
	for _, item := range n.Items() {
		placeholders = append(placeholders, v.addParameter(item.Value()))
	}
	v.sql += "(" + strings.Join(placeholders, ", ") + ")"
	return nil
}

func (v *SQLVisitor) VisitPrefix(node s.PrefixNode) error {
	operator := node.Operator()
	if operator.IsFunction() {
		return v.visitGrouped(func() error {
			return v.visitFunction(operator, node.Operand())
		})
	}
	precedenceKey := v.getNodePrecedenceKey(node)
	return v.visit(precedenceKey, func() error {
		v.sql += fmt.Sprintf("%s ", operator)
		return node.Operand().Accept(v)
	})
}

func (v *SQLVisitor) visitFunction(operator operators.Operator, operand s.Visitable) error {
	switch operator {
	case operators.OperatorLower:
		v.sql += "lower("
		if err := operand.Accept(v); err != nil {
			return err
		}
		v.sql += ")"
	case operators.OperatorText:
		v.sql += "CAST("
		if err := operand.Accept(v); err != nil {
			return err
		}
		v.sql += " AS TEXT)"
	default:
		return fmt.Errorf("function \"%s\" is not supported", operator)
	}
	return nil
}

func (v *SQLVisitor) VisitInfix(n s.InfixNode) error {
	precedenceKey := v.getNodePrecedenceKey(n)
	return v.visit(precedenceKey, func() error {
		err := n.Left().Accept(v)
		if err != nil {
			return err
		}
		v.sql += fmt.Sprintf(" %s ", n.Operator())
		err = n.Right().Accept(v)
		if err != nil {
			return err
		}
		if n.Operator() == operators.OperatorLike {
			v.sql += ` ESCAPE '\'`
		}
		return nil
	})
}

func (v *SQLVisitor) VisitPostfix(node s.PostfixNode) error {
	precedenceKey := v.getNodePrecedenceKey(node)
	return v.visit(precedenceKey, func() error {
		err := node.Operand().Accept(v)
		if err != nil {
			return err
		}
		operator := node.Operator()
		v.sql += fmt.Sprintf(" %s", operator)
		return nil
	})
}

func (v SQLVisitor) Result() (sql string, params []any, err error) {
	return v.sql, v.parameters, nil
}
