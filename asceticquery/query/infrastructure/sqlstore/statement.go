package sqlstore

import (
	"fmt"
	"strconv"
	"strings"

	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	spec "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/infrastructure"
)

// Statement is a compiled page query and its count query. Both take Params.
type Statement struct {
	Select string
	Count  string
	Params []any
}

// Compiler renders a query.Query against a Table.
type Compiler struct {
	table   Table
	dialect spec.Dialect
}

func NewCompiler(table Table, dialect spec.Dialect) Compiler {
	return Compiler{table: table, dialect: dialect}
}

// Compile renders the query. Joined rows are filtered in a subquery over
// the primary key so every entity is returned once and sort columns need
// not be selected.
func (c Compiler) Compile(q query.Query) (Statement, error) {
	if err := c.table.Validate(); err != nil {
		return Statement{}, err
	}
	schema := c.table.schema()
	root := c.table.alias()
	pk := root + "." + c.table.PrimaryKey
	from := c.table.Name + " AS " + root

	filterJoins := spec.NewJoinRegistry(schema)
	for _, rel := range q.Joins {
		if _, ok := filterJoins.Alias(rel); !ok {
			return Statement{}, fmt.Errorf("relation \"%s\" is not mapped for table \"%s\"", rel, c.table.Name)
		}
	}

	var where string
	var params []any
	if q.Predicate != nil {
		sql, p, err := spec.Compile(q.Predicate, spec.WithDialect(c.dialect), spec.WithJoins(filterJoins))
		if err != nil {
			return Statement{}, err
		}
		where, params = sql, p
	}

	sortJoins := spec.NewJoinRegistry(schema)
	orderBy, err := c.orderBy(q.Pageable.Sort, sortJoins, pk)
	if err != nil {
		return Statement{}, err
	}

	joined := len(filterJoins.Joins()) > 0

	var sel strings.Builder
	sel.WriteString("SELECT ")
	sel.WriteString(c.columns(root))
	sel.WriteString(" FROM ")
	sel.WriteString(from)
	if len(sortJoins.Joins()) > 0 {
		sel.WriteString(" ")
		sel.WriteString(sortJoins.LeftOuterSQL())
	}
	switch {
	case where == "":
	case joined:
		sel.WriteString(" WHERE " + pk + " IN (SELECT " + pk + " FROM " + from + " " + filterJoins.SQL() + " WHERE " + where + ")")
	default:
		sel.WriteString(" WHERE " + where)
	}
	sel.WriteString(" ORDER BY ")
	sel.WriteString(orderBy)
	sel.WriteString(" LIMIT ")
	sel.WriteString(strconv.Itoa(q.Pageable.PageSize))
	sel.WriteString(" OFFSET ")
	sel.WriteString(strconv.Itoa(q.Pageable.Offset()))

	var count strings.Builder
	if joined {
		count.WriteString("SELECT COUNT(DISTINCT " + pk + ") FROM " + from + " " + filterJoins.SQL())
	} else {
		count.WriteString("SELECT COUNT(*) FROM " + from)
	}
	if where != "" {
		count.WriteString(" WHERE " + where)
	}

	return Statement{Select: sel.String(), Count: count.String(), Params: params}, nil
}

func (c Compiler) columns(root string) string {
	if len(c.table.Columns) == 0 {
		return root + ".*"
	}
	cols := make([]string, len(c.table.Columns))
	for i, col := range c.table.Columns {
		cols[i] = root + "." + col
	}
	return strings.Join(cols, ", ")
}

// orderBy renders the sort orders followed by the primary key, so paging
// is stable. NULLs sort last ascending and first descending in every
// dialect.
func (c Compiler) orderBy(orders []query.SortOrder, joins *spec.JoinRegistry, pk string) (string, error) {
	parts := make([]string, 0, len(orders)+1)
	for _, o := range orders {
		column, err := c.sortColumn(o.Path, joins)
		if err != nil {
			return "", err
		}
		if o.Direction == query.Ascending {
			parts = append(parts, column+" ASC NULLS LAST")
		} else {
			parts = append(parts, column+" DESC NULLS FIRST")
		}
	}
	parts = append(parts, pk+" ASC")
	return strings.Join(parts, ", "), nil
}

func (c Compiler) sortColumn(path string, joins *spec.JoinRegistry) (string, error) {
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		if !spec.IsIdentifier(segment) {
			return "", fmt.Errorf("invalid sort path \"%s\"", path)
		}
	}
	if len(segments) == 1 {
		return c.table.alias() + "." + path, nil
	}
	if joins.Schema().IsRelational(segments[0]) {
		return "", fmt.Errorf("cannot sort by collection path \"%s\"", path)
	}
	alias, ok := joins.Alias(segments[0])
	if !ok {
		return "", fmt.Errorf("relation \"%s\" is not mapped for table \"%s\"", segments[0], c.table.Name)
	}
	return alias + "." + strings.Join(segments[1:], "."), nil
}
