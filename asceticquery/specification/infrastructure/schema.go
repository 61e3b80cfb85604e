package specification

import (
	"fmt"
	"strings"

	"github.com/jinzhu/inflection"
)

// RelationKind defines how a related object is reached from the root table
type RelationKind int

const (
	// RelationCollection is a one-to-many/many-to-many relation, reached by LEFT OUTER JOIN
	RelationCollection RelationKind = iota
	// RelationReference is a many-to-one relation, reached by INNER JOIN
	RelationReference
)

// ForeignKeyPair represents a single FK column mapping
type ForeignKeyPair struct {
	// ChildColumn is the column in the child table (e.g., "product_id", "tenant_id")
	ChildColumn string
	// ParentColumn is the column in the parent table (e.g., "id", "tenant_id")
	ParentColumn string
}

// RelationMapping defines how a relation field maps to storage
type RelationMapping struct {
	Kind RelationKind

	// Table is the name of the related table
	Table string

	// ForeignKeys defines the FK relationship (supports composite keys)
	// For simple FK: []ForeignKeyPair{{ChildColumn: "product_id", ParentColumn: "id"}}
	// For composite: []ForeignKeyPair{
	//     {ChildColumn: "tenant_id", ParentColumn: "tenant_id"},
	//     {ChildColumn: "product_id", ParentColumn: "id"},
	// }
	ForeignKeys []ForeignKeyPair

	// Alias is optional custom alias prefix for the join (defaults to singularized field name)
	Alias string
}

// SchemaRegistry holds relation mappings for a specific root table
type SchemaRegistry struct {
	// ParentTable is the main table name (e.g., "products")
	ParentTable string

	// ParentAlias is the alias used for parent table in queries (e.g., "p" for "products AS p")
	ParentAlias string

	relations map[string]RelationMapping
}

// NewSchemaRegistry creates a new SchemaRegistry for a parent table
func NewSchemaRegistry(parentTable string) *SchemaRegistry {
	return &SchemaRegistry{
		ParentTable: parentTable,
		ParentAlias: "",
		relations:   make(map[string]RelationMapping),
	}
}

// WithParentAlias sets the parent table alias
func (r *SchemaRegistry) WithParentAlias(alias string) *SchemaRegistry {
	r.ParentAlias = alias
	return r
}

// Clone returns a copy that can be changed without affecting r.
func (r *SchemaRegistry) Clone() *SchemaRegistry {
	c := &SchemaRegistry{
		ParentTable: r.ParentTable,
		ParentAlias: r.ParentAlias,
		relations:   make(map[string]RelationMapping, len(r.relations)),
	}
	for name, mapping := range r.relations {
		mapping.ForeignKeys = append([]ForeignKeyPair(nil), mapping.ForeignKeys...)
		c.relations[name] = mapping
	}
	return c
}

// RegisterRelational registers a collection stored in a separate table with simple FK
func (r *SchemaRegistry) RegisterRelational(fieldName, table, childColumn, parentColumn string) *SchemaRegistry {
	r.relations[fieldName] = RelationMapping{
		Kind:  RelationCollection,
		Table: table,
		ForeignKeys: []ForeignKeyPair{
			{ChildColumn: childColumn, ParentColumn: parentColumn},
		},
	}
	return r
}

// RegisterRelationalComposite registers a collection with composite FK
func (r *SchemaRegistry) RegisterRelationalComposite(fieldName, table string, foreignKeys []ForeignKeyPair) *SchemaRegistry {
	r.relations[fieldName] = RelationMapping{
		Kind:        RelationCollection,
		Table:       table,
		ForeignKeys: foreignKeys,
	}
	return r
}

// RegisterReference registers a many-to-one relation; the FK column lives in
// the parent table and points at referencedColumn of the referenced table.
func (r *SchemaRegistry) RegisterReference(fieldName, table, parentColumn, referencedColumn string) *SchemaRegistry {
	r.relations[fieldName] = RelationMapping{
		Kind:  RelationReference,
		Table: table,
		ForeignKeys: []ForeignKeyPair{
			{ChildColumn: referencedColumn, ParentColumn: parentColumn},
		},
	}
	return r
}

// Register registers a relation with full mapping configuration
func (r *SchemaRegistry) Register(fieldName string, mapping RelationMapping) *SchemaRegistry {
	r.relations[fieldName] = mapping
	return r
}

// Get returns the relation mapping for a field name
func (r *SchemaRegistry) Get(fieldName string) (RelationMapping, bool) {
	mapping, ok := r.relations[fieldName]
	return mapping, ok
}

// IsRelational returns true if the field is a collection stored in a separate table
func (r *SchemaRegistry) IsRelational(fieldName string) bool {
	mapping, ok := r.relations[fieldName]
	return ok && mapping.Kind == RelationCollection
}

// GetParentRef returns the reference to parent table (alias or table name)
func (r *SchemaRegistry) GetParentRef() string {
	if r.ParentAlias != "" {
		return r.ParentAlias
	}
	return r.ParentTable
}

// Join is one rendered join of a relation.
type Join struct {
	Field   string
	Alias   string
	Mapping RelationMapping
}

// SQL renders the join clause: LEFT OUTER JOIN for collections, INNER JOIN
// for references.
func (j Join) SQL(parentRef string) string {
	if j.Mapping.Kind == RelationReference {
		return j.render("INNER JOIN", parentRef)
	}
	return j.render("LEFT OUTER JOIN", parentRef)
}

// LeftOuterSQL renders the join as LEFT OUTER JOIN whatever the relation kind.
func (j Join) LeftOuterSQL(parentRef string) string {
	return j.render("LEFT OUTER JOIN", parentRef)
}

func (j Join) render(joinType, parentRef string) string {
	var b strings.Builder
	b.WriteString(joinType)
	b.WriteString(" ")
	b.WriteString(j.Mapping.Table)
	b.WriteString(" AS ")
	b.WriteString(j.Alias)
	b.WriteString(" ON ")
	for i, fk := range j.Mapping.ForeignKeys {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteString(j.Alias)
		b.WriteString(".")
		b.WriteString(fk.ChildColumn)
		b.WriteString(" = ")
		b.WriteString(parentRef)
		b.WriteString(".")
		b.WriteString(fk.ParentColumn)
	}
	return b.String()
}

// JoinRegistry hands out one alias per relation field and remembers the
// order in which relations were first used.
type JoinRegistry struct {
	schema  *SchemaRegistry
	aliases map[string]string
	joins   []Join
}

func NewJoinRegistry(schema *SchemaRegistry) *JoinRegistry {
	return &JoinRegistry{
		schema:  schema,
		aliases: make(map[string]string),
	}
}

// Alias returns the join alias for a relation field, adding the join on
// first use. ok is false when the field is not a registered relation.
func (r *JoinRegistry) Alias(fieldName string) (alias string, ok bool) {
	if alias, ok := r.aliases[fieldName]; ok {
		return alias, true
	}
	if r.schema == nil {
		return "", false
	}
	mapping, ok := r.schema.Get(fieldName)
	if !ok {
		return "", false
	}
	prefix := mapping.Alias
	if prefix == "" {
		prefix = strings.ToLower(inflection.Singular(fieldName))
	}
	alias = fmt.Sprintf("%s_%d", prefix, len(r.joins)+1)
	r.aliases[fieldName] = alias
	r.joins = append(r.joins, Join{Field: fieldName, Alias: alias, Mapping: mapping})
	return alias, true
}

// Joins returns the joins in first-use order.
func (r *JoinRegistry) Joins() []Join {
	return r.joins
}

// SQL renders all joins separated by spaces.
func (r *JoinRegistry) SQL() string {
	return r.render(Join.SQL)
}

// LeftOuterSQL renders all joins as LEFT OUTER JOIN.
func (r *JoinRegistry) LeftOuterSQL() string {
	return r.render(Join.LeftOuterSQL)
}

func (r *JoinRegistry) render(fn func(Join, string) string) string {
	parts := make([]string, 0, len(r.joins))
	for _, j := range r.joins {
		parts = append(parts, fn(j, r.schema.GetParentRef()))
	}
	return strings.Join(parts, " ")
}

// Schema returns the schema the registry resolves relations against.
func (r *JoinRegistry) Schema() *SchemaRegistry {
	return r.schema
}
