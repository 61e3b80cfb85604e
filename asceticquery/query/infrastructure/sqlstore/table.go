package sqlstore

import (
	"fmt"

	spec "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/infrastructure"
)

const defaultRootAlias = "root"

// Table maps an entity to its root table and relations.
type Table struct {
	Name       string
	Alias      string
	PrimaryKey string
	// Columns are selected in order; empty selects every column.
	Columns   []string
	Relations *spec.SchemaRegistry
}

// NewTable creates a Table with an empty relation schema.
func NewTable(name, primaryKey string, columns ...string) Table {
	return Table{
		Name:       name,
		Alias:      defaultRootAlias,
		PrimaryKey: primaryKey,
		Columns:    columns,
		Relations:  spec.NewSchemaRegistry(name).WithParentAlias(defaultRootAlias),
	}
}

// WithAlias returns a copy of t with the root alias renamed. The copy gets
// its own relation schema, so t keeps rendering with its old alias.
func (t Table) WithAlias(alias string) Table {
	t.Alias = alias
	if t.Relations != nil {
		t.Relations = t.Relations.Clone().WithParentAlias(alias)
	}
	return t
}

func (t Table) schema() *spec.SchemaRegistry {
	if t.Relations != nil {
		return t.Relations
	}
	return spec.NewSchemaRegistry(t.Name).WithParentAlias(t.alias())
}

func (t Table) alias() string {
	if t.Alias == "" {
		return defaultRootAlias
	}
	return t.Alias
}

// Validate checks that every name rendered into SQL is a plain identifier.
func (t Table) Validate() error {
	names := append([]string{t.Name, t.alias(), t.PrimaryKey}, t.Columns...)
	for _, name := range names {
		if !spec.IsIdentifier(name) {
			return fmt.Errorf("invalid identifier \"%s\" in table \"%s\"", name, t.Name)
		}
	}
	return nil
}
