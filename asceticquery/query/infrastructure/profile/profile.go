// Package profile loads per-entity query profiles from YAML. A profile
// names what a client may filter, sort and search on, and how the entity
// is laid out in SQL.
package profile

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	query "github.com/krew-solutions/ascetic-query-go/asceticquery/query/domain"
	"github.com/krew-solutions/ascetic-query-go/asceticquery/query/infrastructure/sqlstore"
	spec "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/infrastructure"
)

type ForeignKey struct {
	Child  string `yaml:"child"`
	Parent string `yaml:"parent"`
}

// Collection is a one-to-many relation stored in a child table.
type Collection struct {
	Name        string       `yaml:"name"`
	Table       string       `yaml:"table"`
	Alias       string       `yaml:"alias"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys"`
}

// Reference is a many-to-one relation; Column lives in the root table.
type Reference struct {
	Name             string `yaml:"name"`
	Table            string `yaml:"table"`
	Column           string `yaml:"column"`
	ReferencedColumn string `yaml:"referenced_column"`
}

type Page struct {
	DefaultSize int `yaml:"default_size"`
	MaxSize     int `yaml:"max_size"`
}

type Entity struct {
	Table       string              `yaml:"table"`
	Alias       string              `yaml:"alias"`
	PrimaryKey  string              `yaml:"primary_key"`
	Columns     []string            `yaml:"columns"`
	Filter      []string            `yaml:"filter"`
	Sort        []string            `yaml:"sort"`
	Search      []string            `yaml:"search"`
	Aliases     map[string]string   `yaml:"aliases"`
	Types       map[string]string   `yaml:"types"`
	Enums       map[string][]string `yaml:"enums"`
	Collections []Collection        `yaml:"collections"`
	References  []Reference         `yaml:"references"`
	Page        Page                `yaml:"page"`
}

type Profile struct {
	Entities map[string]Entity `yaml:"entities"`
}

// Load reads and validates the profile file at path.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read profile file %s", path)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid profile file %s", path)
	}
	return p, nil
}

// Parse decodes and validates a YAML profile.
func Parse(data []byte) (*Profile, error) {
	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil {
		return nil, errors.Wrap(err, "failed to parse profile")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Names returns the entity names in lexical order.
func (p *Profile) Names() []string {
	names := make([]string, 0, len(p.Entities))
	for name := range p.Entities {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (p *Profile) Entity(name string) (Entity, bool) {
	e, ok := p.Entities[name]
	return e, ok
}

// Validate reports every problem of every entity at once.
func (p *Profile) Validate() error {
	var result *multierror.Error
	if len(p.Entities) == 0 {
		result = multierror.Append(result, errors.New("profile defines no entities"))
	}
	for _, name := range p.Names() {
		if err := p.Entities[name].Validate(); err != nil {
			result = multierror.Append(result, errors.Wrapf(err, "entity \"%s\"", name))
		}
	}
	return result.ErrorOrNil()
}

func (e Entity) Validate() error {
	var result *multierror.Error
	fail := func(format string, args ...any) {
		result = multierror.Append(result, fmt.Errorf(format, args...))
	}

	for _, name := range append([]string{e.Table, e.PrimaryKey}, e.Columns...) {
		if !spec.IsIdentifier(name) {
			fail("invalid identifier \"%s\"", name)
		}
	}
	if e.Alias != "" && !spec.IsIdentifier(e.Alias) {
		fail("invalid alias \"%s\"", e.Alias)
	}

	for field, kind := range e.Types {
		k, err := query.ParseKind(kind)
		if err != nil {
			fail("type of \"%s\": %v", field, err)
			continue
		}
		if k == query.KindEnum && len(e.Enums[field]) == 0 {
			fail("enum field \"%s\" has no values", field)
		}
	}
	for field := range e.Enums {
		if kind, ok := e.Types[field]; !ok || !strings.EqualFold(kind, query.KindEnum.String()) {
			fail("values given for \"%s\" which is not an enum", field)
		}
	}

	for name, target := range e.Aliases {
		if _, ok := e.Types[target]; !ok {
			fail("alias \"%s\" targets untyped field \"%s\"", name, target)
		}
	}

	resolve := func(name string) string {
		if target, ok := e.Aliases[name]; ok {
			return target
		}
		return name
	}
	relations := e.relationNames()
	check := func(list, name string) {
		path := resolve(name)
		if _, ok := e.Types[path]; !ok {
			fail("%s field \"%s\" has no type", list, name)
		}
		head, _, nested := strings.Cut(path, ".")
		if nested {
			if _, ok := relations[head]; !ok {
				fail("%s field \"%s\" goes through unknown relation \"%s\"", list, name, head)
			}
		}
	}
	for _, name := range e.Filter {
		check("filter", name)
	}
	for _, name := range e.Sort {
		check("sort", name)
		if relations[strings.Split(resolve(name), ".")[0]] == query.RelationCollection {
			fail("sort field \"%s\" goes through a collection", name)
		}
	}
	for _, name := range e.Search {
		check("search", name)
	}

	for _, c := range e.Collections {
		if c.Name == "" || !spec.IsIdentifier(c.Table) || len(c.ForeignKeys) == 0 {
			fail("collection \"%s\" needs a name, a table and foreign keys", c.Name)
		}
		for _, fk := range c.ForeignKeys {
			if !spec.IsIdentifier(fk.Child) || !spec.IsIdentifier(fk.Parent) {
				fail("collection \"%s\" has an invalid foreign key %s=%s", c.Name, fk.Child, fk.Parent)
			}
		}
	}
	for _, r := range e.References {
		if r.Name == "" || !spec.IsIdentifier(r.Table) || !spec.IsIdentifier(r.Column) || !spec.IsIdentifier(r.referencedColumn()) {
			fail("reference \"%s\" needs a name, a table and a column", r.Name)
		}
	}
	return result.ErrorOrNil()
}

// relationNames maps every declared relation to its kind.
func (e Entity) relationNames() map[string]query.Relation {
	relations := make(map[string]query.Relation, len(e.Collections)+len(e.References))
	for _, c := range e.Collections {
		relations[c.Name] = query.RelationCollection
	}
	for _, r := range e.References {
		relations[r.Name] = query.RelationScalar
	}
	return relations
}

func (r Reference) referencedColumn() string {
	if r.ReferencedColumn == "" {
		return "id"
	}
	return r.ReferencedColumn
}

// FieldConfig builds the engine configuration of the entity.
func (e Entity) FieldConfig() (query.FieldConfig, error) {
	types := make(map[string]query.FieldType, len(e.Types))
	for field, kind := range e.Types {
		k, err := query.ParseKind(kind)
		if err != nil {
			return query.FieldConfig{}, errors.Wrapf(err, "type of \"%s\"", field)
		}
		if k == query.KindEnum {
			types[field] = query.EnumOf(e.Enums[field]...)
		} else {
			types[field] = query.TypeOf(k)
		}
	}
	collections := make([]string, 0, len(e.Collections))
	for _, c := range e.Collections {
		collections = append(collections, c.Name)
	}
	return query.FieldConfig{
		Filterable:  query.NewFieldSet(e.Filter...),
		Sortable:    query.NewFieldSet(e.Sort...),
		Aliases:     e.Aliases,
		Searchable:  e.Search,
		Types:       types,
		Collections: query.NewFieldSet(collections...),
		Limits:      query.PageLimits{DefaultSize: e.Page.DefaultSize, MaxSize: e.Page.MaxSize},
	}, nil
}

// SQLTable builds the SQL mapping of the entity.
func (e Entity) SQLTable() sqlstore.Table {
	table := sqlstore.NewTable(e.Table, e.PrimaryKey, e.Columns...)
	if e.Alias != "" {
		table = table.WithAlias(e.Alias)
	}
	for _, c := range e.Collections {
		fks := make([]spec.ForeignKeyPair, 0, len(c.ForeignKeys))
		for _, fk := range c.ForeignKeys {
			fks = append(fks, spec.ForeignKeyPair{ChildColumn: fk.Child, ParentColumn: fk.Parent})
		}
		table.Relations.Register(c.Name, spec.RelationMapping{
			Kind:        spec.RelationCollection,
			Table:       c.Table,
			ForeignKeys: fks,
			Alias:       c.Alias,
		})
	}
	for _, r := range e.References {
		table.Relations.RegisterReference(r.Name, r.Table, r.Column, r.referencedColumn())
	}
	return table
}
