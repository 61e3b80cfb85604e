package query

import (
	"sort"
	"strings"
)

// FieldSet is a set of field names or storage paths.
type FieldSet map[string]struct{}

func NewFieldSet(fields ...string) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func (s FieldSet) Has(field string) bool {
	_, ok := s[field]
	return ok
}

func (s FieldSet) IsEmpty() bool {
	return len(s) == 0
}

// Slice returns the members sorted.
func (s FieldSet) Slice() []string {
	result := make([]string, 0, len(s))
	for f := range s {
		result = append(result, f)
	}
	sort.Strings(result)
	return result
}

// Relation tells how the first segment of a path is reached.
type Relation int

const (
	RelationScalar Relation = iota
	// RelationCollection must be reached by a left outer join so entities
	// with an empty collection are kept.
	RelationCollection
)

func (r Relation) String() string {
	if r == RelationCollection {
		return "collection"
	}
	return "scalar"
}

// FieldConfig is the per-entity query configuration supplied by the caller.
type FieldConfig struct {
	// Filterable is the filter allow-list; empty means unrestricted.
	Filterable FieldSet
	// Sortable is the sort allow-list; empty admits no sort field.
	Sortable FieldSet
	// Aliases maps API-facing names to storage paths.
	Aliases map[string]string
	// Searchable lists the fields a free-text search term is matched against.
	Searchable []string
	// Types declares the kind of each storage path; missing paths are KindUnknown.
	Types map[string]FieldType
	// Collections names the collection-valued relations.
	Collections FieldSet
	Limits      PageLimits
}

// ResolvePath applies the alias map; a name without an alias is its own path.
func (c FieldConfig) ResolvePath(field string) string {
	return resolveAlias(c.Aliases, field)
}

// TypeOf returns the declared type of a storage path.
func (c FieldConfig) TypeOf(path string) FieldType {
	if t, ok := c.Types[path]; ok {
		return t
	}
	return FieldType{Kind: KindUnknown}
}

// RelationOf reports whether path crosses a collection relation.
func (c FieldConfig) RelationOf(path string) Relation {
	head, _, nested := strings.Cut(path, ".")
	if nested && c.Collections.Has(head) {
		return RelationCollection
	}
	return RelationScalar
}

func resolveAlias(aliases map[string]string, field string) string {
	if path, ok := aliases[field]; ok {
		return path
	}
	return field
}

// ResolvedFilter is a FilterDescriptor whose field has passed alias
// substitution and allow-list validation.
type ResolvedFilter struct {
	FilterDescriptor
	Path     string
	Relation Relation
}

// FieldResolver validates filter descriptors against a FieldConfig.
type FieldResolver struct {
	config FieldConfig
}

func NewFieldResolver(config FieldConfig) FieldResolver {
	return FieldResolver{config: config}
}

func (r FieldResolver) Resolve(descs []FilterDescriptor) ([]ResolvedFilter, error) {
	resolved := make([]ResolvedFilter, 0, len(descs))
	for _, d := range descs {
		path := r.config.ResolvePath(d.Field)
		allow := r.config.Filterable
		if !allow.IsEmpty() && !allow.Has(d.Field) && !allow.Has(path) {
			return nil, &InvalidFieldError{Field: d.Field}
		}
		// With no allow-list the declared types are the set of known paths.
		if allow.IsEmpty() && len(r.config.Types) > 0 {
			if _, ok := r.config.Types[path]; !ok {
				return nil, &InvalidFieldError{Field: d.Field}
			}
		}
		resolved = append(resolved, ResolvedFilter{
			FilterDescriptor: d,
			Path:             path,
			Relation:         r.config.RelationOf(path),
		})
	}
	return resolved, nil
}

// ResolveFilters resolves descriptors against an allow-list and alias map
// with no collection relations declared.
func ResolveFilters(descs []FilterDescriptor, allowList FieldSet, aliases map[string]string) ([]ResolvedFilter, error) {
	return NewFieldResolver(FieldConfig{Filterable: allowList, Aliases: aliases}).Resolve(descs)
}
