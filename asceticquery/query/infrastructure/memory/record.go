package memory

import (
	"fmt"
	"reflect"

	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
)

// Record is a map-backed entity. Nested objects are Records (or any
// s.Context), collections are slices of them.
type Record map[string]any

func (r Record) Get(key string) (any, error) {
	v, ok := r[key]
	if !ok {
		return nil, fmt.Errorf("%w: \"%s\"", s.ErrKeyNotFound, key)
	}
	return v, nil
}

// row is one entity combined with one item of each joined collection. A
// nil binding is the NULL side of a left outer join.
type row struct {
	entity   s.Context
	bindings map[string]any
}

func (r row) Get(key string) (any, error) {
	if v, ok := r.bindings[key]; ok {
		return v, nil
	}
	return r.entity.Get(key)
}

// expandRows returns the left outer join of entity with every relation.
func expandRows(entity s.Context, relations []string) ([]s.Context, error) {
	if len(relations) == 0 {
		return []s.Context{entity}, nil
	}
	bindings := []map[string]any{{}}
	for _, rel := range relations {
		value, err := entity.Get(rel)
		if err != nil {
			return nil, err
		}
		items, err := collectionItems(rel, value)
		if err != nil {
			return nil, err
		}
		next := make([]map[string]any, 0, len(bindings)*max(len(items), 1))
		for _, b := range bindings {
			if len(items) == 0 {
				next = append(next, with(b, rel, nil))
				continue
			}
			for _, item := range items {
				next = append(next, with(b, rel, item))
			}
		}
		bindings = next
	}
	rows := make([]s.Context, len(bindings))
	for i, b := range bindings {
		rows[i] = row{entity: entity, bindings: b}
	}
	return rows, nil
}

func with(b map[string]any, key string, value any) map[string]any {
	result := make(map[string]any, len(b)+1)
	for k, v := range b {
		result[k] = v
	}
	result[key] = value
	return result
}

func collectionItems(name string, value any) ([]any, error) {
	if value == nil {
		return nil, nil
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("\"%s\" is not a collection, got %T", name, value)
	}
	items := make([]any, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if item == nil {
			continue
		}
		if _, ok := item.(s.Context); !ok {
			return nil, fmt.Errorf("item of \"%s\" is not an object, got %T", name, item)
		}
		items = append(items, item)
	}
	return items, nil
}
