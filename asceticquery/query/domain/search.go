package query

import (
	"strings"

	"github.com/krew-solutions/ascetic-query-go/asceticquery/option"
	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
)

// ExpandSearch ORs a case-insensitive substring match of the trimmed term
// over the searchable fields. It returns nil when there is nothing to search.
func ExpandSearch(search option.Option[string], cfg FieldConfig, paths PathResolver) (s.Visitable, error) {
	term := strings.TrimSpace(search.UnwrapOr(""))
	if term == "" || len(cfg.Searchable) == 0 {
		return nil, nil
	}
	clauses := make([]s.Visitable, 0, len(cfg.Searchable))
	for _, name := range cfg.Searchable {
		path := cfg.ResolvePath(name)
		field, err := paths.Path(path, cfg.RelationOf(path))
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, likeSubstring(field, cfg.TypeOf(path), term))
	}
	return s.AnyOf(clauses...), nil
}
