package query

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	s "github.com/krew-solutions/ascetic-query-go/asceticquery/specification/domain"
)

// PathResolver turns a dotted storage path into an addressable field
// expression. Collection relations are joined at most once per query.
type PathResolver interface {
	Path(path string, relation Relation) (s.FieldNode, error)
}

var segmentPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// JoinSet is the default PathResolver. It records each distinct
// collection relation once, in first-use order.
type JoinSet struct {
	relations []string
	seen      map[string]struct{}
}

func NewJoinSet() *JoinSet {
	return &JoinSet{seen: make(map[string]struct{})}
}

func (j *JoinSet) Path(path string, relation Relation) (s.FieldNode, error) {
	for _, segment := range strings.Split(path, ".") {
		if !segmentPattern.MatchString(segment) {
			return s.FieldNode{}, &InvalidFieldError{Field: path}
		}
	}
	if relation == RelationCollection {
		head, _, _ := strings.Cut(path, ".")
		if _, ok := j.seen[head]; !ok {
			j.seen[head] = struct{}{}
			j.relations = append(j.relations, head)
		}
	}
	return s.FieldPath(path), nil
}

// Relations returns the joined collection relations.
func (j *JoinSet) Relations() []string {
	return j.relations
}

// PredicateBuilder converts resolved filters into predicate trees.
type PredicateBuilder struct {
	Paths  PathResolver
	Logger *zap.Logger
}

// BuildPredicate builds the predicate of one filter against a field of type t.
func BuildPredicate(f ResolvedFilter, t FieldType, paths PathResolver) (s.Visitable, error) {
	return PredicateBuilder{Paths: paths, Logger: zap.L()}.Build(f, t)
}

func (b PredicateBuilder) Build(f ResolvedFilter, t FieldType) (s.Visitable, error) {
	field, err := b.Paths.Path(f.Path, f.Relation)
	if err != nil {
		return nil, err
	}
	switch f.Operation {
	case Like:
		return likeAny(field, t, f.RawValue), nil
	case Contains:
		return b.contains(field, f, t)
	case In:
		return b.in(field, f, t)
	}

	value, err := t.Coerce(f.Field, f.RawValue)
	if err != nil {
		return nil, err
	}
	switch f.Operation {
	case Equals:
		if value == nil {
			return s.IsNull(field), nil
		}
		return s.Equal(field, s.Value(value)), nil
	case NotEquals:
		if value == nil {
			return s.IsNotNull(field), nil
		}
		return s.Not(s.Equal(field, s.Value(value))), nil
	}

	if value == nil {
		// Ordered comparison with NULL keeps every row.
		b.logger().Warn("ordered comparison against an empty value matches everything",
			zap.String("field", f.Field),
			zap.Stringer("operation", f.Operation),
		)
		return s.Value(true), nil
	}
	switch f.Operation {
	case GreaterThan:
		return s.GreaterThan(field, s.Value(value)), nil
	case GreaterThanEqual:
		return s.GreaterThanEqual(field, s.Value(value)), nil
	case LessThan:
		return s.LessThan(field, s.Value(value)), nil
	case LessThanEqual:
		return s.LessThanEqual(field, s.Value(value)), nil
	}
	return nil, &InvalidParameterError{Field: f.Field, Value: f.Operation.String(), Reason: "unsupported operation"}
}

func (b PredicateBuilder) logger() *zap.Logger {
	if b.Logger == nil {
		return zap.L()
	}
	return b.Logger
}

func (b PredicateBuilder) contains(field s.FieldNode, f ResolvedFilter, t FieldType) (s.Visitable, error) {
	if !t.Kind.IsTextual() {
		return nil, &InvalidParameterError{
			Field:  f.Field,
			Value:  f.RawValue,
			Reason: "CONTAINS operation only supported for String fields",
		}
	}
	token := f.RawValue
	padded := s.Concat(s.Concat(s.Value(","), field), s.Value(","))
	return s.Or(
		s.Equal(field, s.Value(token)),
		s.Like(padded, s.Value("%,"+EscapeLike(token)+",%")),
	), nil
}

func (b PredicateBuilder) in(field s.FieldNode, f ResolvedFilter, t FieldType) (s.Visitable, error) {
	tokens := strings.Split(f.RawValue, ",")
	values := make([]any, 0, len(tokens))
	for _, token := range tokens {
		v, err := t.Coerce(f.Field, strings.TrimSpace(token))
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	return s.In(field, s.List(values...)), nil
}

// likeAny matches the lower-cased term as a substring, a prefix or a suffix.
func likeAny(field s.FieldNode, t FieldType, term string) s.Visitable {
	folded := foldedText(field, t)
	escaped := EscapeLike(strings.ToLower(term))
	return s.Or(
		s.Like(folded, s.Value("%"+escaped+"%")),
		s.Like(folded, s.Value(escaped+"%")),
		s.Like(folded, s.Value("%"+escaped)),
	)
}

// likeSubstring matches the lower-cased term as a substring.
func likeSubstring(field s.FieldNode, t FieldType, term string) s.Visitable {
	return s.Like(foldedText(field, t), s.Value("%"+EscapeLike(strings.ToLower(term))+"%"))
}

func foldedText(field s.FieldNode, t FieldType) s.Visitable {
	if t.Kind == KindString {
		return s.Lower(field)
	}
	return s.Lower(s.Text(field))
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// EscapeLike escapes LIKE wildcards with a backslash.
func EscapeLike(value string) string {
	return likeEscaper.Replace(value)
}
