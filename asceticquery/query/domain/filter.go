package query

import (
	"fmt"
	"strings"
)

type Operation int

const (
	Equals Operation = iota
	NotEquals
	Like
	Contains
	In
	GreaterThan
	LessThan
	GreaterThanEqual
	LessThanEqual
)

var operationTokens = map[string]Operation{
	"eq":       Equals,
	"ne":       NotEquals,
	"like":     Like,
	"contains": Contains,
	"in":       In,
	"gt":       GreaterThan,
	"lt":       LessThan,
	"gte":      GreaterThanEqual,
	"lte":      LessThanEqual,
}

func (o Operation) String() string {
	switch o {
	case Equals:
		return "eq"
	case NotEquals:
		return "ne"
	case Like:
		return "like"
	case Contains:
		return "contains"
	case In:
		return "in"
	case GreaterThan:
		return "gt"
	case LessThan:
		return "lt"
	case GreaterThanEqual:
		return "gte"
	case LessThanEqual:
		return "lte"
	}
	return fmt.Sprintf("Operation(%d)", int(o))
}

// ParseOperation maps a case-insensitive operator token to an Operation.
func ParseOperation(token string) (Operation, error) {
	op, ok := operationTokens[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, &InvalidParameterError{
			Value:  token,
			Reason: fmt.Sprintf("unknown operator \"%s\"", token),
		}
	}
	return op, nil
}

// FilterDescriptor is a parsed filter before alias resolution and allow-list
// validation. Field is the API-facing name.
type FilterDescriptor struct {
	Field     string
	Operation Operation
	RawValue  string
}

func (d FilterDescriptor) String() string {
	return fmt.Sprintf("%s:%s:%s", d.Field, d.Operation, d.RawValue)
}

// ParseFilters parses "field:op:value" and "field:value" strings. Only the
// first two colons separate segments, so values may contain colons. Blank
// entries and bare field names without a value are skipped.
func ParseFilters(raw []string) ([]FilterDescriptor, error) {
	descs := make([]FilterDescriptor, 0, len(raw))
	for _, item := range raw {
		if strings.TrimSpace(item) == "" {
			continue
		}
		desc, ok, err := parseFilter(item)
		if err != nil {
			return nil, err
		}
		if ok {
			descs = append(descs, desc)
		}
	}
	return descs, nil
}

func parseFilter(raw string) (desc FilterDescriptor, ok bool, err error) {
	parts := strings.SplitN(raw, ":", 3)
	field := strings.TrimSpace(parts[0])
	switch len(parts) {
	case 1:
		return desc, false, nil
	case 2:
		desc = FilterDescriptor{Field: field, Operation: Equals, RawValue: parts[1]}
	default:
		op, err := ParseOperation(parts[1])
		if err != nil {
			if e, isParam := err.(*InvalidParameterError); isParam {
				e.Field = field
			}
			return desc, false, err
		}
		desc = FilterDescriptor{Field: field, Operation: op, RawValue: parts[2]}
	}
	if field == "" {
		return desc, false, &InvalidFieldError{Field: raw}
	}
	return desc, true, nil
}
