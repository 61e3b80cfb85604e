package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
)

type coercer func(t FieldType, field, raw string) (any, error)

var coercers = map[Kind]coercer{
	KindUnknown:  coerceString,
	KindString:   coerceString,
	KindBool:     coerceBool,
	KindUUID:     coerceUUID,
	KindULID:     coerceULID,
	KindDateTime: coerceDateTime,
	KindDate:     coerceDate,
	KindInt:      coerceInt,
	KindInt64:    coerceInt64,
	KindFloat32:  coerceFloat32,
	KindFloat64:  coerceFloat64,
	KindDecimal:  coerceDecimal,
	KindEnum:     coerceEnum,
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

const dateLayout = "2006-01-02"

// Coerce converts raw to the Go value of the field's kind. An empty raw
// value of a non-string kind coerces to nil, i.e. NULL.
func (t FieldType) Coerce(field, raw string) (any, error) {
	if raw == "" && t.Kind != KindString && t.Kind != KindUnknown {
		return nil, nil
	}
	c, ok := coercers[t.Kind]
	if !ok {
		return coerceString(t, field, raw)
	}
	return c(t, field, raw)
}

func invalid(field, raw, expected string) error {
	return &InvalidParameterError{Field: field, Value: raw, Expected: expected}
}

func coerceString(_ FieldType, _, raw string) (any, error) {
	return raw, nil
}

func coerceBool(_ FieldType, field, raw string) (any, error) {
	switch strings.ToLower(raw) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return nil, invalid(field, raw, "boolean")
}

func coerceUUID(_ FieldType, field, raw string) (any, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, invalid(field, raw, "UUID")
	}
	return id, nil
}

func coerceULID(_ FieldType, field, raw string) (any, error) {
	id, err := ulid.ParseStrict(raw)
	if err != nil {
		return nil, invalid(field, raw, "ULID")
	}
	return id, nil
}

func coerceDateTime(_ FieldType, field, raw string) (any, error) {
	for _, layout := range dateTimeLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts, nil
		}
	}
	return nil, invalid(field, raw, "ISO-8601 date-time")
}

func coerceDate(_ FieldType, field, raw string) (any, error) {
	d, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, invalid(field, raw, "ISO-8601 date")
	}
	return d, nil
}

func coerceInt(_ FieldType, field, raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, strconv.IntSize)
	if err != nil {
		return nil, invalid(field, raw, "integer")
	}
	return int(n), nil
}

func coerceInt64(_ FieldType, field, raw string) (any, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, invalid(field, raw, "long integer")
	}
	return n, nil
}

func coerceFloat32(_ FieldType, field, raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 32)
	if err != nil {
		return nil, invalid(field, raw, "float")
	}
	return float32(f), nil
}

func coerceFloat64(_ FieldType, field, raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, invalid(field, raw, "double")
	}
	return f, nil
}

func coerceDecimal(_ FieldType, field, raw string) (any, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, invalid(field, raw, "decimal")
	}
	return d, nil
}

func coerceEnum(t FieldType, field, raw string) (any, error) {
	for _, v := range t.EnumValues {
		if v == raw {
			return raw, nil
		}
	}
	return nil, &InvalidParameterError{
		Field:  field,
		Value:  raw,
		Reason: fmt.Sprintf("value \"%s\" is not one of %s", raw, strings.Join(t.EnumValues, ", ")),
	}
}
