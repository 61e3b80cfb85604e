package query

import (
	"fmt"
	"strings"
)

// Kind is the declared type of a queryable field.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindBool
	KindUUID
	KindULID
	KindDateTime
	KindDate
	KindInt
	KindInt64
	KindFloat32
	KindFloat64
	KindDecimal
	KindEnum
)

var kindNames = map[Kind]string{
	KindUnknown:  "unknown",
	KindString:   "string",
	KindBool:     "bool",
	KindUUID:     "uuid",
	KindULID:     "ulid",
	KindDateTime: "datetime",
	KindDate:     "date",
	KindInt:      "int",
	KindInt64:    "int64",
	KindFloat32:  "float32",
	KindFloat64:  "float64",
	KindDecimal:  "decimal",
	KindEnum:     "enum",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String; "" parses as KindUnknown.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return KindUnknown, nil
	}
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindUnknown, fmt.Errorf("unknown field kind \"%s\"", name)
}

// IsNumeric reports integer, floating point and decimal kinds.
func (k Kind) IsNumeric() bool {
	switch k {
	case KindInt, KindInt64, KindFloat32, KindFloat64, KindDecimal:
		return true
	}
	return false
}

// IsTextual reports kinds whose values are strings.
func (k Kind) IsTextual() bool {
	return k == KindString || k == KindEnum || k == KindUnknown
}

// FieldType is the schema declaration of a field.
type FieldType struct {
	Kind Kind
	// EnumValues holds the constant names of a KindEnum field.
	EnumValues []string
}

func TypeOf(kind Kind) FieldType {
	return FieldType{Kind: kind}
}

func EnumOf(values ...string) FieldType {
	return FieldType{Kind: KindEnum, EnumValues: values}
}

func (t FieldType) String() string {
	if t.Kind == KindEnum {
		return fmt.Sprintf("enum%v", t.EnumValues)
	}
	return t.Kind.String()
}
