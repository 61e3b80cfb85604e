package query

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidField     = errors.New("invalid field")
	ErrInvalidParameter = errors.New("invalid parameter")
)

// ClientError marks errors caused by untrusted query input.
type ClientError interface {
	error
	ClientError() bool
}

// IsClientError reports whether err (or anything it wraps) is caused by input.
func IsClientError(err error) bool {
	var ce ClientError
	return errors.As(err, &ce) && ce.ClientError()
}

// InvalidFieldError is raised for a field that is unknown or not allowed.
type InvalidFieldError struct {
	Field string
}

func (e *InvalidFieldError) Error() string {
	if e.Field == "" {
		return "invalid field: field name is empty"
	}
	return fmt.Sprintf("invalid field \"%s\"", e.Field)
}

func (e *InvalidFieldError) ClientError() bool { return true }

func (e *InvalidFieldError) Is(target error) bool {
	return target == ErrInvalidField
}

// InvalidParameterError is raised for an unknown operator, a value that
// does not coerce, or an operation the field type does not support.
type InvalidParameterError struct {
	Field    string
	Value    string
	Expected string
	Reason   string
}

func (e *InvalidParameterError) Error() string {
	msg := "invalid parameter"
	if e.Field != "" {
		msg += fmt.Sprintf(" for field \"%s\"", e.Field)
	}
	switch {
	case e.Reason != "":
		msg += ": " + e.Reason
	case e.Expected != "":
		msg += fmt.Sprintf(": value \"%s\" is not a valid %s", e.Value, e.Expected)
	default:
		msg += fmt.Sprintf(": value \"%s\"", e.Value)
	}
	return msg
}

func (e *InvalidParameterError) ClientError() bool { return true }

func (e *InvalidParameterError) Is(target error) bool {
	return target == ErrInvalidParameter
}
