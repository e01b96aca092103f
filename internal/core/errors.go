package core

import (
	"errors"
	"strings"
)

// FieldError ties a validation failure to the form field that caused it.
type FieldError struct {
	Field string
	Err   error
}

func (e FieldError) Error() string {
	return e.Field + ": " + e.Err.Error()
}

func (e FieldError) Unwrap() error {
	return e.Err
}

// Code is the stable identifier clients use to pick a message.
func (e FieldError) Code() string {
	switch {
	case errors.Is(e.Err, ErrEmptyDescription):
		return "EmptyDescription"
	case errors.Is(e.Err, ErrInvalidAmount):
		return "InvalidAmount"
	case errors.Is(e.Err, ErrMissingCategory):
		return "MissingCategory"
	case errors.Is(e.Err, ErrMissingDate):
		return "MissingDate"
	case errors.Is(e.Err, ErrInvalidDate):
		return "InvalidDate"
	default:
		return "Invalid"
	}
}

// ValidationErrors groups every field violation found in one pass.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, fe := range v {
		msgs[i] = fe.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, len(v))
	for i, fe := range v {
		errs[i] = fe
	}
	return errs
}

// Fields maps each failing field to its message.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for _, fe := range v {
		out[fe.Field] = fe.Err.Error()
	}
	return out
}

// AsValidation extracts ValidationErrors from err.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
