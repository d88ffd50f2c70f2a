package apperr

import "strings"

// FieldError names one violated constraint on one input field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError carries every violated constraint of a request. It is
// local: no I/O happened before it is raised and it is never retried or
// cached.
type ValidationError struct {
	Message string
	Fields  []FieldError
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	if len(e.Fields) > 0 {
		parts := make([]string, 0, len(e.Fields))
		for _, f := range e.Fields {
			parts = append(parts, f.Field+": "+f.Reason)
		}
		return e.Message + ": " + strings.Join(parts, "; ")
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func NewValidation(msg string) *ValidationError {
	return &ValidationError{Message: msg}
}

func NewValidationWrap(msg string, err error) *ValidationError {
	return &ValidationError{Message: msg, Err: err}
}

// NewValidationFields builds a ValidationError from per-field violations.
func NewValidationFields(msg string, fields []FieldError) *ValidationError {
	return &ValidationError{Message: msg, Fields: fields}
}

// NotFoundError marks a syntactically valid lookup that matched nothing.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFound(msg string) *NotFoundError {
	return &NotFoundError{Message: msg}
}

// UnavailableError marks a failed round-trip to a downstream system (index,
// cache or database). The whole request is safe to retry; the failure must
// never be written to the cache.
type UnavailableError struct {
	System string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Err != nil {
		return e.System + " unavailable: " + e.Err.Error()
	}
	return e.System + " unavailable"
}

func (e *UnavailableError) Unwrap() error {
	return e.Err
}

func NewUnavailable(system string, err error) *UnavailableError {
	return &UnavailableError{System: system, Err: err}
}
