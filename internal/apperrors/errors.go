// Package apperrors defines the error taxonomy surfaced through the API:
// validation failures (400), uniqueness conflicts (409) and missing
// records (404). Services translate driver and validator errors into
// these types; the HTTP layer maps them onto status codes.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldViolation names a single violated field/rule pair.
type FieldViolation struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

func (v FieldViolation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Rule)
}

// ValidationError carries every violated field/rule pair of a failed
// write, not just the first.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add appends a violation. Used by services to merge dynamic checks
// (e.g. the current-year bound) with struct-tag results.
func (e *ValidationError) Add(field, rule string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Rule: rule})
}

// HasViolations reports whether any rule failed.
func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// FromValidator flattens go-playground violations into a ValidationError.
func FromValidator(errs validator.ValidationErrors) *ValidationError {
	ve := &ValidationError{}
	for _, fe := range errs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		ve.Add(fe.Field(), rule)
	}
	return ve
}

// ConflictError reports a violated unique or composite-unique constraint,
// naming every field that participates in it.
type ConflictError struct {
	Fields []string
}

func (e *ConflictError) Error() string {
	return "duplicate value for " + strings.Join(e.Fields, ", ")
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// StatusCode maps an error to the HTTP status it should be served with.
func StatusCode(err error) int {
	var ve *ValidationError
	var ce *ConflictError
	var nf *NotFoundError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.As(err, &ce):
		return http.StatusConflict
	case errors.As(err, &nf):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsUniqueViolation reports whether err is the driver's unique-index
// failure. The index acts as the atomic backstop behind the services'
// check-then-insert transactions, so either path ends up here.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
