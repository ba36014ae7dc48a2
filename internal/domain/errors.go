package domain

import (
	"errors"
	"sort"
	"strings"
)

// ErrNotFound is returned when the requested resource does not exist:
// an unknown or expired search session, or a vehicle the remote API does not know.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails a business rule
// (e.g. unknown category, quick select of zero days, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrNotReady is returned when a search is triggered before the readiness
// predicate holds (no city yet, or a missing date in the dated variant).
// Clients disable the search button in that state; handlers map this to HTTP 409.
var ErrNotReady = errors.New("search not ready")

// FieldErrors collects per-field validation messages, keyed by the JSON field
// name. It matches ErrValidation under errors.Is so callers can treat it like
// any other validation failure and still reach the individual messages with
// errors.As.
type FieldErrors map[string]string

// Error joins the messages in field order so the output is stable.
func (f FieldErrors) Error() string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+f[k])
	}
	return "validation error: " + strings.Join(parts, "; ")
}

// Is makes errors.Is(fieldErrs, ErrValidation) true.
func (f FieldErrors) Is(target error) bool {
	return target == ErrValidation
}
