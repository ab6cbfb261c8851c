package common

import "fmt"

// ValidationError means the caller sent missing or malformed input and must
// correct and resubmit.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("validation failed: %s", e.Reason)
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// LocationError means a placement violates capacity or product-home rules. Rule
// carries the specific rule broken, phrased for the UI layer.
type LocationError struct {
	Location string
	Rule     string
}

func (e *LocationError) Error() string {
	return fmt.Sprintf("placement rejected at %s: %s", e.Location, e.Rule)
}

// NewLocationError builds a LocationError for a location.
func NewLocationError(location, rule string) *LocationError {
	return &LocationError{Location: location, Rule: rule}
}

// InsufficientStockError carries the exact shortfall so the caller can act on it.
type InsufficientStockError struct {
	Requested int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock: requested %d, available %d, short %d",
		e.Requested, e.Available, e.Shortfall())
}

// Shortfall is the missing quantity.
func (e *InsufficientStockError) Shortfall() int {
	return e.Requested - e.Available
}

// NotFoundError means the referenced transaction or stock unit no longer exists,
// e.g. a double cancellation.
type NotFoundError struct {
	Resource string
	Ref      string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.Ref)
}

// NewNotFoundError builds a NotFoundError for a resource reference.
func NewNotFoundError(resource, ref string) *NotFoundError {
	return &NotFoundError{Resource: resource, Ref: ref}
}

// PersistenceError wraps a storage-layer failure. Any in-flight transaction is
// rolled back before it surfaces.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError wraps err with the failing operation.
func NewPersistenceError(op string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Err: err}
}
