// Package apperror defines the error kinds shared by the storefront services.
// Services return these (possibly wrapped with %w); the HTTP layer maps them
// to status codes with errors.Is / errors.As.
package apperror

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when a lookup matches nothing
	ErrNotFound = errors.New("not found")

	// ErrVariantInUse is returned when deleting a variant that order history references
	ErrVariantInUse = errors.New("variant is referenced by existing orders")

	// ErrConflict is returned for uniqueness violations such as a duplicate email
	ErrConflict = errors.New("conflict")

	// ErrUnauthorized is returned for bad credentials or inactive accounts
	ErrUnauthorized = errors.New("unauthorized")
)

// ValidationError carries user-correctable, field-level input problems
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// Add records a problem for field, keeping the first message per field
func (e *ValidationError) Add(field, message string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

// HasErrors reports whether any field failed
func (e *ValidationError) HasErrors() bool {
	return len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// StockKind distinguishes an empty shelf from a request larger than the shelf
type StockKind string

const (
	OutOfStock        StockKind = "out_of_stock"
	InsufficientStock StockKind = "insufficient_stock"
)

// StockError reports that a variant cannot satisfy a requested quantity
type StockError struct {
	Kind      StockKind
	VariantID uint
	Product   string
	Available int
	Requested int
}

func (e *StockError) Error() string {
	if e.Kind == OutOfStock {
		return fmt.Sprintf("%s is out of stock", e.Product)
	}
	return fmt.Sprintf("only %d left in stock for %s (requested %d)", e.Available, e.Product, e.Requested)
}

// IsOutOfStock reports whether err is a StockError of kind OutOfStock
func IsOutOfStock(err error) bool {
	var se *StockError
	return errors.As(err, &se) && se.Kind == OutOfStock
}

// IsInsufficientStock reports whether err is a StockError of kind InsufficientStock
func IsInsufficientStock(err error) bool {
	var se *StockError
	return errors.As(err, &se) && se.Kind == InsufficientStock
}

// StaleCartItemError reports a cart line whose variant no longer exists
type StaleCartItemError struct {
	VariantID string
}

func (e *StaleCartItemError) Error() string {
	return fmt.Sprintf("cart item %s is no longer available", e.VariantID)
}

// TransitionError reports an order status change the lifecycle does not allow
type TransitionError struct {
	OrderID uint
	From    string
	To      string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("order %d cannot move from %s to %s", e.OrderID, e.From, e.To)
}

// Code classifies err into a short stable label for metrics and responses
func Code(err error) string {
	if err == nil {
		return "ok"
	}

	var (
		verr  *ValidationError
		serr  *StockError
		stale *StaleCartItemError
		terr  *TransitionError
	)
	switch {
	case errors.As(err, &verr):
		return "validation_error"
	case errors.As(err, &serr):
		return string(serr.Kind)
	case errors.As(err, &stale):
		return "stale_cart_item"
	case errors.As(err, &terr):
		return "invalid_transition"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrVariantInUse), errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	default:
		return "internal_error"
	}
}
