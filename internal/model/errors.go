package model

import "fmt"

// ValidationError reports malformed or out-of-range input.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// AuthorizationError reports that the actor lacks the required role or does
// not own the referenced record.
type AuthorizationError struct {
	Reason string
}

func (e *AuthorizationError) Error() string { return e.Reason }

// ConflictError reports a uniqueness violation or a deletion blocked by
// existing references.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

// NotFoundError reports that a referenced record does not exist.
type NotFoundError struct {
	Kind string
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Kind, e.ID)
}

// InsufficientStockError aborts a shipment batch when an item's stock cannot
// cover the batch's total deduction. Held and Required are in base units.
type InsufficientStockError struct {
	ItemID   int64
	ItemName string
	Held     int
	Required int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: have %d, need %d", e.ItemName, e.Held, e.Required)
}
