package service

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthenticated covers every authentication failure: missing header,
	// missing token segment, malformed or badly signed token. Callers must not
	// distinguish between the causes.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrForbidden is returned when an authenticated account's role is not in
	// the allowed set for an operation.
	ErrForbidden = errors.New("operation not allowed")
)

// ValidationError carries every field violation found in a request body so
// the client can correct all of them in one round trip.
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid request: %d field(s) rejected", len(e.Fields))
}

// NotFoundError indicates a referenced account, product or order is absent.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// IntegrityConflictError indicates a contradictory order status redelivery,
// e.g. a FAILED notification for an order already CONFIRMED. It is never
// auto-resolved; the stored status stays untouched.
type IntegrityConflictError struct {
	OrderID    string
	StoredStat string
	Incoming   string
}

func (e *IntegrityConflictError) Error() string {
	return fmt.Sprintf("conflicting status for order %s: stored=%s incoming=%s",
		e.OrderID, e.StoredStat, e.Incoming)
}
