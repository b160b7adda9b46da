package baskets

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoItems is reported when a save is attempted with every quantity at
// zero. No request is issued.
var ErrNoItems = errors.New("order must contain at least one item with quantity greater than 0")

// ErrStaleView is reported when an async operation completes after the
// selection has moved on; its result is discarded.
var ErrStaleView = errors.New("view selection changed, result discarded")

// ErrNoSelection is reported by operations that require a selected row.
var ErrNoSelection = errors.New("no delivery selected")

// ErrReadOnly is reported when editing or saving a closed order.
var ErrReadOnly = errors.New("order is closed")

// ErrNoOrder is reported when deleting a row that has no order yet.
var ErrNoOrder = errors.New("no order to delete")

// ErrNegativeQuantity is reported for quantities below zero; the view state
// is left unchanged.
var ErrNegativeQuantity = errors.New("quantity must not be negative")

// APIError represents a non-success response from the backend.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend error (status %d): %s", e.StatusCode, e.Detail)
}

// PayloadError represents a response body that decoded but did not match the
// expected endpoint shape.
type PayloadError struct {
	Endpoint string
	Err      error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Endpoint, e.Err)
}

func (e *PayloadError) Unwrap() error {
	return e.Err
}

// AmountMismatchError means the order was persisted but the backend total
// diverges from the locally computed one. The write has occurred; the view
// is left open so the user can reload and verify.
type AmountMismatchError struct {
	Local  decimal.Decimal
	Server decimal.Decimal
}

func (e *AmountMismatchError) Error() string {
	return fmt.Sprintf("order saved but amounts diverge: local %s, server %s",
		e.Local.StringFixed(2), e.Server.StringFixed(2))
}

// DeleteFailedError represents a delete request answered with anything other
// than 204.
type DeleteFailedError struct {
	StatusCode int
	Detail     string
}

func (e *DeleteFailedError) Error() string {
	return fmt.Sprintf("order deletion failed (status %d): %s", e.StatusCode, e.Detail)
}
