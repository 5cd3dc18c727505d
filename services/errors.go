package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrOrderNotFound   = fmt.Errorf("order %w", ErrNotFound)
	ErrProductNotFound = fmt.Errorf("product %w", ErrNotFound)
	ErrCartNotFound    = fmt.Errorf("cart %w", ErrNotFound)
	ErrUserNotFound    = fmt.Errorf("user %w", ErrNotFound)
	ErrCartItemMissing = fmt.Errorf("cart item %w", ErrNotFound)

	ErrStateConflict    = errors.New("state conflict")
	ErrAlreadyPaid      = fmt.Errorf("%w: order is already paid", ErrStateConflict)
	ErrNotPaid          = fmt.Errorf("%w: order is not paid", ErrStateConflict)
	ErrAlreadyDelivered = fmt.Errorf("%w: order is already delivered", ErrStateConflict)

	ErrInsufficientStock  = errors.New("not enough stock")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidToken       = errors.New("invalid token")

	ErrPersistence = errors.New("persistence failure")
)

// ValidationError is a user-correctable checkout precondition failure.
// RedirectTo names the page where the user can fix it.
type ValidationError struct {
	Field      string
	Message    string
	RedirectTo string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// PaymentMismatchError means the processor's capture does not match the
// remote order stored on the order, or was not completed.
type PaymentMismatchError struct {
	OrderID        uint
	ExpectedID     string
	CapturedID     string
	CapturedStatus string
}

func (e *PaymentMismatchError) Error() string {
	if e.ExpectedID != e.CapturedID {
		return fmt.Sprintf("payment for order %d does not match: expected remote order %q, captured %q",
			e.OrderID, e.ExpectedID, e.CapturedID)
	}
	return fmt.Sprintf("payment for order %d was not completed: status %q", e.OrderID, e.CapturedStatus)
}

// NotificationError wraps a failed best-effort email. It is only ever logged.
type NotificationError struct {
	Kind    string
	OrderID uint
	Err     error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("%s notification for order %d failed: %v", e.Kind, e.OrderID, e.Err)
}

func (e *NotificationError) Unwrap() error {
	return e.Err
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
