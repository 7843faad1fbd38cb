package models

import "errors"

// Domain errors shared by services and controllers. Controllers translate
// these into HTTP statuses at the boundary; services wrap them with context
// using fmt.Errorf("...: %w", Err...).
var (
	// ErrValidation covers malformed or missing input.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound is returned when a cart, order, product or user is absent.
	ErrNotFound = errors.New("not found")
	// ErrInsufficientStock is returned when a requested quantity exceeds live stock.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrEmptyCart rejects checkout on a cart with no purchasable items.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrInvalidTransition rejects an order status change not in the transition table.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyInState rejects a transition to the order's current status.
	ErrAlreadyInState = errors.New("order already in requested state")
	// ErrUnauthorized is returned on an ownership mismatch.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrGateway wraps payment provider failures.
	ErrGateway = errors.New("payment gateway error")
	// ErrOrderCreation is returned when persistence fails after the cart was priced.
	ErrOrderCreation = errors.New("order creation failed")
)
