package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrAlreadyExists indicates a unique key is already taken.
	ErrAlreadyExists = errors.New("already exists")
	// ErrInvalidQuantity is returned for a non-positive quantity or one above MaxLineQuantity.
	ErrInvalidQuantity = errors.New("quantity must be positive")
	// ErrInvalidLine is returned for lines without a product id or with a negative price.
	ErrInvalidLine = errors.New("invalid cart line")
	// ErrInvalidTransition is returned when an order status change skips or reverses a stage.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrInvalidFilter is returned for contradictory catalog search filters.
	ErrInvalidFilter = errors.New("invalid product filter")
	// ErrEmptyCart is returned when checking out a cart with no lines.
	ErrEmptyCart = errors.New("cart is empty")
)
