package services

import "errors"

// Service errors; handlers map them to HTTP statuses and use Error() as the
// client-visible message.
var (
	ErrProductNotFound    = errors.New("product not found")
	ErrItemNotInCart      = errors.New("item not in cart")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidProduct     = errors.New("invalid product")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEmptyUpdate        = errors.New("update has no fields")
)
