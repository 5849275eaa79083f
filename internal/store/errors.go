package store

import "errors"

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrTotalMismatch     = errors.New("transaction total does not match subtotal + tax - discount")
)
