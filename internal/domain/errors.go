package domain

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrOutOfStock    = errors.New("insufficient stock")
	ErrEmptyBasket   = errors.New("basket is empty")
	ErrForbidden     = errors.New("forbidden")
	ErrBadTransition = errors.New("invalid status transition")
)
