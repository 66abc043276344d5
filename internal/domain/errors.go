package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrNotFound            = errors.New("not found")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrCartNotOpen         = errors.New("cart is not open")
	ErrQuantityOutOfRange  = fmt.Errorf("%w: quantity out of range", ErrInvalidArgument)
)
