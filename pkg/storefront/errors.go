package storefront

import (
	"github.com/go-faster/errors"
)

var (
	ErrAuthRequired       = errors.New("please log in to place your order")
	ErrEmptyCart          = errors.New("your cart is empty")
	ErrForbidden          = errors.New("administrator role required")
	ErrProductNotFound    = errors.New("product not found")
	ErrCartLineNotFound   = errors.New("cart line not found")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrAuthFailed         = errors.New("authentication failed")
)

// opError tags a cause with one of the sentinels above while keeping the
// cause's message, so callers can show the server's text and still match with errors.Is.
type opError struct {
	kind  error
	cause error
}

func (e *opError) Error() string {
	return e.cause.Error()
}

func (e *opError) Unwrap() []error {
	return []error{e.kind, e.cause}
}

func tag(kind, cause error) error {
	return &opError{kind: kind, cause: cause}
}
