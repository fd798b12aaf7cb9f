package errors

import "errors"

var (
	ErrAlreadyExists      = errors.New("already exists")
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingCook        = errors.New("missing cook identifier")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidMetadata    = errors.New("invalid metadata")
	ErrInvalidPushToken   = errors.New("invalid push token")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	ErrMalformedEvent     = errors.New("malformed webhook event")
)

// IsInvalidArgument reports whether err is a request validation failure.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrMissingCook) ||
		errors.Is(err, ErrInvalidCurrency) ||
		errors.Is(err, ErrInvalidMetadata)
}
