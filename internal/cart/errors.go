package cart

import "errors"

var (
	// ErrPersistenceUnavailable wraps any failed write or read against the
	// persistence collaborator.
	ErrPersistenceUnavailable = errors.New("cart persistence unavailable")

	// ErrNotFound is returned when a line id is required to exist and does not.
	ErrNotFound = errors.New("cart line not found")

	// ErrInvalidQuantity marks a negative quantity request. The Controller
	// clamps such requests to zero, so it only shows up in logs.
	ErrInvalidQuantity = errors.New("invalid quantity")
)
