package errors

import "errors"

// This package defines a centralized set of sentinel errors for the application.
// Services return these (usually wrapped with context) and the API layer maps
// them to HTTP responses with `errors.Is()`, so no layer below the API knows
// about status codes.

var (
	// ErrValidation signifies that the client input was missing or unusable,
	// e.g. an empty chat message.
	// This is mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrUpstreamUnavailable signifies that the completion provider could not be
	// reached or answered with a non-2xx status.
	// This is mapped to a 500 Internal Server Error HTTP status.
	ErrUpstreamUnavailable = errors.New("completion provider unavailable")

	// ErrUpstreamResponse signifies that the completion provider answered
	// successfully but the body did not carry a reply.
	// This is mapped to a 500 Internal Server Error HTTP status.
	ErrUpstreamResponse = errors.New("malformed completion response")

	// ErrInternal signifies an unexpected error on the server. It is used to
	// avoid leaking implementation details to the client.
	// This is mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)
