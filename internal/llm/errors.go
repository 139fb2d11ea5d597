package llm

import "errors"

// Errors returned by CompletionProvider implementations. The service layer
// translates them into application-level errors so that callers never depend
// on the provider's wire details.
var (
	// ErrUpstreamStatus is returned when the provider answers with a non-2xx status.
	ErrUpstreamStatus = errors.New("llm: upstream returned non-success status")

	// ErrMalformedResponse is returned when a 2xx body lacks choices[0].message.content.
	ErrMalformedResponse = errors.New("llm: malformed completion response")
)
