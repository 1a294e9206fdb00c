package content

import (
	"errors"
)

// ErrNotFound indicates that no post matches the requested id. It is never
// retried by callers.
var ErrNotFound = errors.New("post not found")

// ErrUnavailable indicates that the backing source could not be read. Fatal
// when raised from ListAll during a build; retryable during request-time
// resolution.
var ErrUnavailable = errors.New("content store unavailable")
