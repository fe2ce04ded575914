package location

import "errors"

// Typed position source failures. These surface to the player as a
// retryable error state; evaluators simply do not run until resolved.
var (
	ErrPermissionDenied = errors.New("location permission denied")
	ErrUnavailable      = errors.New("location unavailable")
	ErrTimeout          = errors.New("location request timed out")
)
