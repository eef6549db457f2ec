package domain

import "errors"

// Every operation failure maps onto one of these sentinels so callers can
// branch with errors.Is regardless of the wrapping context.
var (
	// ErrNotFound means a referenced entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized means the caller failed a capability or ownership
	// check, or is not a recognized admin, controller, or registered role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited means the caller hit the sliding-window call cap.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrValidation means request field validation rejected the input.
	ErrValidation = errors.New("validation failed")
)
