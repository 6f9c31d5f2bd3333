package channel

import "errors"

// Sentinel errors for channel operations.
var (
	// ErrNoInbox indicates a channel's inbox callback has not been set.
	ErrNoInbox = errors.New("channel: inbox not set")

	// ErrMessageNotFound indicates the referenced message no longer exists
	// on the platform.
	ErrMessageNotFound = errors.New("channel: message not found")
)
