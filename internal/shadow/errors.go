package shadow

import "errors"

// ErrMissingField indicates a resolved file lacks a field the metadata
// provider is contractually required to return. It is fatal for the
// current synchronization attempt.
var ErrMissingField = errors.New("shadow: resolved file missing required field")
