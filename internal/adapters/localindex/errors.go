package localindex

import "errors"

// Sentinel kinds for local index errors. They are only logged; lookups never
// surface them.
var (
	ErrUnavailable = errors.New("local index unavailable")
	ErrCorrupt     = errors.New("local index corrupt")
)
