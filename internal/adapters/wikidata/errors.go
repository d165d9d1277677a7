package wikidata

import "errors"

// Sentinel errors for knowledge-graph calls. The client logs them and
// reports "no data" to its callers.
var (
	ErrStatus        = errors.New("unexpected status")
	ErrDecode        = errors.New("malformed response")
	ErrEntityMissing = errors.New("entity missing from response")
)
