package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so callers can branch with errors.Is instead of string matching:
// - ErrNotFound: key does not exist (or has expired) in the store
// - ErrUnavailable: backing service is unreachable or timed out
// - ErrInvalidState: stored value cannot be decoded into the expected shape
var (
	ErrNotFound     = errors.New("not found")
	ErrUnavailable  = errors.New("unavailable")
	ErrInvalidState = errors.New("invalid state")
)
