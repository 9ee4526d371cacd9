package store

import "errors"

// ErrNotFound is returned by lookups that match no row. Callers distinguish
// it from operational store failures.
var ErrNotFound = errors.New("store: not found")
