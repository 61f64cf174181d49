package artworks

import "errors"

// ErrNotFound indicates the artwork row does not exist.
var ErrNotFound = errors.New("artwork not found")

// ErrConflict indicates the store rejected an insert because another row
// already claimed the same key. Expected under concurrent first-time scans
// and absorbed by the coordinator, never surfaced to callers.
var ErrConflict = errors.New("artwork insert conflict")
