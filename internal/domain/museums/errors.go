package museums

import "errors"

// ErrNotFound indicates the museum row does not exist.
var ErrNotFound = errors.New("museum not found")
