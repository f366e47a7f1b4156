package types

import "errors"

// ErrInvalidFormat is returned for malformed DIDs, identity or grant payloads.
var ErrInvalidFormat = errors.New("invalid format")
