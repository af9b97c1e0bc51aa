package imagehost

import (
	"errors"
)

// client input errors
var (
	ErrMissingImage      = errors.New("missing image")
	ErrUnsupportedFormat = errors.New("unsupported image format")
	ErrInvalidPayload    = errors.New("invalid image payload")
)

var (
	ErrNotFound     = errors.New("image not found")
	ErrNoRecords    = errors.New("no image records")
	ErrStoreFailure = errors.New("image store failure")
)
