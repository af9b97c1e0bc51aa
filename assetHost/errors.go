package assetHost

import (
	"errors"
)

var (
	ErrHostUnavailable = errors.New("asset host unavailable")
	ErrHostRejected    = errors.New("asset host rejected the request")
	ErrAssetNotFound   = errors.New("asset not found")
)
