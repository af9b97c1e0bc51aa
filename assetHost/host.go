package assetHost

import (
	"context"
)

// Asset is an image to be stored on a remote host
type Asset struct {
	Name     string
	Title    string
	MimeType string
	Data     []byte
}

// UploadResult is what the remote host returns for a stored asset
type UploadResult struct {
	URL     string
	AssetID string
}

// Host stores image bytes remotely and gives back a durable URL and an asset id
type Host interface {
	Upload(ctx context.Context, asset Asset) (UploadResult, error)
	Delete(ctx context.Context, assetID string) error
}
