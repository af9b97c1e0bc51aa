package assetHost

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cloudflare/cloudflare-go"
	"github.com/fatih/structs"
	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/log"
)

const CloudflareImageDeliverURL = "https://imagedelivery.net/%s/%s/public"

// uploadMetadata is attached to every image uploaded to cloudflare
type uploadMetadata struct {
	Title    string `structs:"title"`
	MimeType string `structs:"mime_type"`
}

type CloudflareHost struct {
	cloudflareAccountHash string
	cloudflareAccountID   *cloudflare.ResourceContainer
	cloudflareAPI         *cloudflare.API
}

// NewCloudflareHost creates a cloudflare images client. Requests are never retried.
func NewCloudflareHost(cloudflareAccountHash, cloudflareAccountID, cloudflareAPIToken string, debug bool, opts ...cloudflare.Option) (*CloudflareHost, error) {
	opts = append([]cloudflare.Option{
		cloudflare.Debug(debug),
		cloudflare.UsingLogger(log.CloudflareLogger()),
		cloudflare.UsingRetryPolicy(0, 0, 0),
	}, opts...)

	cloudflareAPI, err := cloudflare.NewWithAPIToken(cloudflareAPIToken, opts...)
	if err != nil {
		return nil, err
	}

	accRes := &cloudflare.ResourceContainer{
		Level:      cloudflare.AccountRouteLevel,
		Identifier: cloudflareAccountID,
		Type:       cloudflare.AccountType,
	}

	return &CloudflareHost{
		cloudflareAccountHash: cloudflareAccountHash,
		cloudflareAccountID:   accRes,
		cloudflareAPI:         cloudflareAPI,
	}, nil
}

// Upload sends the asset bytes to cloudflare images and returns its delivery url
func (h *CloudflareHost) Upload(ctx context.Context, asset Asset) (UploadResult, error) {
	uploadStartTime := time.Now()

	i, err := h.cloudflareAPI.UploadImage(ctx, h.cloudflareAccountID, cloudflare.UploadImageParams{
		File: io.NopCloser(bytes.NewReader(asset.Data)),
		Name: asset.Name,
		Metadata: structs.Map(uploadMetadata{
			Title:    asset.Title,
			MimeType: asset.MimeType,
		}),
	})
	if err != nil {
		log.Warn("fail to upload image to cloudflare",
			zap.String("name", asset.Name), zap.Error(err), log.SourceCloudflare)
		return UploadResult{}, classifyError(err)
	}

	log.Debug("image uploaded to cloudflare",
		zap.String("imageID", i.ID),
		zap.Int("imageSize", len(asset.Data)),
		zap.Duration("duration", time.Since(uploadStartTime)),
		log.SourceCloudflare)

	return UploadResult{
		URL:     h.deliveryURL(i),
		AssetID: i.ID,
	}, nil
}

// Delete removes an uploaded image from cloudflare
func (h *CloudflareHost) Delete(ctx context.Context, assetID string) error {
	if err := h.cloudflareAPI.DeleteImage(ctx, h.cloudflareAccountID, assetID); err != nil {
		return classifyError(err)
	}

	log.Debug("image deleted from cloudflare", zap.String("imageID", assetID), log.SourceCloudflare)
	return nil
}

func (h *CloudflareHost) deliveryURL(i cloudflare.Image) string {
	if len(i.Variants) > 0 {
		return i.Variants[0]
	}
	return fmt.Sprintf(CloudflareImageDeliverURL, h.cloudflareAccountHash, i.ID)
}

// classifyError maps cloudflare errors to host errors and keeps the original in the chain
func classifyError(err error) error {
	var (
		notFoundErr       *cloudflare.NotFoundError
		requestErr        *cloudflare.RequestError
		authenticationErr *cloudflare.AuthenticationError
		authorizationErr  *cloudflare.AuthorizationError
	)

	switch {
	case errors.As(err, &notFoundErr):
		return fmt.Errorf("%w: %w", ErrAssetNotFound, err)
	case errors.As(err, &requestErr):
		log.Debug("caught cloudflare request error",
			zap.Any("codes", requestErr.ErrorCodes()), zap.Any("msg", requestErr.ErrorMessages()))
		return fmt.Errorf("%w: %w", ErrHostRejected, err)
	case errors.As(err, &authenticationErr), errors.As(err, &authorizationErr):
		return fmt.Errorf("%w: %w", ErrHostRejected, err)
	default:
		// rate limits, 5xx and transport failures
		return fmt.Errorf("%w: %w", ErrHostUnavailable, err)
	}
}
