package imagehost

import (
	"errors"

	"github.com/uber-go/tally/v4"

	"github.com/bitmark-inc/image-host/assetHost"
)

const (
	metricImagesUploaded    = "images_uploaded"
	metricUploadFailures    = "image_upload_failures"
	metricImagesRenamed     = "images_renamed"
	metricImagesDeleted     = "images_deleted"
	metricOrphanedAssets    = "orphaned_assets"
	metricFailureReasonName = "reason"
)

// failureReason turns an error into a low cardinality metric tag
func failureReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingImage):
		return "missing_image"
	case errors.Is(err, ErrUnsupportedFormat):
		return "unsupported_format"
	case errors.Is(err, ErrInvalidPayload):
		return "invalid_payload"
	case errors.Is(err, assetHost.ErrHostUnavailable):
		return "host_unavailable"
	case errors.Is(err, assetHost.ErrHostRejected):
		return "host_rejected"
	case errors.Is(err, ErrStoreFailure):
		return "store_failure"
	}
	return "unknown"
}

func countUploadFailure(scope tally.Scope, err error) {
	scope.Tagged(map[string]string{metricFailureReasonName: failureReason(err)}).
		Counter(metricUploadFailures).Inc(1)
}
