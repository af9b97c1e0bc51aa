package main

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	imagehost "github.com/bitmark-inc/image-host"
	"github.com/bitmark-inc/image-host/assetHost"
	"github.com/bitmark-inc/image-host/log"
	"github.com/bitmark-inc/image-host/traceutils"
)

func abortWithError(c *gin.Context, code int, message string, traceErr error) {
	if code >= http.StatusInternalServerError {
		log.Error(message, zap.Error(traceErr), log.SourceAPI)
		traceutils.CaptureException(c, traceErr)
	} else {
		log.Debug(message, zap.Error(traceErr), log.SourceAPI)
	}

	c.AbortWithStatusJSON(code, gin.H{
		"message": message,
	})
}

// abortWithImageError maps an image operation error to its http status
func abortWithImageError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, imagehost.ErrMissingImage):
		abortWithError(c, http.StatusBadRequest, "image is required", err)
	case errors.Is(err, imagehost.ErrUnsupportedFormat):
		abortWithError(c, http.StatusUnsupportedMediaType, "unsupported image format. only jpeg and png data uris are accepted", err)
	case errors.Is(err, imagehost.ErrInvalidPayload):
		abortWithError(c, http.StatusBadRequest, "image is not valid base64 data", err)
	case errors.Is(err, imagehost.ErrNotFound):
		abortWithError(c, http.StatusNotFound, "image not found", err)
	case errors.Is(err, imagehost.ErrNoRecords):
		abortWithError(c, http.StatusNotFound, "no images", err)
	case errors.Is(err, assetHost.ErrHostUnavailable):
		abortWithError(c, http.StatusBadGateway, "image host is unavailable", err)
	case errors.Is(err, assetHost.ErrHostRejected):
		abortWithError(c, http.StatusBadGateway, "image host rejected the image", err)
	case errors.Is(err, imagehost.ErrStoreFailure):
		abortWithError(c, http.StatusInternalServerError, "image store failure", err)
	default:
		abortWithError(c, http.StatusInternalServerError, "internal server error", err)
	}
}
