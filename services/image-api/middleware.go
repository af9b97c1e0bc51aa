package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/log"
	"github.com/bitmark-inc/image-host/traceutils"
)

const requestIDHeader = "X-Request-ID"

// RequestLogger tags each request with a request id and logs its outcome
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Header(requestIDHeader, requestID)
		traceutils.AddScopeTag(c, "request_id", requestID)

		c.Next()

		fields := []zap.Field{
			zap.String("requestID", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			log.SourceAPI,
		}

		if c.Writer.Status() >= http.StatusInternalServerError {
			log.Warn("http request failed", fields...)
		} else {
			log.Info("http request served", fields...)
		}
	}
}

// HandlePanics answers a recovered panic with a json error.
// The panic is not sent to sentry here, sentrygin has reported it before repanicking.
func HandlePanics() gin.RecoveryFunc {
	return func(c *gin.Context, recovered any) {
		err, ok := recovered.(error)
		if !ok {
			err = fmt.Errorf("panic: %v", recovered)
		}

		log.Error("recovered from panic", zap.Error(err),
			zap.String("request", traceutils.DumpRequestHeaders(c.Request)), log.SourceAPI)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"message": "internal server error",
		})
	}
}
