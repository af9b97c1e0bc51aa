package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	imagehost "github.com/bitmark-inc/image-host"
	"github.com/bitmark-inc/image-host/log"
)

// ImageEngine is the set of image operations served over http
type ImageEngine interface {
	Upload(ctx context.Context, input imagehost.UploadInput) (imagehost.ImageRecord, error)
	List(ctx context.Context) ([]imagehost.ImageRecord, error)
	ListStrict(ctx context.Context) ([]imagehost.ImageRecord, error)
	Rename(ctx context.Context, id, title string) (imagehost.ImageRecord, error)
	Delete(ctx context.Context, id string) (imagehost.ImageRecord, error)
}

type ImageAPIServer struct {
	route          *gin.Engine
	requestTimeout time.Duration

	imageEngine    ImageEngine
	metricsHandler http.Handler
}

func NewImageAPIServer(imageEngine ImageEngine, metricsHandler http.Handler, requestTimeout time.Duration) *ImageAPIServer {
	r := gin.New()

	return &ImageAPIServer{
		route:          r,
		requestTimeout: requestTimeout,

		imageEngine:    imageEngine,
		metricsHandler: metricsHandler,
	}
}

// Run serves http until ctx is done and then shuts the server down gracefully
func (s *ImageAPIServer) Run(ctx context.Context, port string) error {
	srv := &http.Server{
		Addr:              port,
		Handler:           s.route,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       s.requestTimeout,
		WriteTimeout:      s.requestTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("image api server started", zap.String("port", port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}
