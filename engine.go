package imagehost

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uber-go/tally/v4"
	"go.uber.org/zap"

	"github.com/bitmark-inc/image-host/assetHost"
	"github.com/bitmark-inc/image-host/log"
	"github.com/bitmark-inc/image-host/traceutils"
)

const releaseAssetTimeout = 30 * time.Second

// ImageEngine runs the image ingestion and lifecycle operations on top of
// a record store and a remote asset host.
type ImageEngine struct {
	store   Store
	host    assetHost.Host
	metrics tally.Scope
}

func NewImageEngine(store Store, host assetHost.Host, metrics tally.Scope) *ImageEngine {
	if metrics == nil {
		metrics = tally.NoopScope
	}

	return &ImageEngine{
		store:   store,
		host:    host,
		metrics: metrics,
	}
}

// Upload validates the payload, uploads it to the asset host and then saves a record.
// Nothing is saved unless the upload succeeded.
func (e *ImageEngine) Upload(ctx context.Context, input UploadInput) (ImageRecord, error) {
	payload, err := ParseImagePayload(input.Image)
	if err != nil {
		countUploadFailure(e.metrics, err)
		return ImageRecord{}, err
	}

	title := input.TitleValue()
	result, err := e.host.Upload(ctx, assetHost.Asset{
		Name:     payload.FileName(uuid.New().String()),
		Title:    title,
		MimeType: payload.MimeType,
		Data:     payload.Data,
	})
	if err != nil {
		countUploadFailure(e.metrics, err)
		return ImageRecord{}, err
	}

	record, err := e.store.CreateImage(ctx, ImageRecord{
		Title:    title,
		ImageURL: result.URL,
		AssetID:  result.AssetID,
	})
	if err != nil {
		countUploadFailure(e.metrics, err)
		log.Warn("clean uploaded asset due to store failure", zap.String("assetID", result.AssetID), zap.Error(err))
		e.releaseAsset(ctx, result.AssetID)
		return ImageRecord{}, err
	}

	e.metrics.Counter(metricImagesUploaded).Inc(1)
	log.Info("image uploaded", zap.String("id", record.ID), zap.String("assetID", record.AssetID))

	return record, nil
}

// List returns every image record. An empty store gives an empty slice.
func (e *ImageEngine) List(ctx context.Context) ([]ImageRecord, error) {
	return e.store.GetImages(ctx)
}

// ListStrict behaves like List but reports ErrNoRecords for an empty store
func (e *ImageEngine) ListStrict(ctx context.Context) ([]ImageRecord, error) {
	records, err := e.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrNoRecords
	}

	return records, nil
}

// Rename replaces the title of an image record
func (e *ImageEngine) Rename(ctx context.Context, id, title string) (ImageRecord, error) {
	record, err := e.store.UpdateImageTitle(ctx, id, title)
	if err != nil {
		return ImageRecord{}, err
	}

	e.metrics.Counter(metricImagesRenamed).Inc(1)
	log.Info("image renamed", zap.String("id", id))

	return record, nil
}

// Delete removes an image record and then its remote asset.
// The local delete is authoritative: a failed remote delete leaves an orphaned
// asset behind and is not rolled back.
func (e *ImageEngine) Delete(ctx context.Context, id string) (ImageRecord, error) {
	record, err := e.store.DeleteImage(ctx, id)
	if err != nil {
		return ImageRecord{}, err
	}

	e.metrics.Counter(metricImagesDeleted).Inc(1)
	log.Info("image record deleted", zap.String("id", id), zap.String("assetID", record.AssetID))

	e.releaseAsset(ctx, record.AssetID)

	return record, nil
}

// releaseAsset deletes a remote asset once and only logs failures.
// It runs detached from the caller's cancellation so an aborted request does
// not orphan the asset.
func (e *ImageEngine) releaseAsset(ctx context.Context, assetID string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseAssetTimeout)
	defer cancel()

	err := e.host.Delete(ctx, assetID)
	if err == nil {
		return
	}

	if errors.Is(err, assetHost.ErrAssetNotFound) {
		log.Warn("remote asset already gone", zap.String("assetID", assetID))
		return
	}

	e.metrics.Counter(metricOrphanedAssets).Inc(1)
	log.Error("fail to delete remote asset", zap.String("assetID", assetID), zap.Error(err))
	traceutils.CaptureContextException(ctx, err, map[string]string{"asset_id": assetID})
}
