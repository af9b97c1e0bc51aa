package main

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	imagehost "github.com/bitmark-inc/image-host"
	"github.com/bitmark-inc/image-host/traceutils"
)

type ListImagesParams struct {
	// Strict reports an empty store as not found instead of an empty list
	Strict bool `form:"strict"`
}

// UploadImage uploads a data uri image to the image host and saves its record
func (s *ImageAPIServer) UploadImage(c *gin.Context) {
	traceutils.SetHandlerTag(c, "UploadImage")

	var input imagehost.UploadInput
	// an empty body is treated as an upload without image
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	record, err := s.imageEngine.Upload(c.Request.Context(), input)
	if err != nil {
		abortWithImageError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"ok":    1,
		"image": record,
	})
}

// ListImages returns all image records
func (s *ImageAPIServer) ListImages(c *gin.Context) {
	traceutils.SetHandlerTag(c, "ListImages")

	var params ListImagesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	list := s.imageEngine.List
	if params.Strict {
		list = s.imageEngine.ListStrict
	}

	records, err := list(c.Request.Context())
	if err != nil {
		abortWithImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"images": records,
	})
}

// RenameImage updates the title of an image
func (s *ImageAPIServer) RenameImage(c *gin.Context) {
	traceutils.SetHandlerTag(c, "RenameImage")

	var input imagehost.RenameInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abortWithError(c, http.StatusBadRequest, "invalid parameters", err)
		return
	}

	record, err := s.imageEngine.Rename(c.Request.Context(), c.Param("id"), *input.Title)
	if err != nil {
		abortWithImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":    1,
		"image": record,
	})
}

// DeleteImage deletes an image record and its hosted asset
func (s *ImageAPIServer) DeleteImage(c *gin.Context) {
	traceutils.SetHandlerTag(c, "DeleteImage")

	if _, err := s.imageEngine.Delete(c.Request.Context(), c.Param("id")); err != nil {
		abortWithImageError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": 1})
}
