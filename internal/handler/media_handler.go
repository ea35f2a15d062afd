package handler

import (
	"io"
	"mime/multipart"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/service"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// MediaHandler handles media staging uploads.
type MediaHandler struct {
	mediaService *service.MediaService
}

// NewMediaHandler creates a new MediaHandler.
func NewMediaHandler(mediaService *service.MediaService) *MediaHandler {
	return &MediaHandler{mediaService: mediaService}
}

// Upload handles POST /v1/admin/media (multipart field "images", repeated)
func (h *MediaHandler) Upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		respondError(c, &catalog.Error{Kind: catalog.ErrMissingRequiredField, Field: "images"})
		return
	}

	headers := form.File["images"]
	uploads := make([]service.Upload, len(headers))
	for i, fh := range headers {
		uploads[i] = toUpload(fh)
	}

	urls, err := h.mediaService.UploadImages(c.Request.Context(), uploads)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, http.StatusCreated, "Media uploaded", gin.H{"urls": urls})
}

func toUpload(fh *multipart.FileHeader) service.Upload {
	return service.Upload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}
