package http

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/anhtran/folio-api/internal/application/service"
	"github.com/anhtran/folio-api/pkg/apperror"
	"github.com/anhtran/folio-api/pkg/logger"
)

const uploadFolder = "portfolio"

type UploadHandler struct {
	uploader service.Uploader
	logger   logger.Logger
}

func NewUploadHandler(uploader service.Uploader, log logger.Logger) *UploadHandler {
	return &UploadHandler{uploader: uploader, logger: log}
}

// Upload proxies a multipart image to the media host and returns its durable
// URL. An upload failure is returned to the caller; the form keeps its draft
// and may retry.
func (h *UploadHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	publicID := fmt.Sprintf("%s/%s%s", uploadFolder, uuid.NewString(), ext)

	url, err := h.uploader.Upload(c.Request.Context(), file, uploadFolder, publicID)
	if err != nil {
		c.Error(apperror.NewUnavailable("image upload failed", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{"url": url})
}
