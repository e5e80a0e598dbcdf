package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
	"github.com/rowad-platform/merit-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, file io.Reader) (*models.ImportSummary, error)
}

// ImportHandler accepts roster file uploads.
type ImportHandler struct {
	importer    importService
	maxFileSize int64
}

// NewImportHandler constructs an ImportHandler.
func NewImportHandler(importer importService, maxFileSize int64) *ImportHandler {
	if maxFileSize <= 0 {
		maxFileSize = 5 << 20
	}
	return &ImportHandler{importer: importer, maxFileSize: maxFileSize}
}

// Import godoc
// @Summary Import a student roster
// @Description Uploads a tabular file with name, class and optional password columns. Row failures are collected, not fatal.
// @Tags students
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Roster file"
// @Success 200 {object} response.Envelope{data=models.ImportSummary}
// @Failure 400 {object} response.Envelope
// @Router /students/import [post]
func (h *ImportHandler) Import(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "missing roster file"))
		return
	}
	if header.Size > h.maxFileSize {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "roster file is too large"))
		return
	}

	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not open roster file"))
		return
	}
	defer file.Close()

	summary, err := h.importer.Import(c.Request.Context(), file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
