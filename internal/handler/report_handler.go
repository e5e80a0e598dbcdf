package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rowad-platform/merit-api/internal/models"
	"github.com/rowad-platform/merit-api/internal/service"
	"github.com/rowad-platform/merit-api/pkg/response"
)

type reportService interface {
	Statistics(ctx context.Context) (*models.Statistics, bool, error)
	TopByClass(ctx context.Context) (map[string][]models.Student, error)
	Report(ctx context.Context, kind models.ReportKind, className string) ([]models.StudentReportRow, error)
	Export(ctx context.Context, kind models.ReportKind, className string, format service.ReportFormat) ([]byte, string, error)
}

// ReportHandler exposes statistics and report endpoints.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// Statistics godoc
// @Summary Overview statistics
// @Description Returns counters, the leaderboard and recent activity. Served from cache when fresh.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.Statistics}
// @Router /statistics [get]
func (h *ReportHandler) Statistics(c *gin.Context) {
	stats, cached, err := h.reports.Statistics(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats, nil, map[string]interface{}{"cached": cached})
}

// TopByClass godoc
// @Summary Class leaderboards
// @Description Returns the top five students of every class.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /students/top/by-class [get]
func (h *ReportHandler) TopByClass(c *gin.Context) {
	grouped, err := h.reports.TopByClass(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grouped, nil)
}

// Report godoc
// @Summary Window report
// @Description Per-student behaviour breakdown over the weekly or monthly window.
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param kind path string true "Report window" Enums(weekly, monthly)
// @Param class_name query string false "Restrict to one class"
// @Success 200 {object} response.Envelope{data=[]models.StudentReportRow}
// @Failure 400 {object} response.Envelope
// @Router /reports/{kind} [get]
func (h *ReportHandler) Report(c *gin.Context) {
	rows, err := h.reports.Report(c.Request.Context(), models.ReportKind(c.Param("kind")), c.Query("class_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Export godoc
// @Summary Export a window report
// @Tags reports
// @Produce octet-stream
// @Security BearerAuth
// @Param kind path string true "Report window" Enums(weekly, monthly)
// @Param format query string false "Output format" Enums(csv, pdf) default(csv)
// @Param class_name query string false "Restrict to one class"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/{kind}/export [get]
func (h *ReportHandler) Export(c *gin.Context) {
	format := service.ReportFormat(c.DefaultQuery("format", string(service.FormatCSV)))

	payload, filename, err := h.reports.Export(c.Request.Context(), models.ReportKind(c.Param("kind")), c.Query("class_name"), format)
	if err != nil {
		response.Error(c, err)
		return
	}

	contentType := "text/csv"
	if format == service.FormatPDF {
		contentType = "application/pdf"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}
