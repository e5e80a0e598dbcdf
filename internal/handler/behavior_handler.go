package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rowad-platform/merit-api/internal/middleware"
	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
	"github.com/rowad-platform/merit-api/pkg/response"
)

type behaviorService interface {
	Record(ctx context.Context, teacherID string, req models.CreateBehaviorRequest) (*models.BehaviorRecord, error)
	Delete(ctx context.Context, id string) error
	ListForStudent(ctx context.Context, studentID string) ([]models.BehaviorRecord, error)
}

// BehaviorHandler exposes the points ledger endpoints.
type BehaviorHandler struct {
	behaviors behaviorService
}

// NewBehaviorHandler constructs a BehaviorHandler.
func NewBehaviorHandler(behaviors behaviorService) *BehaviorHandler {
	return &BehaviorHandler{behaviors: behaviors}
}

// Create godoc
// @Summary Record a behaviour
// @Description Appends a ledger entry attributed to the authenticated staff member and adjusts the student's total.
// @Tags behaviors
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateBehaviorRequest true "Behaviour payload"
// @Success 201 {object} response.Envelope{data=models.BehaviorRecord}
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /behavior [post]
func (h *BehaviorHandler) Create(c *gin.Context) {
	claims, ok := middleware.ClaimsFromContext(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrUnauthorized, "missing authentication"))
		return
	}

	var req models.CreateBehaviorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	record, err := h.behaviors.Record(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// ListByStudent godoc
// @Summary List a student's ledger
// @Tags behaviors
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope{data=[]models.BehaviorRecord}
// @Router /behavior/student/{id} [get]
func (h *BehaviorHandler) ListByStudent(c *gin.Context) {
	records, err := h.behaviors.ListForStudent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}

// Delete godoc
// @Summary Remove a ledger entry
// @Description Deletes the record and reverses its points on the student's total.
// @Tags behaviors
// @Security BearerAuth
// @Param id path string true "Record ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /behavior/{id} [delete]
func (h *BehaviorHandler) Delete(c *gin.Context) {
	if err := h.behaviors.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
