package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
	"github.com/rowad-platform/merit-api/pkg/response"
)

type studentService interface {
	Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	GetByUser(ctx context.Context, userID string) (*models.Student, error)
	List(ctx context.Context, className string) ([]models.Student, error)
	Delete(ctx context.Context, id string) error
}

// StudentHandler exposes the student registry endpoints.
type StudentHandler struct {
	students studentService
}

// NewStudentHandler constructs a StudentHandler.
func NewStudentHandler(students studentService) *StudentHandler {
	return &StudentHandler{students: students}
}

// List godoc
// @Summary List students
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param class_name query string false "Restrict to one class"
// @Success 200 {object} response.Envelope{data=[]models.Student}
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, err := h.students.List(c.Request.Context(), c.Query("class_name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Get godoc
// @Summary Fetch a student
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope{data=models.Student}
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// ByUser godoc
// @Summary Student record for an account
// @Description Returns the student record linked to a user account.
// @Tags students
// @Produce json
// @Security BearerAuth
// @Param user_id path string true "User ID"
// @Success 200 {object} response.Envelope{data=models.Student}
// @Failure 404 {object} response.Envelope
// @Router /students/user/{user_id} [get]
func (h *StudentHandler) ByUser(c *gin.Context) {
	student, err := h.students.GetByUser(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Create godoc
// @Summary Enroll a student
// @Tags students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateStudentRequest true "Student payload"
// @Success 201 {object} response.Envelope{data=models.Student}
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students [post]
func (h *StudentHandler) Create(c *gin.Context) {
	var req models.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request body"))
		return
	}

	student, err := h.students.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// Delete godoc
// @Summary Remove a student
// @Description Deletes the student with all of its behaviour records and the linked account.
// @Tags students
// @Security BearerAuth
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
