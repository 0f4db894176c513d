package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mergeed-api/internal/service"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
	"github.com/noah-isme/mergeed-api/pkg/response"
)

// TrainingHandler serves the professional development catalog routes.
type TrainingHandler struct {
	training *service.TrainingService
}

// NewTrainingHandler constructs a new TrainingHandler.
func NewTrainingHandler(training *service.TrainingService) *TrainingHandler {
	return &TrainingHandler{training: training}
}

// EnrollRequest is the enrollment payload.
type EnrollRequest struct {
	TeacherID  string `json:"teacher_id" binding:"required"`
	TrainingID int    `json:"training_id" binding:"required"`
}

// Modules godoc
// @Summary List training modules
// @Tags Training
// @Produce json
// @Param language query string false "Filter by language"
// @Success 200 {object} response.Envelope
// @Router /training/modules [get]
func (h *TrainingHandler) Modules(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.training.Modules(c.Query("language")))
}

// Enroll godoc
// @Summary Enroll a teacher into a training module
// @Tags Training
// @Accept json
// @Produce json
// @Param payload body EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /training/enroll [post]
func (h *TrainingHandler) Enroll(c *gin.Context) {
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid enrollment payload"))
		return
	}
	receipt, err := h.training.Enroll(req.TeacherID, req.TrainingID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, receipt)
}

// Enrollments godoc
// @Summary List a teacher's training enrollments
// @Tags Training
// @Produce json
// @Param teacher_id path string true "Teacher ID (TCH_###)"
// @Success 200 {object} response.Envelope
// @Router /training/enrollments/{teacher_id} [get]
func (h *TrainingHandler) Enrollments(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.training.Enrollments(c.Param("teacher_id")))
}
