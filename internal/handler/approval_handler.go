package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/mergeed-api/internal/models"
	"github.com/noah-isme/mergeed-api/internal/service"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
	"github.com/noah-isme/mergeed-api/pkg/response"
)

// ApprovalHandler wires officer review services to HTTP routes.
type ApprovalHandler struct {
	approvals *service.ApprovalService
}

// NewApprovalHandler constructs a new ApprovalHandler.
func NewApprovalHandler(approvals *service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvals: approvals}
}

func submissionID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, "submission id must be numeric")
	}
	return id, nil
}

// List godoc
// @Summary List submissions for review
// @Tags Approvals
// @Produce json
// @Param status query string false "Filter by status (Pending/Approved/Rejected)"
// @Success 200 {object} response.Envelope
// @Router /approvals/submissions [get]
func (h *ApprovalHandler) List(c *gin.Context) {
	subs, err := h.approvals.List(c.Request.Context(), c.Query("status"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, subs)
}

// Get godoc
// @Summary Get a submission
// @Tags Approvals
// @Produce json
// @Param id path int true "Submission ID"
// @Success 200 {object} response.Envelope
// @Router /approvals/submissions/{id} [get]
func (h *ApprovalHandler) Get(c *gin.Context) {
	id, err := submissionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	sub, err := h.approvals.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub)
}

// Approve godoc
// @Summary Approve a submission
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param payload body service.ReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /approvals/submissions/{id}/approve [post]
func (h *ApprovalHandler) Approve(c *gin.Context) {
	h.review(c, h.approvals.Approve)
}

// Reject godoc
// @Summary Reject a submission
// @Tags Approvals
// @Accept json
// @Produce json
// @Param id path int true "Submission ID"
// @Param payload body service.ReviewRequest true "Review payload"
// @Success 200 {object} response.Envelope
// @Router /approvals/submissions/{id}/reject [post]
func (h *ApprovalHandler) Reject(c *gin.Context) {
	h.review(c, h.approvals.Reject)
}

func (h *ApprovalHandler) review(c *gin.Context, action func(context.Context, int64, service.ReviewRequest) (*models.Submission, error)) {
	id, err := submissionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req service.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
		return
	}
	sub, err := action(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sub)
}

// Export godoc
// @Summary Export a submission as PDF
// @Tags Approvals
// @Produce application/pdf
// @Param id path int true "Submission ID"
// @Success 200 {file} binary
// @Router /approvals/submissions/{id}/export [get]
func (h *ApprovalHandler) Export(c *gin.Context) {
	id, err := submissionID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	payload, err := h.approvals.ExportPDF(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=submission_%d.pdf", id))
	c.Data(http.StatusOK, "application/pdf", payload)
}

// Stats godoc
// @Summary Aggregate submission counts
// @Tags Approvals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /approvals/stats [get]
func (h *ApprovalHandler) Stats(c *gin.Context) {
	stats, err := h.approvals.Stats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}

// DistrictStats godoc
// @Summary Per-district submission aggregates
// @Tags Approvals
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /approvals/district-stats [get]
func (h *ApprovalHandler) DistrictStats(c *gin.Context) {
	stats, err := h.approvals.DistrictStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, stats)
}
