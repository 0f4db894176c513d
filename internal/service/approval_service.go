package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
	"github.com/noah-isme/mergeed-api/pkg/export"
)

const (
	statsCacheKey         = "stats:totals"
	districtStatsCacheKey = "stats:district"
)

type submissionStore interface {
	FindByID(ctx context.Context, id int64) (*models.Submission, error)
	ListAll(ctx context.Context) ([]models.Submission, error)
	ListByStatus(ctx context.Context, status string) ([]models.Submission, error)
	UpdateStatus(ctx context.Context, id int64, status string, officerID, feedback *string) (bool, error)
	Stats(ctx context.Context) (models.SubmissionStats, error)
	DistrictStats(ctx context.Context) ([]models.DistrictStats, error)
}

// ReviewRequest is the officer action payload for approve and reject.
type ReviewRequest struct {
	OfficerID string  `json:"officer_id" validate:"required"`
	Feedback  *string `json:"feedback"`
}

// ApprovalService exposes officer actions and review listings over the
// submission store.
type ApprovalService struct {
	store     submissionStore
	cache     *CacheService
	exporter  *export.PDFExporter
	validator *validator.Validate
	logger    *zap.Logger
}

// NewApprovalService constructs an ApprovalService.
func NewApprovalService(store submissionStore, cache *CacheService, exporter *export.PDFExporter, validate *validator.Validate, logger *zap.Logger) *ApprovalService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ApprovalService{store: store, cache: cache, exporter: exporter, validator: validate, logger: logger}
}

// List returns submissions, optionally filtered by status, newest first.
func (s *ApprovalService) List(ctx context.Context, status string) ([]models.Submission, error) {
	var (
		subs []models.Submission
		err  error
	)
	if status != "" {
		subs, err = s.store.ListByStatus(ctx, status)
	} else {
		subs, err = s.store.ListAll(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return subs, nil
}

// Get returns a single submission.
func (s *ApprovalService) Get(ctx context.Context, id int64) (*models.Submission, error) {
	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return sub, nil
}

// Approve marks the submission approved and returns the updated record.
func (s *ApprovalService) Approve(ctx context.Context, id int64, req ReviewRequest) (*models.Submission, error) {
	return s.review(ctx, id, models.StatusApproved, req)
}

// Reject marks the submission rejected and returns the updated record.
func (s *ApprovalService) Reject(ctx context.Context, id int64, req ReviewRequest) (*models.Submission, error) {
	return s.review(ctx, id, models.StatusRejected, req)
}

// review overwrites the review fields regardless of current status:
// repeated officer actions are allowed and the last write wins.
func (s *ApprovalService) review(ctx context.Context, id int64, status string, req ReviewRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}

	officer := req.OfficerID
	ok, err := s.store.UpdateStatus(ctx, id, status, &officer, req.Feedback)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update submission status")
	}
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "submission not found")
	}

	if s.cache != nil {
		s.cache.Invalidate(ctx, statsCacheKey, districtStatsCacheKey)
	}

	sub, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reload submission")
	}
	s.logger.Info("submission reviewed",
		zap.Int64("submission_id", id),
		zap.String("status", status),
		zap.String("officer_id", req.OfficerID))
	return sub, nil
}

// Stats returns aggregate counts, served from cache when warm.
func (s *ApprovalService) Stats(ctx context.Context) (models.SubmissionStats, error) {
	var cached models.SubmissionStats
	if s.cache.Get(ctx, statsCacheKey, &cached) {
		return cached, nil
	}

	stats, err := s.store.Stats(ctx)
	if err != nil {
		return models.SubmissionStats{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute stats")
	}
	s.cache.Set(ctx, statsCacheKey, stats)
	return stats, nil
}

// DistrictStats returns per-district aggregates, served from cache when warm.
func (s *ApprovalService) DistrictStats(ctx context.Context) ([]models.DistrictStats, error) {
	var cached []models.DistrictStats
	if s.cache.Get(ctx, districtStatsCacheKey, &cached) {
		return cached, nil
	}

	stats, err := s.store.DistrictStats(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute district stats")
	}
	if stats == nil {
		stats = []models.DistrictStats{}
	}
	s.cache.Set(ctx, districtStatsCacheKey, stats)
	return stats, nil
}

// ExportPDF renders a submission as a review PDF.
func (s *ApprovalService) ExportPDF(ctx context.Context, id int64) ([]byte, error) {
	sub, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.exporter == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "pdf export not configured")
	}

	doc := export.SubmissionDocument{
		ID:             sub.ID,
		TeacherID:      sub.TeacherID,
		Problem:        sub.Problem,
		Language:       sub.Language,
		Infrastructure: sub.Infrastructure,
		Status:         sub.Status,
		RawMessage:     sub.RawMessage,
		Strategy:       sub.Strategy,
		CreatedAt:      sub.CreatedAt.Format(time.RFC3339),
	}
	if sub.DietOfficer != nil {
		doc.DietOfficer = *sub.DietOfficer
	}
	if sub.Feedback != nil {
		doc.Feedback = *sub.Feedback
	}

	payload, err := s.exporter.Render(doc)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to export submission %d", id))
	}
	return payload, nil
}
