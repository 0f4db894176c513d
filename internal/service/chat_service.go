package service

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

type submissionCreator interface {
	Create(ctx context.Context, sub *models.Submission) (int64, error)
}

// ChatRequest is the teacher-facing chat payload.
type ChatRequest struct {
	TeacherID string `json:"teacher_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

// ChatResponse carries the generated strategy back to the teacher.
// SubmissionID 0 means the record was not persisted.
type ChatResponse struct {
	Success         bool                   `json:"success"`
	SubmissionID    int64                  `json:"submission_id"`
	Strategy        string                 `json:"strategy"`
	ExtractedParams models.ExtractedParams `json:"extracted_params"`
}

// ChatService orchestrates the submission pipeline: extraction, strategy
// generation and persistence. The teacher always gets a strategy back;
// persistence failure only zeroes the submission id.
type ChatService struct {
	extraction  *ExtractionService
	strategy    *StrategyService
	submissions submissionCreator
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewChatService constructs a ChatService.
func NewChatService(extraction *ExtractionService, strategy *StrategyService, submissions submissionCreator, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ChatService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChatService{
		extraction:  extraction,
		strategy:    strategy,
		submissions: submissions,
		cache:       cache,
		validator:   validate,
		logger:      logger,
	}
}

// SubmitChat runs the full pipeline for one message.
func (s *ChatService) SubmitChat(ctx context.Context, req ChatRequest) (resp ChatResponse, err error) {
	if vErr := s.validator.Struct(req); vErr != nil {
		return ChatResponse{}, appErrors.Wrap(vErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid chat payload")
	}

	// The pipeline must answer the teacher even if it blows up halfway:
	// an unexpected failure degrades to the offline document instead of
	// surfacing a request error.
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("chat pipeline failure", zap.Any("panic", r))
			resp = s.offlineResponse(req.Message, fmt.Sprintf("%v", r))
			err = nil
		}
	}()

	if s.extraction == nil || s.strategy == nil {
		return s.offlineResponse(req.Message, "pipeline not configured"), nil
	}

	params := s.extraction.Extract(ctx, req.Message)
	strategy := s.strategy.Generate(ctx, params)

	submissionID := int64(0)
	sub := &models.Submission{
		TeacherID:      req.TeacherID,
		Problem:        params.Problem,
		Language:       params.Language,
		Infrastructure: params.Infrastructure,
		RawMessage:     req.Message,
		Strategy:       strategy,
		Status:         models.StatusPending,
	}
	if id, createErr := s.submissions.Create(ctx, sub); createErr != nil {
		// Degraded success: the strategy still reaches the teacher.
		s.logger.Error("submission persistence failed", zap.Error(createErr), zap.String("teacher_id", req.TeacherID))
	} else {
		submissionID = id
		if s.cache != nil {
			s.cache.Invalidate(ctx, statsCacheKey, districtStatsCacheKey)
		}
	}

	return ChatResponse{
		Success:         true,
		SubmissionID:    submissionID,
		Strategy:        strategy,
		ExtractedParams: params,
	}, nil
}

func (s *ChatService) offlineResponse(message, reason string) ChatResponse {
	return ChatResponse{
		Success:      false,
		SubmissionID: 0,
		Strategy:     OfflineStrategy(message),
		ExtractedParams: models.ExtractedParams{
			Problem:        "general",
			Language:       "English",
			Infrastructure: models.InfrastructureMedium,
			RawMessage:     message,
			Error:          reason,
		},
	}
}
