package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

type teacherDirectory interface {
	Register(ctx context.Context, teacher *models.Teacher) error
	FindByTeacherID(ctx context.Context, teacherID string) (*models.Teacher, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]models.Teacher, error)
}

type teacherSubmissionLister interface {
	ListByTeacher(ctx context.Context, teacherID string) ([]models.Submission, error)
}

// RegisterTeacherRequest represents the payload for registering teachers.
type RegisterTeacherRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	School   string `json:"school" validate:"required"`
	District string `json:"district" validate:"required"`
}

// TeacherSubmissionView is the teacher-facing submission listing entry,
// carrying a short strategy preview alongside the full document.
type TeacherSubmissionView struct {
	ID              int64  `json:"id"`
	TeacherID       string `json:"teacher_id"`
	Problem         string `json:"problem"`
	Language        string `json:"language"`
	Infrastructure  string `json:"infrastructure"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at"`
	StrategyPreview string `json:"strategy_preview"`
	RawMessage      string `json:"raw_message,omitempty"`
	Strategy        string `json:"strategy,omitempty"`
}

// TeacherDirectoryService manages teacher registration and lookups.
type TeacherDirectoryService struct {
	repo        teacherDirectory
	submissions teacherSubmissionLister
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewTeacherDirectoryService constructs a TeacherDirectoryService.
func NewTeacherDirectoryService(repo teacherDirectory, submissions teacherSubmissionLister, validate *validator.Validate, logger *zap.Logger) *TeacherDirectoryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherDirectoryService{repo: repo, submissions: submissions, validator: validate, logger: logger}
}

// Register creates a new teacher and returns it with the generated
// TCH_### identifier.
func (s *TeacherDirectoryService) Register(ctx context.Context, req RegisterTeacherRequest) (*models.Teacher, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid teacher payload")
	}

	email := strings.TrimSpace(req.Email)
	exists, err := s.repo.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email already registered")
	}

	teacher := &models.Teacher{
		Name:     strings.TrimSpace(req.Name),
		Email:    email,
		School:   strings.TrimSpace(req.School),
		District: strings.TrimSpace(req.District),
	}
	if err := s.repo.Register(ctx, teacher); err != nil {
		// The repository surfaces a losing TCH_### racer as a conflict;
		// keep that status instead of flattening it to a server error.
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to register teacher")
	}

	s.logger.Info("teacher registered",
		zap.String("teacher_id", teacher.TeacherID),
		zap.String("district", teacher.District))
	return teacher, nil
}

// Get returns a teacher by the TCH_### identifier.
func (s *TeacherDirectoryService) Get(ctx context.Context, teacherID string) (*models.Teacher, error) {
	teacher, err := s.repo.FindByTeacherID(ctx, teacherID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	return teacher, nil
}

// List returns all teachers, newest first.
func (s *TeacherDirectoryService) List(ctx context.Context) ([]models.Teacher, error) {
	teachers, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teachers")
	}
	return teachers, nil
}

// Submissions returns a teacher's submission history, newest first.
func (s *TeacherDirectoryService) Submissions(ctx context.Context, teacherID string) ([]TeacherSubmissionView, error) {
	subs, err := s.submissions.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list teacher submissions")
	}

	views := make([]TeacherSubmissionView, 0, len(subs))
	for _, sub := range subs {
		views = append(views, TeacherSubmissionView{
			ID:              sub.ID,
			TeacherID:       sub.TeacherID,
			Problem:         sub.Problem,
			Language:        sub.Language,
			Infrastructure:  sub.Infrastructure,
			Status:          sub.Status,
			CreatedAt:       sub.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			StrategyPreview: strategyPreview(sub.Strategy),
			RawMessage:      sub.RawMessage,
			Strategy:        sub.Strategy,
		})
	}
	return views, nil
}

func strategyPreview(strategy string) string {
	if strategy == "" {
		return "No strategy available"
	}
	if runes := []rune(strategy); len(runes) > 100 {
		return string(runes[:100]) + "..."
	}
	return strategy
}
