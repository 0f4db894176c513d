package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

// trainingCatalog is the static module catalog. Enrollment is mocked:
// receipts are issued but nothing is persisted.
var trainingCatalog = []models.TrainingModule{
	{
		ID:          1,
		Title:       "Effective Classroom Management",
		Description: "Learn techniques for managing diverse classrooms",
		Language:    "Multilingual",
		Duration:    "4 weeks",
		Level:       "Beginner",
	},
	{
		ID:          2,
		Title:       "Bengali Language Teaching Methods",
		Description: "Modern approaches to teaching Bengali",
		Language:    "Bengali",
		Duration:    "6 weeks",
		Level:       "Intermediate",
	},
	{
		ID:          3,
		Title:       "Digital Teaching Tools",
		Description: "Using technology in low-resource classrooms",
		Language:    "English",
		Duration:    "3 weeks",
		Level:       "Beginner",
	},
	{
		ID:          4,
		Title:       "Student Engagement Strategies",
		Description: "Keeping students motivated and engaged",
		Language:    "Hindi",
		Duration:    "5 weeks",
		Level:       "Advanced",
	},
}

// TrainingService serves the professional development catalog.
type TrainingService struct {
	enabled bool
	logger  *zap.Logger
	now     func() time.Time
}

// NewTrainingService constructs a TrainingService.
func NewTrainingService(enabled bool, logger *zap.Logger) *TrainingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrainingService{enabled: enabled, logger: logger, now: time.Now}
}

// Enabled reports whether the training catalog is being served.
func (s *TrainingService) Enabled() bool {
	return s != nil && s.enabled
}

// Modules lists catalog entries, optionally filtered by language.
// Multilingual modules match every language filter.
func (s *TrainingService) Modules(language string) []models.TrainingModule {
	if language == "" {
		out := make([]models.TrainingModule, len(trainingCatalog))
		copy(out, trainingCatalog)
		return out
	}

	filter := strings.ToLower(language)
	out := make([]models.TrainingModule, 0, len(trainingCatalog))
	for _, module := range trainingCatalog {
		lang := strings.ToLower(module.Language)
		if lang == filter || lang == "multilingual" {
			out = append(out, module)
		}
	}
	return out
}

// Enroll issues an enrollment receipt for a catalog module.
func (s *TrainingService) Enroll(teacherID string, trainingID int) (*models.EnrollmentReceipt, error) {
	found := false
	for _, module := range trainingCatalog {
		if module.ID == trainingID {
			found = true
			break
		}
	}
	if !found {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "training module not found")
	}

	receipt := &models.EnrollmentReceipt{
		ReceiptID:      uuid.NewString(),
		TeacherID:      teacherID,
		TrainingID:     trainingID,
		EnrollmentDate: s.now().Format("2006-01-02"),
	}
	s.logger.Info("training enrollment",
		zap.String("teacher_id", teacherID),
		zap.Int("training_id", trainingID))
	return receipt, nil
}

// Enrollments returns the teacher's enrollment history. Records are
// mocked until the training platform integration lands.
func (s *TrainingService) Enrollments(teacherID string) []models.Enrollment {
	return []models.Enrollment{
		{TrainingID: 1, Status: "Completed", CompletionDate: "2024-01-15"},
		{TrainingID: 2, Status: "In Progress", StartDate: "2024-01-20"},
	}
}
