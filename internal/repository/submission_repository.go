package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/mergeed-api/internal/models"
)

const submissionColumns = "id, teacher_id, problem, language, infrastructure, raw_message, strategy, status, diet_officer, feedback, created_at, updated_at"

// SubmissionRepository manages persistence for chat submissions.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs a SubmissionRepository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// Create inserts a submission and returns the assigned id. Status
// defaults to Pending unless the caller set one.
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) (int64, error) {
	if sub.Status == "" {
		sub.Status = models.StatusPending
	}

	const query = `INSERT INTO submissions (teacher_id, problem, language, infrastructure, raw_message, strategy, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`
	row := r.db.QueryRowxContext(ctx, query,
		sub.TeacherID, sub.Problem, sub.Language, sub.Infrastructure, sub.RawMessage, sub.Strategy, sub.Status)
	if err := row.Scan(&sub.ID, &sub.CreatedAt, &sub.UpdatedAt); err != nil {
		return 0, fmt.Errorf("insert submission: %w", err)
	}
	return sub.ID, nil
}

// FindByID fetches a submission by id.
func (r *SubmissionRepository) FindByID(ctx context.Context, id int64) (*models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE id = $1", submissionColumns)
	var sub models.Submission
	if err := r.db.GetContext(ctx, &sub, query, id); err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListAll returns every submission, newest first.
func (r *SubmissionRepository) ListAll(ctx context.Context) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions ORDER BY created_at DESC", submissionColumns)
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return subs, nil
}

// ListByStatus returns submissions with the given status, newest first.
func (r *SubmissionRepository) ListByStatus(ctx context.Context, status string) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE status = $1 ORDER BY created_at DESC", submissionColumns)
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query, status); err != nil {
		return nil, fmt.Errorf("list submissions by status: %w", err)
	}
	return subs, nil
}

// ListByTeacher returns a teacher's submissions, newest first.
func (r *SubmissionRepository) ListByTeacher(ctx context.Context, teacherID string) ([]models.Submission, error) {
	query := fmt.Sprintf("SELECT %s FROM submissions WHERE teacher_id = $1 ORDER BY created_at DESC", submissionColumns)
	var subs []models.Submission
	if err := r.db.SelectContext(ctx, &subs, query, teacherID); err != nil {
		return nil, fmt.Errorf("list submissions by teacher: %w", err)
	}
	return subs, nil
}

// UpdateStatus overwrites status, officer and feedback and refreshes
// updated_at. It reports false when the id does not exist. The store does
// not restrict transitions; callers rely on last-write-wins semantics.
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, id int64, status string, officerID, feedback *string) (bool, error) {
	const query = `UPDATE submissions SET status = $1, diet_officer = $2, feedback = $3, updated_at = NOW() WHERE id = $4`
	result, err := r.db.ExecContext(ctx, query, status, officerID, feedback, id)
	if err != nil {
		return false, fmt.Errorf("update submission status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update submission status rows: %w", err)
	}
	return affected > 0, nil
}

// Stats aggregates submission counts by status.
func (r *SubmissionRepository) Stats(ctx context.Context) (models.SubmissionStats, error) {
	const query = `SELECT
		COUNT(*) AS total,
		COALESCE(SUM(CASE WHEN status = 'Pending' THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN status = 'Approved' THEN 1 ELSE 0 END), 0) AS approved,
		COALESCE(SUM(CASE WHEN status = 'Rejected' THEN 1 ELSE 0 END), 0) AS rejected
		FROM submissions`
	var stats models.SubmissionStats
	if err := r.db.GetContext(ctx, &stats, query); err != nil {
		return models.SubmissionStats{}, fmt.Errorf("submission stats: %w", err)
	}
	return stats, nil
}

// DistrictStats aggregates per-district counts via a left join so that
// districts with teachers but no submissions keep a zero row. Ordered by
// total submissions descending.
func (r *SubmissionRepository) DistrictStats(ctx context.Context) ([]models.DistrictStats, error) {
	const query = `SELECT
		t.district,
		COUNT(s.id) AS total_submissions,
		COALESCE(SUM(CASE WHEN s.status = 'Pending' THEN 1 ELSE 0 END), 0) AS pending,
		COALESCE(SUM(CASE WHEN s.status = 'Approved' THEN 1 ELSE 0 END), 0) AS approved,
		COALESCE(SUM(CASE WHEN s.status = 'Rejected' THEN 1 ELSE 0 END), 0) AS rejected
		FROM teachers t
		LEFT JOIN submissions s ON t.teacher_id = s.teacher_id
		GROUP BY t.district
		ORDER BY total_submissions DESC`
	var stats []models.DistrictStats
	if err := r.db.SelectContext(ctx, &stats, query); err != nil {
		return nil, fmt.Errorf("district stats: %w", err)
	}
	return stats, nil
}
