package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

// uniqueViolation is the PostgreSQL error code for a unique-constraint
// failure.
const uniqueViolation = "23505"

// TeacherRepository manages persistence for the teacher directory.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// Register inserts a new teacher, deriving the sequential TCH_### id
// from the current max row id inside a single transaction. A concurrent
// racer that derives the same sequence fails the unique constraint on
// teacher_id instead of corrupting the sequence.
func (r *TeacherRepository) Register(ctx context.Context, teacher *models.Teacher) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin register teacher: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var maxID int64
	if err := tx.GetContext(ctx, &maxID, "SELECT COALESCE(MAX(id), 0) FROM teachers"); err != nil {
		return fmt.Errorf("next teacher sequence: %w", err)
	}
	teacher.TeacherID = fmt.Sprintf("TCH_%03d", maxID+1)

	const query = `INSERT INTO teachers (teacher_id, name, email, school, district)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	row := tx.QueryRowxContext(ctx, query, teacher.TeacherID, teacher.Name, teacher.Email, teacher.School, teacher.District)
	if err := row.Scan(&teacher.ID, &teacher.CreatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return appErrors.Wrap(err, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "teacher id or email already registered")
		}
		return fmt.Errorf("insert teacher: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit register teacher: %w", err)
	}
	return nil
}

// FindByTeacherID fetches a teacher by the TCH_### identifier.
func (r *TeacherRepository) FindByTeacherID(ctx context.Context, teacherID string) (*models.Teacher, error) {
	const query = `SELECT id, teacher_id, name, email, school, district, created_at FROM teachers WHERE teacher_id = $1`
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, query, teacherID); err != nil {
		return nil, err
	}
	return &teacher, nil
}

// ExistsByEmail checks whether a teacher already uses the email.
func (r *TeacherRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	const query = `SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, email); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher email: %w", err)
	}
	return true, nil
}

// List returns all teachers, newest first.
func (r *TeacherRepository) List(ctx context.Context) ([]models.Teacher, error) {
	const query = `SELECT id, teacher_id, name, email, school, district, created_at FROM teachers ORDER BY created_at DESC`
	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query); err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return teachers, nil
}
