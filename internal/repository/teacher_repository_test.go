package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/mergeed-api/internal/models"
	appErrors "github.com/noah-isme/mergeed-api/pkg/errors"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryRegisterDerivesSequentialID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))
	mock.ExpectQuery("INSERT INTO teachers").
		WithArgs("TCH_042", "Ravi Kumar", "ravi@school.edu", "Govt High School", "Pune").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(42, time.Now()))
	mock.ExpectCommit()

	teacher := &models.Teacher{
		Name:     "Ravi Kumar",
		Email:    "ravi@school.edu",
		School:   "Govt High School",
		District: "Pune",
	}
	require.NoError(t, repo.Register(context.Background(), teacher))
	assert.Equal(t, "TCH_042", teacher.TeacherID)
	assert.EqualValues(t, 42, teacher.ID)
	assert.Regexp(t, `^TCH_\d{3}$`, teacher.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryRegisterFirstTeacher(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(0))
	mock.ExpectQuery("INSERT INTO teachers").
		WithArgs("TCH_001", "A", "a@example.com", "S", "D").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))
	mock.ExpectCommit()

	teacher := &models.Teacher{Name: "A", Email: "a@example.com", School: "S", District: "D"}
	require.NoError(t, repo.Register(context.Background(), teacher))
	assert.Equal(t, "TCH_001", teacher.TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryRegisterRacerSurfacesConflict(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	// Two registrations deriving the same sequence: the loser hits the
	// unique constraint on teacher_id and must come back as a conflict.
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COALESCE(MAX(id), 0) FROM teachers")).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(7))
	mock.ExpectQuery("INSERT INTO teachers").
		WithArgs("TCH_008", "A", "a@example.com", "S", "D").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "teachers_teacher_id_key"})
	mock.ExpectRollback()

	teacher := &models.Teacher{Name: "A", Email: "a@example.com", School: "S", District: "D"}
	err := repo.Register(context.Background(), teacher)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryExistsByEmail(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("ravi@school.edu").
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	exists, err := repo.ExistsByEmail(context.Background(), "ravi@school.edu")
	require.NoError(t, err)
	assert.True(t, exists)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM teachers WHERE LOWER(email) = LOWER($1) LIMIT 1")).
		WithArgs("new@school.edu").
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	exists, err = repo.ExistsByEmail(context.Background(), "new@school.edu")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	rows := sqlmock.NewRows([]string{"id", "teacher_id", "name", "email", "school", "district", "created_at"}).
		AddRow(2, "TCH_002", "B", "b@example.com", "S2", "Mumbai", time.Now()).
		AddRow(1, "TCH_001", "A", "a@example.com", "S1", "Pune", time.Now().Add(-time.Hour))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, teacher_id, name, email, school, district, created_at FROM teachers ORDER BY created_at DESC")).
		WillReturnRows(rows)

	teachers, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)
	assert.Equal(t, "TCH_002", teachers[0].TeacherID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
