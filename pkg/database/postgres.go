package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/noah-isme/mergeed-api/pkg/config"
)

// NewPostgres returns a configured PostgreSQL client.
func NewPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)

	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	db.SetConnMaxLifetime(1 * time.Hour)
	db.SetConnMaxIdleTime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teachers (
		id SERIAL PRIMARY KEY,
		teacher_id TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		school TEXT NOT NULL,
		district TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id SERIAL PRIMARY KEY,
		teacher_id TEXT NOT NULL,
		problem TEXT NOT NULL,
		language TEXT NOT NULL,
		infrastructure TEXT NOT NULL,
		raw_message TEXT NOT NULL,
		strategy TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'Pending',
		diet_officer TEXT,
		feedback TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_teacher ON submissions(teacher_id)`,
	`CREATE INDEX IF NOT EXISTS idx_submissions_created ON submissions(created_at DESC)`,
}

// EnsureSchema creates the teachers and submissions tables plus the
// indexes backing the listing queries. The submission teacher_id column
// carries no foreign-key constraint: a chat from an id that was never
// registered must still persist.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}

// SeedSampleData inserts a demo teacher with three submissions when the
// submissions table is empty. No-op otherwise.
func SeedSampleData(ctx context.Context, db *sqlx.DB) error {
	var count int
	if err := db.GetContext(ctx, &count, "SELECT COUNT(*) FROM submissions"); err != nil {
		return fmt.Errorf("count submissions: %w", err)
	}
	if count > 0 {
		return nil
	}

	const teacherStmt = `INSERT INTO teachers (teacher_id, name, email, school, district)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (teacher_id) DO NOTHING`
	if _, err := db.ExecContext(ctx, teacherStmt,
		"TCH_001", "Ravi Kumar", "ravi@school.edu", "Govt High School", "Pune"); err != nil {
		return fmt.Errorf("seed teacher: %w", err)
	}

	samples := []struct {
		problem        string
		language       string
		infrastructure string
		rawMessage     string
		strategy       string
		status         string
	}{
		{"Absenteeism", "Hindi", "Low",
			"Many students are not attending Hindi classes regularly",
			"Sample strategy for absenteeism", "Pending"},
		{"Learning Gaps", "Marathi", "Medium",
			"Students struggling with basic Marathi grammar",
			"Sample strategy for learning gaps", "Approved"},
		{"Engagement", "English", "High",
			"Students find English classes boring",
			"Sample strategy for engagement", "Pending"},
	}
	const submissionStmt = `INSERT INTO submissions (teacher_id, problem, language, infrastructure, raw_message, strategy, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	for _, s := range samples {
		if _, err := db.ExecContext(ctx, submissionStmt,
			"TCH_001", s.problem, s.language, s.infrastructure, s.rawMessage, s.strategy, s.status); err != nil {
			return fmt.Errorf("seed submission: %w", err)
		}
	}
	return nil
}
