package models

import "time"

// Submission statuses. Transitions are deliberately permissive: an
// officer action overwrites status, diet_officer and feedback regardless
// of the current state, and no history is kept. Last write wins.
const (
	StatusPending  = "Pending"
	StatusApproved = "Approved"
	StatusRejected = "Rejected"
)

// InfrastructureTier values produced by parameter extraction.
const (
	InfrastructureLow    = "Low"
	InfrastructureMedium = "Medium"
	InfrastructureHigh   = "High"
)

// Submission is a teacher's reported classroom problem together with the
// generated strategy and its review state.
type Submission struct {
	ID             int64     `db:"id" json:"id"`
	TeacherID      string    `db:"teacher_id" json:"teacher_id"`
	Problem        string    `db:"problem" json:"problem"`
	Language       string    `db:"language" json:"language"`
	Infrastructure string    `db:"infrastructure" json:"infrastructure"`
	RawMessage     string    `db:"raw_message" json:"raw_message"`
	Strategy       string    `db:"strategy" json:"strategy"`
	Status         string    `db:"status" json:"status"`
	DietOfficer    *string   `db:"diet_officer" json:"diet_officer,omitempty"`
	Feedback       *string   `db:"feedback" json:"feedback,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// ExtractedParams is the transient output of parameter extraction,
// consumed by strategy generation and submission creation.
type ExtractedParams struct {
	Problem        string `json:"problem"`
	Language       string `json:"language"`
	Infrastructure string `json:"infrastructure"`
	RawMessage     string `json:"raw_message"`
	Error          string `json:"error,omitempty"`
}

// SubmissionStats are aggregate counts over all submissions.
type SubmissionStats struct {
	Total    int `db:"total" json:"total"`
	Pending  int `db:"pending" json:"pending"`
	Approved int `db:"approved" json:"approved"`
	Rejected int `db:"rejected" json:"rejected"`
}

// DistrictStats aggregates submissions per district. Districts that have
// registered teachers but no submissions appear with zero counts.
type DistrictStats struct {
	District         string `db:"district" json:"district"`
	TotalSubmissions int    `db:"total_submissions" json:"total_submissions"`
	Pending          int    `db:"pending" json:"pending"`
	Approved         int    `db:"approved" json:"approved"`
	Rejected         int    `db:"rejected" json:"rejected"`
}
