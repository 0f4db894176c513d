package models

// TrainingModule describes a catalog entry. The catalog is a static
// in-process list, there is no persistence behind it.
type TrainingModule struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Language    string `json:"language"`
	Duration    string `json:"duration"`
	Level       string `json:"level"`
}

// Enrollment is a mock enrollment record returned to teachers.
type Enrollment struct {
	TrainingID     int    `json:"training_id"`
	Status         string `json:"status"`
	StartDate      string `json:"start_date,omitempty"`
	CompletionDate string `json:"completion_date,omitempty"`
}

// EnrollmentReceipt acknowledges an enrollment request.
type EnrollmentReceipt struct {
	ReceiptID      string `json:"receipt_id"`
	TeacherID      string `json:"teacher_id"`
	TrainingID     int    `json:"training_id"`
	EnrollmentDate string `json:"enrollment_date"`
}
