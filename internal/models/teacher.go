package models

import "time"

// Teacher represents a registered teacher identity. TeacherID is the
// human-facing sequential identifier (TCH_001, TCH_002, ...) referenced
// by submissions; ID is the row primary key the sequence derives from.
type Teacher struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID string    `db:"teacher_id" json:"teacher_id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	School    string    `db:"school" json:"school"`
	District  string    `db:"district" json:"district"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
