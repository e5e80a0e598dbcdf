package models

import "time"

// Student represents a learner tracked by the points ledger. TotalPoints is a
// stored running sum over the student's behaviour records; it is only ever
// changed through atomic in-store increments.
type Student struct {
	ID          string    `db:"id" json:"id"`
	UserID      *string   `db:"user_id" json:"user_id,omitempty"`
	Name        string    `db:"name" json:"name"`
	ClassName   string    `db:"class_name" json:"class_name"`
	TotalPoints int       `db:"total_points" json:"total_points"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreateStudentRequest holds the payload for enrolling a student. Password is
// optional; when omitted the account is provisioned with the configured
// default.
type CreateStudentRequest struct {
	Name      string `json:"name" validate:"required"`
	ClassName string `json:"class_name" validate:"required"`
	Password  string `json:"password" validate:"omitempty,min=6"`
}
