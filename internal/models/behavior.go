package models

import "time"

// BehaviorType classifies a behaviour record. It constrains the sign applied
// to the student's running total.
type BehaviorType string

const (
	BehaviorPositive BehaviorType = "positive"
	BehaviorNegative BehaviorType = "negative"
)

// Valid reports whether the behaviour type is known.
func (t BehaviorType) Valid() bool {
	return t == BehaviorPositive || t == BehaviorNegative
}

// BehaviorRecord is one entry in the append-only points ledger. Records are
// immutable once written; deletion reverses their contribution.
type BehaviorRecord struct {
	ID           string       `db:"id" json:"id"`
	StudentID    string       `db:"student_id" json:"student_id"`
	TeacherID    string       `db:"teacher_id" json:"teacher_id"`
	BehaviorType BehaviorType `db:"behavior_type" json:"behavior_type"`
	Points       int          `db:"points" json:"points"`
	Description  string       `db:"description" json:"description"`
	Date         time.Time    `db:"date" json:"date"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

// CreateBehaviorRequest holds the payload for appending a ledger entry.
type CreateBehaviorRequest struct {
	StudentID    string `json:"student_id" validate:"required"`
	BehaviorType string `json:"behavior_type" validate:"required,behavior_type"`
	Points       int    `json:"points" validate:"required,min=1,max=10"`
	Description  string `json:"description" validate:"required"`
}

// Delta returns the signed contribution of the record to the student's total.
func (r BehaviorRecord) Delta() int {
	if r.BehaviorType == BehaviorNegative {
		return -r.Points
	}
	return r.Points
}
