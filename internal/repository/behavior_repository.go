package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rowad-platform/merit-api/internal/models"
)

// BehaviorRepository manages the points ledger. Every mutation keeps the
// student's stored total in sync with the sum of its records: the total is
// adjusted with a single in-store increment inside the same transaction as
// the record write, so concurrent writers cannot lose updates.
type BehaviorRepository struct {
	db *sqlx.DB
}

// NewBehaviorRepository constructs a BehaviorRepository.
func NewBehaviorRepository(db *sqlx.DB) *BehaviorRepository {
	return &BehaviorRepository{db: db}
}

// Record appends a behaviour record and applies its delta to the student's
// total. Returns sql.ErrNoRows when the student does not exist; nothing is
// written in that case.
func (r *BehaviorRepository) Record(ctx context.Context, record *models.BehaviorRecord) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if record.Date.IsZero() {
		record.Date = now
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.ExecContext(ctx, "UPDATE students SET total_points = total_points + $1 WHERE id = $2", record.Delta(), record.StudentID)
	if err != nil {
		return fmt.Errorf("apply points: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("apply points: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	const query = `INSERT INTO behavior_records (id, student_id, teacher_id, behavior_type, points, description, date, created_at)
        VALUES (:id, :student_id, :teacher_id, :behavior_type, :points, :description, :date, :created_at)`
	if _, err := tx.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("insert record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record: %w", err)
	}
	return nil
}

// Delete removes a record and reverses its contribution to the student's
// total in one transaction. Returns sql.ErrNoRows when the record is absent,
// so repeat deletes fail instead of silently succeeding.
func (r *BehaviorRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete record: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var record models.BehaviorRecord
	if err := tx.GetContext(ctx, &record, "SELECT id, student_id, teacher_id, behavior_type, points, description, date, created_at FROM behavior_records WHERE id = $1", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM behavior_records WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "UPDATE students SET total_points = total_points - $1 WHERE id = $2", record.Delta(), record.StudentID); err != nil {
		return fmt.Errorf("reverse points: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete record: %w", err)
	}
	return nil
}

// ListByStudent returns a student's records, most recent first.
func (r *BehaviorRepository) ListByStudent(ctx context.Context, studentID string) ([]models.BehaviorRecord, error) {
	const query = `SELECT id, student_id, teacher_id, behavior_type, points, description, date, created_at
        FROM behavior_records WHERE student_id = $1 ORDER BY date DESC, created_at DESC`
	var records []models.BehaviorRecord
	if err := r.db.SelectContext(ctx, &records, query, studentID); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// CountByType returns the number of records of the given type.
func (r *BehaviorRepository) CountByType(ctx context.Context, behaviorType models.BehaviorType) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM behavior_records WHERE behavior_type = $1", string(behaviorType)); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return total, nil
}

// Recent returns the most recent records across all students.
func (r *BehaviorRepository) Recent(ctx context.Context, limit int) ([]models.BehaviorRecord, error) {
	const query = `SELECT id, student_id, teacher_id, behavior_type, points, description, date, created_at
        FROM behavior_records ORDER BY date DESC, created_at DESC LIMIT $1`
	var records []models.BehaviorRecord
	if err := r.db.SelectContext(ctx, &records, query, limit); err != nil {
		return nil, fmt.Errorf("recent records: %w", err)
	}
	return records, nil
}

// WindowSummary aggregates per-student behaviour inside the window starting
// at since, optionally restricted to one class. Students without records in
// the window are included with zero counts. Rows are ordered by lifetime
// total descending.
func (r *BehaviorRepository) WindowSummary(ctx context.Context, since time.Time, className string) ([]models.StudentReportRow, error) {
	query := `SELECT s.id AS student_id, s.name, s.class_name, s.total_points,
        COALESCE(SUM(CASE WHEN b.behavior_type = 'positive' THEN 1 ELSE 0 END), 0) AS positive_count,
        COALESCE(SUM(CASE WHEN b.behavior_type = 'negative' THEN 1 ELSE 0 END), 0) AS negative_count,
        COALESCE(SUM(CASE WHEN b.behavior_type = 'positive' THEN b.points ELSE 0 END), 0) AS positive_points,
        COALESCE(SUM(CASE WHEN b.behavior_type = 'negative' THEN b.points ELSE 0 END), 0) AS negative_points
        FROM students s
        LEFT JOIN behavior_records b ON b.student_id = s.id AND b.date >= $1`
	args := []interface{}{since}
	if className != "" {
		query += " WHERE s.class_name = $2"
		args = append(args, className)
	}
	query += ` GROUP BY s.id, s.name, s.class_name, s.total_points
        ORDER BY s.total_points DESC, s.created_at ASC`

	rows := []struct {
		StudentID      string `db:"student_id"`
		Name           string `db:"name"`
		ClassName      string `db:"class_name"`
		TotalPoints    int    `db:"total_points"`
		PositiveCount  int    `db:"positive_count"`
		NegativeCount  int    `db:"negative_count"`
		PositivePoints int    `db:"positive_points"`
		NegativePoints int    `db:"negative_points"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("window summary: %w", err)
	}

	result := make([]models.StudentReportRow, 0, len(rows))
	for _, row := range rows {
		result = append(result, models.StudentReportRow{
			StudentID:      row.StudentID,
			Name:           row.Name,
			ClassName:      row.ClassName,
			TotalPoints:    row.TotalPoints,
			PositiveCount:  row.PositiveCount,
			NegativeCount:  row.NegativeCount,
			PositivePoints: row.PositivePoints,
			NegativePoints: row.NegativePoints,
			NetPoints:      row.PositivePoints - row.NegativePoints,
			TotalBehaviors: row.PositiveCount + row.NegativeCount,
		})
	}
	return result, nil
}
