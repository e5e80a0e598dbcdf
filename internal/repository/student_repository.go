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

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// Create inserts a new student record with a zero point total.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.ID == "" {
		student.ID = uuid.NewString()
	}
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO students (id, user_id, name, class_name, total_points, created_at)
        VALUES (:id, :user_id, :name, :class_name, :total_points, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student: %w", err)
	}
	return nil
}

// FindByID fetches a student by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT id, user_id, name, class_name, total_points, created_at FROM students WHERE id = $1", id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByUserID fetches the student linked to a user account.
func (r *StudentRepository) FindByUserID(ctx context.Context, userID string) (*models.Student, error) {
	var student models.Student
	if err := r.db.GetContext(ctx, &student, "SELECT id, user_id, name, class_name, total_points, created_at FROM students WHERE user_id = $1", userID); err != nil {
		return nil, err
	}
	return &student, nil
}

// ExistsByNameAndClass checks the (name, class_name) enrollment uniqueness rule.
func (r *StudentRepository) ExistsByNameAndClass(ctx context.Context, name, className string) (bool, error) {
	var exists int
	if err := r.db.GetContext(ctx, &exists, "SELECT 1 FROM students WHERE name = $1 AND class_name = $2 LIMIT 1", name, className); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check student enrollment: %w", err)
	}
	return true, nil
}

// List returns students, optionally filtered by class.
func (r *StudentRepository) List(ctx context.Context, className string) ([]models.Student, error) {
	query := "SELECT id, user_id, name, class_name, total_points, created_at FROM students"
	args := []interface{}{}
	if className != "" {
		query += " WHERE class_name = $1"
		args = append(args, className)
	}
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return students, nil
}

// Top returns the highest-scoring students. Ties are broken by creation time
// so the ordering is stable.
func (r *StudentRepository) Top(ctx context.Context, limit int) ([]models.Student, error) {
	const query = `SELECT id, user_id, name, class_name, total_points, created_at FROM students
        ORDER BY total_points DESC, created_at ASC LIMIT $1`
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, limit); err != nil {
		return nil, fmt.Errorf("top students: %w", err)
	}
	return students, nil
}

// Count returns the total number of students.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students"); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return total, nil
}

// DeleteCascade removes the student, all of its behaviour records and the
// linked user account in a single transaction. Records go first so the ledger
// never outlives its subject.
func (r *StudentRepository) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete student: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	var userID sql.NullString
	if err := tx.GetContext(ctx, &userID, "SELECT user_id FROM students WHERE id = $1", id); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM behavior_records WHERE student_id = $1", id); err != nil {
		return fmt.Errorf("delete student records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM students WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if userID.Valid {
		if _, err := tx.ExecContext(ctx, "DELETE FROM users WHERE id = $1", userID.String); err != nil {
			return fmt.Errorf("delete linked user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete student: %w", err)
	}
	return nil
}
