package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowad-platform/merit-api/internal/models"
)

func TestBehaviorRepositoryRecordAppliesDelta(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET total_points = total_points + $1 WHERE id = $2")).
		WithArgs(-4, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO behavior_records").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	record := &models.BehaviorRecord{
		StudentID:    "s1",
		TeacherID:    "t1",
		BehaviorType: models.BehaviorNegative,
		Points:       4,
		Description:  "late for class",
	}
	err := repo.Record(context.Background(), record)
	require.NoError(t, err)
	assert.NotEmpty(t, record.ID)
	assert.False(t, record.Date.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryRecordMissingStudent(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET total_points = total_points + $1 WHERE id = $2")).
		WithArgs(5, "missing").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	record := &models.BehaviorRecord{
		StudentID:    "missing",
		TeacherID:    "t1",
		BehaviorType: models.BehaviorPositive,
		Points:       5,
		Description:  "helped a classmate",
	}
	err := repo.Record(context.Background(), record)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryDeleteReversesDelta(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM behavior_records WHERE id = $1")).
		WithArgs("r1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "student_id", "teacher_id", "behavior_type", "points", "description", "date", "created_at"}).
			AddRow("r1", "s1", "t1", "positive", 8, "top of class", now, now))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM behavior_records WHERE id = $1")).
		WithArgs("r1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET total_points = total_points - $1 WHERE id = $2")).
		WithArgs(8, "s1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Delete(context.Background(), "r1")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryDeleteMissingRecord(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM behavior_records WHERE id = $1")).
		WithArgs("gone").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), "gone")
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBehaviorRepositoryWindowSummary(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewBehaviorRepository(db)

	since := time.Now().Add(-7 * 24 * time.Hour)
	rows := sqlmock.NewRows([]string{"student_id", "name", "class_name", "total_points", "positive_count", "negative_count", "positive_points", "negative_points"}).
		AddRow("s1", "Sara", "1/A", 15, 3, 1, 9, 2).
		AddRow("s2", "Noor", "1/A", 4, 0, 0, 0, 0)
	mock.ExpectQuery("LEFT JOIN behavior_records").
		WithArgs(since, "1/A").
		WillReturnRows(rows)

	result, err := repo.WindowSummary(context.Background(), since, "1/A")
	require.NoError(t, err)
	require.Len(t, result, 2)
	assert.Equal(t, 7, result[0].NetPoints)
	assert.Equal(t, 4, result[0].TotalBehaviors)
	assert.Equal(t, 0, result[1].TotalBehaviors)
	assert.NoError(t, mock.ExpectationsWereMet())
}
