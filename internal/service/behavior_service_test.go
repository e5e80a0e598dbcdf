package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
)

type fakeLedgerRepo struct {
	records       map[string]*models.BehaviorRecord
	knownStudents map[string]bool
	seq           int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{records: map[string]*models.BehaviorRecord{}, knownStudents: map[string]bool{}}
}

func (r *fakeLedgerRepo) Record(_ context.Context, record *models.BehaviorRecord) error {
	if !r.knownStudents[record.StudentID] {
		return sql.ErrNoRows
	}
	r.seq++
	record.ID = "r" + string(rune('0'+r.seq))
	r.records[record.ID] = record
	return nil
}

func (r *fakeLedgerRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.records[id]; !ok {
		return sql.ErrNoRows
	}
	delete(r.records, id)
	return nil
}

func (r *fakeLedgerRepo) ListByStudent(_ context.Context, studentID string) ([]models.BehaviorRecord, error) {
	var out []models.BehaviorRecord
	for _, record := range r.records {
		if record.StudentID == studentID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func TestBehaviorServiceRecord(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.knownStudents["s1"] = true
	svc := NewBehaviorService(repo, nil, nil, nil)

	record, err := svc.Record(context.Background(), "t1", models.CreateBehaviorRequest{
		StudentID:    "s1",
		BehaviorType: "negative",
		Points:       3,
		Description:  "late for class",
	})
	require.NoError(t, err)
	assert.Equal(t, "t1", record.TeacherID)
	assert.Equal(t, -3, record.Delta())
}

func TestBehaviorServiceRecordValidation(t *testing.T) {
	repo := newFakeLedgerRepo()
	repo.knownStudents["s1"] = true
	svc := NewBehaviorService(repo, nil, nil, nil)

	cases := []models.CreateBehaviorRequest{
		{StudentID: "s1", BehaviorType: "positive", Points: 0, Description: "x"},
		{StudentID: "s1", BehaviorType: "positive", Points: 11, Description: "x"},
		{StudentID: "s1", BehaviorType: "neutral", Points: 5, Description: "x"},
		{StudentID: "s1", BehaviorType: "positive", Points: 5},
	}
	for _, req := range cases {
		_, err := svc.Record(context.Background(), "t1", req)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
	assert.Empty(t, repo.records)
}

func TestBehaviorServiceRecordUnknownStudent(t *testing.T) {
	svc := NewBehaviorService(newFakeLedgerRepo(), nil, nil, nil)

	_, err := svc.Record(context.Background(), "t1", models.CreateBehaviorRequest{
		StudentID:    "ghost",
		BehaviorType: "positive",
		Points:       5,
		Description:  "helped a classmate",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBehaviorServiceDeleteMissing(t *testing.T) {
	svc := NewBehaviorService(newFakeLedgerRepo(), nil, nil, nil)

	err := svc.Delete(context.Background(), "gone")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestBehaviorServiceListForStudentEmpty(t *testing.T) {
	svc := NewBehaviorService(newFakeLedgerRepo(), nil, nil, nil)

	records, err := svc.ListForStudent(context.Background(), "s1")
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}
