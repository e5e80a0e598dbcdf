package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
)

type behaviorRepository interface {
	Record(ctx context.Context, record *models.BehaviorRecord) error
	Delete(ctx context.Context, id string) error
	ListByStudent(ctx context.Context, studentID string) ([]models.BehaviorRecord, error)
}

// BehaviorService manages the points ledger.
type BehaviorService struct {
	records   behaviorRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBehaviorService constructs a BehaviorService.
func NewBehaviorService(records behaviorRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *BehaviorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = NewValidator()
	}
	return &BehaviorService{records: records, cache: cache, validator: validate, logger: logger}
}

// Record appends a behaviour record on behalf of the given teacher and applies
// its points to the student's total.
func (s *BehaviorService) Record(ctx context.Context, teacherID string, req models.CreateBehaviorRequest) (*models.BehaviorRecord, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid behavior payload")
	}

	record := &models.BehaviorRecord{
		StudentID:    req.StudentID,
		TeacherID:    teacherID,
		BehaviorType: models.BehaviorType(req.BehaviorType),
		Points:       req.Points,
		Description:  req.Description,
	}
	if err := s.records.Record(ctx, record); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record behavior")
	}

	s.cache.InvalidateStatistics(ctx)
	s.logger.Info("behavior recorded",
		zap.String("record_id", record.ID),
		zap.String("student_id", record.StudentID),
		zap.Int("delta", record.Delta()))
	return record, nil
}

// Delete removes a ledger entry and reverses its points.
func (s *BehaviorService) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete record")
	}

	s.cache.InvalidateStatistics(ctx)
	s.logger.Info("behavior record deleted", zap.String("record_id", id))
	return nil
}

// ListForStudent returns a student's ledger, most recent first.
func (s *BehaviorService) ListForStudent(ctx context.Context, studentID string) ([]models.BehaviorRecord, error) {
	records, err := s.records.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list records")
	}
	if records == nil {
		records = []models.BehaviorRecord{}
	}
	return records, nil
}
