package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
	"github.com/rowad-platform/merit-api/pkg/importer"
)

type studentCreator interface {
	Create(ctx context.Context, req models.CreateStudentRequest) (*models.Student, error)
}

// ImportService loads student rosters from tabular files. Row failures are
// isolated: a bad row is recorded in the summary and the batch continues.
type ImportService struct {
	students studentCreator
	logger   *zap.Logger
}

// NewImportService constructs an ImportService.
func NewImportService(students studentCreator, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{students: students, logger: logger}
}

// Import decodes a roster file and enrolls each student. Expected columns are
// name, class and an optional password. Rows with a blank or placeholder name
// are skipped silently; malformed classes and enrollment conflicts are skipped
// with a per-row message.
func (s *ImportService) Import(ctx context.Context, file io.Reader) (*models.ImportSummary, error) {
	rows, err := importer.Decode(file)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "could not read roster file")
	}

	summary := &models.ImportSummary{Errors: []string{}}
	for _, row := range rows {
		name := row.Get("name")
		if name == "" || strings.EqualFold(name, "nan") {
			summary.Skipped++
			continue
		}

		className := row.Get("class")
		if !strings.Contains(className, "/") {
			summary.Skipped++
			summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: class %q must use the grade/section format", row.Line, className))
			continue
		}

		_, err := s.students.Create(ctx, models.CreateStudentRequest{
			Name:      name,
			ClassName: className,
			Password:  row.Get("password"),
		})
		if err != nil {
			var appErr *appErrors.Error
			if errors.As(err, &appErr) && appErr.Code != appErrors.ErrInternal.Code {
				summary.Skipped++
				summary.Errors = append(summary.Errors, fmt.Sprintf("line %d: %s", row.Line, appErr.Message))
				continue
			}
			return nil, err
		}
		summary.Added++
	}

	s.logger.Info("roster imported",
		zap.Int("added", summary.Added),
		zap.Int("skipped", summary.Skipped),
		zap.Int("errors", len(summary.Errors)))
	return summary, nil
}
