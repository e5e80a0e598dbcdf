package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/rowad-platform/merit-api/internal/models"
	appErrors "github.com/rowad-platform/merit-api/pkg/errors"
	"github.com/rowad-platform/merit-api/pkg/export"
)

const (
	topStudentsLimit      = 5
	recentActivitiesLimit = 10
)

type reportStudentRepository interface {
	List(ctx context.Context, className string) ([]models.Student, error)
	Top(ctx context.Context, limit int) ([]models.Student, error)
	Count(ctx context.Context) (int, error)
}

type reportBehaviorRepository interface {
	CountByType(ctx context.Context, behaviorType models.BehaviorType) (int, error)
	Recent(ctx context.Context, limit int) ([]models.BehaviorRecord, error)
	WindowSummary(ctx context.Context, since time.Time, className string) ([]models.StudentReportRow, error)
}

// ReportFormat selects the rendering for exported reports.
type ReportFormat string

const (
	FormatCSV ReportFormat = "csv"
	FormatPDF ReportFormat = "pdf"
)

// ReportService aggregates the registry and ledger into statistics,
// leaderboards and window reports.
type ReportService struct {
	students  reportStudentRepository
	behaviors reportBehaviorRepository
	cache     *CacheService
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(students reportStudentRepository, behaviors reportBehaviorRepository, cache *CacheService, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		students:  students,
		behaviors: behaviors,
		cache:     cache,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
		now:       time.Now,
	}
}

// Statistics returns the overview counters, leaderboard and recent activity.
// The result is served from cache when fresh; the boolean reports a hit.
func (s *ReportService) Statistics(ctx context.Context) (*models.Statistics, bool, error) {
	var cached models.Statistics
	if s.cache.Get(ctx, statisticsCacheKey, &cached) {
		return &cached, true, nil
	}

	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count students")
	}
	positive, err := s.behaviors.CountByType(ctx, models.BehaviorPositive)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count records")
	}
	negative, err := s.behaviors.CountByType(ctx, models.BehaviorNegative)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count records")
	}
	top, err := s.students.Top(ctx, topStudentsLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to rank students")
	}
	recent, err := s.behaviors.Recent(ctx, recentActivitiesLimit)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recent records")
	}

	if top == nil {
		top = []models.Student{}
	}
	if recent == nil {
		recent = []models.BehaviorRecord{}
	}
	stats := &models.Statistics{
		TotalStudents:        totalStudents,
		TotalPositiveRecords: positive,
		TotalNegativeRecords: negative,
		TopStudents:          top,
		RecentActivities:     recent,
	}
	s.cache.Set(ctx, statisticsCacheKey, stats)
	return stats, false, nil
}

// TopByClass groups students by class and keeps the leaders of each class.
// Classes are keyed by name; within a class ties break on enrollment time.
func (s *ReportService) TopByClass(ctx context.Context) (map[string][]models.Student, error) {
	students, err := s.students.List(ctx, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	grouped := make(map[string][]models.Student)
	for _, student := range students {
		grouped[student.ClassName] = append(grouped[student.ClassName], student)
	}
	for class, members := range grouped {
		sort.SliceStable(members, func(i, j int) bool {
			if members[i].TotalPoints != members[j].TotalPoints {
				return members[i].TotalPoints > members[j].TotalPoints
			}
			return members[i].CreatedAt.Before(members[j].CreatedAt)
		})
		if len(members) > topStudentsLimit {
			members = members[:topStudentsLimit]
		}
		grouped[class] = members
	}
	return grouped, nil
}

// Report builds the per-student breakdown over the rolling window named by
// kind, optionally restricted to one class.
func (s *ReportService) Report(ctx context.Context, kind models.ReportKind, className string) ([]models.StudentReportRow, error) {
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report kind")
	}

	since := s.now().UTC()
	switch kind {
	case models.ReportWeekly:
		since = since.AddDate(0, 0, -7)
	case models.ReportMonthly:
		since = since.AddDate(0, 0, -30)
	}

	rows, err := s.behaviors.WindowSummary(ctx, since, className)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build report")
	}
	if rows == nil {
		rows = []models.StudentReportRow{}
	}
	return rows, nil
}

// Export renders a window report as CSV or PDF bytes.
func (s *ReportService) Export(ctx context.Context, kind models.ReportKind, className string, format ReportFormat) ([]byte, string, error) {
	rows, err := s.Report(ctx, kind, className)
	if err != nil {
		return nil, "", err
	}

	headers := []string{"Name", "Class", "Total Points", "Positive", "Negative", "Net Points", "Behaviors"}
	data := export.Dataset{Headers: headers}
	for _, row := range rows {
		data.Rows = append(data.Rows, map[string]string{
			"Name":         row.Name,
			"Class":        row.ClassName,
			"Total Points": strconv.Itoa(row.TotalPoints),
			"Positive":     strconv.Itoa(row.PositiveCount),
			"Negative":     strconv.Itoa(row.NegativeCount),
			"Net Points":   strconv.Itoa(row.NetPoints),
			"Behaviors":    strconv.Itoa(row.TotalBehaviors),
		})
	}

	filename := fmt.Sprintf("%s_report_%s", kind, s.now().UTC().Format("2006-01-02"))
	switch format {
	case FormatCSV:
		payload, err := s.csv.Render(data)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return payload, filename + ".csv", nil
	case FormatPDF:
		payload, err := s.pdf.Render(data, fmt.Sprintf("%s behavior report", kind))
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return payload, filename + ".pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, "unknown export format")
	}
}
