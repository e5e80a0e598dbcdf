package models

// Statistics is the admin overview aggregated from the registry and ledger.
type Statistics struct {
	TotalStudents        int              `json:"total_students"`
	TotalPositiveRecords int              `json:"total_positive_records"`
	TotalNegativeRecords int              `json:"total_negative_records"`
	TopStudents          []Student        `json:"top_students"`
	RecentActivities     []BehaviorRecord `json:"recent_activities"`
}

// ReportKind selects the rolling window for behaviour reports.
type ReportKind string

const (
	ReportWeekly  ReportKind = "weekly"
	ReportMonthly ReportKind = "monthly"
)

// Valid reports whether the kind names a supported window.
func (k ReportKind) Valid() bool {
	return k == ReportWeekly || k == ReportMonthly
}

// StudentReportRow is the per-student breakdown of a window report.
type StudentReportRow struct {
	StudentID      string `json:"student_id"`
	Name           string `json:"name"`
	ClassName      string `json:"class_name"`
	TotalPoints    int    `json:"total_points"`
	PositiveCount  int    `json:"positive_count"`
	NegativeCount  int    `json:"negative_count"`
	PositivePoints int    `json:"positive_points"`
	NegativePoints int    `json:"negative_points"`
	NetPoints      int    `json:"net_points"`
	TotalBehaviors int    `json:"total_behaviors"`
}

// ImportSummary reports the outcome of a bulk roster import. Row failures are
// collected per row instead of aborting the batch.
type ImportSummary struct {
	Added   int      `json:"added"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}
