package models

import "time"

// ReportStatus is the review state of a field report
type ReportStatus string

const (
	ReportStatusPending  ReportStatus = "pending"
	ReportStatusReviewed ReportStatus = "reviewed"
	ReportStatusResolved ReportStatus = "resolved"
)

// Valid reports whether s is one of the known statuses.
func (s ReportStatus) Valid() bool {
	switch s {
	case ReportStatusPending, ReportStatusReviewed, ReportStatusResolved:
		return true
	}
	return false
}

// CanTransitionTo reports whether a report in status s may move to next.
// Reviews only move forward: pending -> reviewed -> resolved, or pending -> resolved.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	switch s {
	case ReportStatusPending:
		return next == ReportStatusReviewed || next == ReportStatusResolved
	case ReportStatusReviewed:
		return next == ReportStatusResolved
	default:
		return false
	}
}

// Role is the kind of user behind an authenticated request
type Role string

const (
	RoleReporter   Role = "reporter"
	RoleSupervisor Role = "supervisor"
)

// Report is an erosion observation submitted from the field.
type Report struct {
	ID          string         `json:"id"`
	ReporterID  string         `json:"reporter_id"`
	Description string         `json:"description"`
	Latitude    *float64       `json:"latitude"`
	Longitude   *float64       `json:"longitude"`
	ImageURL    string         `json:"image_url"`
	ImageKey    string         `json:"image_key"`
	Timestamp   time.Time      `json:"timestamp"`
	Status      ReportStatus   `json:"status"`
	Synced      bool           `json:"synced"`
	Analysis    *ErosionResult `json:"analysis,omitempty"`
}

// ReportFilter narrows report listings. Zero values match everything.
type ReportFilter struct {
	Status     ReportStatus
	ReporterID string
}

// SubmitReportInput carries a new report as received from a reporter
type SubmitReportInput struct {
	Description string
	Latitude    *float64
	Longitude   *float64
	// Timestamp is set when a report queued offline is replayed; nil means now.
	Timestamp *time.Time
	ImageName string
	ImageData []byte
}

// ReportSummary aggregates the report collection for the review dashboard.
type ReportSummary struct {
	Total              int                  `json:"total"`
	PendingCount       int                  `json:"pending_count"`
	ByStatus           map[ReportStatus]int `json:"by_status"`
	ByPrediction       map[string]int       `json:"by_prediction"`
	MeanConfidence     float64              `json:"mean_confidence"`
	StdDevConfidence   float64              `json:"std_dev_confidence"`
	MeanVegetation     float64              `json:"mean_vegetation"`
	MeanDarkness       float64              `json:"mean_darkness"`
	AnalyzedReportsNum int                  `json:"analyzed_reports"`
}
