package repository

import "errors"

var (
	// ErrReportNotFound indicates no report has the requested ID
	ErrReportNotFound = errors.New("report not found")

	// ErrDuplicateReport indicates a report with the same ID already exists
	ErrDuplicateReport = errors.New("report already exists")

	// ErrInvalidStatusTransition indicates a status change that would move a review backwards
	ErrInvalidStatusTransition = errors.New("invalid status transition")

	// ErrRepositoryUnavailable indicates the repository is unavailable
	ErrRepositoryUnavailable = errors.New("repository unavailable")
)
