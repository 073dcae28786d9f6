package repository

import (
	"context"

	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

// ImageRepository defines the interface for fetching remote images
type ImageRepository interface {
	// FetchImage retrieves the raw bytes of an image from a URL
	FetchImage(ctx context.Context, imageURL string) ([]byte, error)

	// ValidateImageURL validates if the provided URL is acceptable
	ValidateImageURL(imageURL string) error
}

// ReportRepository persists field reports.
type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error

	Get(ctx context.Context, id string) (*models.Report, error)

	// List returns matching reports, newest timestamp first.
	List(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error)

	// UpdateStatus moves a report to status. The transition is checked
	// against the stored status atomically.
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
}
