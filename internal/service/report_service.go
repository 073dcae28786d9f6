package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/anime-shed/erosion-inspector-go/internal/errors"
	"github.com/anime-shed/erosion-inspector-go/internal/logger"
	"github.com/anime-shed/erosion-inspector-go/internal/observer"
	"github.com/anime-shed/erosion-inspector-go/internal/repository"
	"github.com/anime-shed/erosion-inspector-go/internal/storage"
	"github.com/anime-shed/erosion-inspector-go/pkg/models"
	"github.com/anime-shed/erosion-inspector-go/pkg/validation"
)

// ReportService handles field report submission and supervisor review
type ReportService interface {
	Submit(ctx context.Context, reporterID string, input models.SubmitReportInput) (*models.Report, error)
	List(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error)
	Get(ctx context.Context, id string) (*models.Report, error)
	UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error)
	Summary(ctx context.Context) (*models.ReportSummary, error)
	// Image returns the stored photo of a report and its content type.
	Image(ctx context.Context, id string) ([]byte, string, error)
}

type reportService struct {
	repo       repository.ReportRepository
	images     storage.ImageStore
	classifier ClassificationService
	events     observer.Subject
	now        func() time.Time
	log        *logrus.Entry
}

func NewReportService(
	repo repository.ReportRepository,
	images storage.ImageStore,
	classifier ClassificationService,
	events observer.Subject,
) ReportService {
	return &reportService{
		repo:       repo,
		images:     images,
		classifier: classifier,
		events:     events,
		now:        time.Now,
		log:        logger.WithComponent("report_service"),
	}
}

// Submit validates and classifies the photo before anything is written. If
// the report cannot be persisted, the stored photo is removed again.
func (s *reportService) Submit(ctx context.Context, reporterID string, input models.SubmitReportInput) (*models.Report, error) {
	now := s.now().UTC()
	if err := validation.ValidateReportInput(input, now); err != nil {
		return nil, err
	}

	analysis, err := s.classifier.ClassifyFrom(ctx, input.ImageData, observer.SourceReport)
	if err != nil {
		return nil, err
	}

	report := &models.Report{
		ID:          uuid.NewString(),
		ReporterID:  reporterID,
		Description: strings.TrimSpace(input.Description),
		Latitude:    input.Latitude,
		Longitude:   input.Longitude,
		Timestamp:   now,
		Status:      models.ReportStatusPending,
		Analysis:    analysis,
	}
	if input.Timestamp != nil {
		report.Timestamp = input.Timestamp.UTC()
		report.Synced = true
	}

	key := storage.ReportImageKey(now, input.ImageName)
	contentType := mimetype.Detect(input.ImageData).String()
	url, err := s.images.Put(ctx, key, contentType, input.ImageData)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to store report image", err)
	}
	report.ImageURL = url
	report.ImageKey = key

	if err := s.repo.Create(ctx, report); err != nil {
		// The report was never persisted, so its photo would be unreachable.
		if delErr := s.images.Delete(context.WithoutCancel(ctx), key); delErr != nil {
			s.log.WithError(delErr).WithField("image_key", key).Warn("Failed to remove image of unsaved report")
		}
		return nil, mapRepositoryError(err)
	}

	s.log.WithFields(logrus.Fields{
		"report_id":  report.ID,
		"reporter":   reporterID,
		"prediction": analysis.Prediction,
		"synced":     report.Synced,
	}).Info("Report stored")
	s.notify(ctx, observer.AnalysisEvent{
		EventType:  observer.ReportSubmitted,
		Source:     observer.SourceReport,
		ReportID:   report.ID,
		Success:    true,
		Prediction: analysis.Prediction,
	})

	return report, nil
}

func (s *reportService) List(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", filter.Status), nil)
	}
	reports, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return reports, nil
}

func (s *reportService) Get(ctx context.Context, id string) (*models.Report, error) {
	report, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return report, nil
}

func (s *reportService) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	if !status.Valid() {
		return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", status), nil)
	}
	report, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, mapRepositoryError(err)
	}

	s.notify(ctx, observer.AnalysisEvent{
		EventType: observer.ReportStatusChanged,
		Source:    observer.SourceReport,
		ReportID:  id,
		Success:   true,
		Metadata:  map[string]interface{}{"status": string(status)},
	})
	return report, nil
}

func (s *reportService) Image(ctx context.Context, id string) ([]byte, string, error) {
	report, err := s.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if report.ImageKey == "" {
		return nil, "", apperrors.NewNotFoundError("report has no image", nil)
	}

	data, err := s.images.Get(ctx, report.ImageKey)
	if errors.Is(err, storage.ErrImageNotFound) {
		return nil, "", apperrors.NewNotFoundError("report image not found", err)
	}
	if err != nil {
		return nil, "", apperrors.NewInternalError("failed to load report image", err)
	}
	return data, mimetype.Detect(data).String(), nil
}

// Summary aggregates all reports for the supervisor dashboard.
func (s *reportService) Summary(ctx context.Context) (*models.ReportSummary, error) {
	reports, err := s.repo.List(ctx, models.ReportFilter{})
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return summarize(reports), nil
}

func summarize(reports []*models.Report) *models.ReportSummary {
	summary := &models.ReportSummary{
		Total:        len(reports),
		ByStatus:     make(map[models.ReportStatus]int),
		ByPrediction: make(map[string]int),
	}

	var confidences, vegetation, darkness []float64
	for _, r := range reports {
		summary.ByStatus[r.Status]++
		if r.Analysis == nil {
			continue
		}
		summary.ByPrediction[r.Analysis.Prediction]++
		confidences = append(confidences, r.Analysis.Confidence)
		vegetation = append(vegetation, r.Analysis.Metrics.Vegetation)
		darkness = append(darkness, r.Analysis.Metrics.Darkness)
	}
	summary.PendingCount = summary.ByStatus[models.ReportStatusPending]
	summary.AnalyzedReportsNum = len(confidences)

	if len(confidences) > 0 {
		summary.MeanConfidence = stat.Mean(confidences, nil)
		summary.MeanVegetation = stat.Mean(vegetation, nil)
		summary.MeanDarkness = stat.Mean(darkness, nil)
	}
	// the sample standard deviation needs two observations
	if len(confidences) > 1 {
		summary.StdDevConfidence = stat.StdDev(confidences, nil)
	}
	return summary
}

func mapRepositoryError(err error) error {
	switch {
	case errors.Is(err, repository.ErrReportNotFound):
		return apperrors.NewNotFoundError("report not found", err)
	case errors.Is(err, repository.ErrInvalidStatusTransition):
		return apperrors.NewConflictError("status change not allowed", err)
	case errors.Is(err, repository.ErrRepositoryUnavailable):
		return apperrors.NewInternalError("report storage unavailable", err)
	default:
		return apperrors.NewInternalError("report storage error", err)
	}
}

func (s *reportService) notify(ctx context.Context, event observer.AnalysisEvent) {
	if s.events == nil {
		return
	}
	event.Timestamp = s.now()
	s.events.NotifyObservers(ctx, event)
}
