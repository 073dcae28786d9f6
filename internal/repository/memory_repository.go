package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

// MemoryReportRepository keeps reports in process memory. It backs the
// service when no database is configured and in tests.
type MemoryReportRepository struct {
	mu      sync.RWMutex
	reports map[string]*models.Report
}

func NewMemoryReportRepository() *MemoryReportRepository {
	return &MemoryReportRepository{reports: make(map[string]*models.Report)}
}

func (r *MemoryReportRepository) Create(ctx context.Context, report *models.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reports[report.ID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateReport, report.ID)
	}
	r.reports[report.ID] = cloneReport(report)
	return nil
}

func (r *MemoryReportRepository) Get(ctx context.Context, id string) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	return cloneReport(report), nil
}

func (r *MemoryReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*models.Report, 0, len(r.reports))
	for _, report := range r.reports {
		if filter.Status != "" && report.Status != filter.Status {
			continue
		}
		if filter.ReporterID != "" && report.ReporterID != filter.ReporterID {
			continue
		}
		out = append(out, cloneReport(report))
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID < out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}

func (r *MemoryReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, ErrReportNotFound
	}
	if !report.Status.CanTransitionTo(status) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, report.Status, status)
	}
	report.Status = status
	return cloneReport(report), nil
}

func cloneReport(in *models.Report) *models.Report {
	out := *in
	if in.Latitude != nil {
		lat := *in.Latitude
		out.Latitude = &lat
	}
	if in.Longitude != nil {
		lon := *in.Longitude
		out.Longitude = &lon
	}
	if in.Analysis != nil {
		analysis := *in.Analysis
		analysis.Reasoning = append([]string(nil), in.Analysis.Reasoning...)
		out.Analysis = &analysis
	}
	return &out
}
