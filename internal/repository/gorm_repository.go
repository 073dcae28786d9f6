package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/anime-shed/erosion-inspector-go/pkg/models"
)

// ReportRecord is the persisted form of a report.
type ReportRecord struct {
	ID          string    `gorm:"primaryKey;size:36"`
	ReporterID  string    `gorm:"column:reporter_id;size:64;index"`
	Description string    `gorm:"column:description;type:text"`
	Latitude    *float64  `gorm:"column:latitude"`
	Longitude   *float64  `gorm:"column:longitude"`
	ImageURL    string    `gorm:"column:image_url;type:text"`
	ImageKey    string    `gorm:"column:image_key;size:255"`
	Timestamp   time.Time `gorm:"column:timestamp;index"`
	Status      string    `gorm:"column:status;size:16;index"`
	Synced      bool      `gorm:"column:synced"`
	Prediction  string    `gorm:"column:prediction;size:16"`
	Confidence  float64   `gorm:"column:confidence"`
	Analysis    string    `gorm:"column:analysis;type:text"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

// TableName overrides the default table name.
func (ReportRecord) TableName() string {
	return "reports"
}

// GormReportRepository stores reports in PostgreSQL.
type GormReportRepository struct {
	db *gorm.DB
}

// newGormConfig silences gorm's logger, since the service logs through logrus,
// and turns on driver error translation so unique violations surface as
// gorm.ErrDuplicatedKey.
func newGormConfig() *gorm.Config {
	return &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	}
}

// OpenPostgres connects to dsn.
func OpenPostgres(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), newGormConfig())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRepositoryUnavailable, err)
	}
	return db, nil
}

func NewGormReportRepository(db *gorm.DB) *GormReportRepository {
	return &GormReportRepository{db: db}
}

// AutoMigrate ensures the schema is available.
func (r *GormReportRepository) AutoMigrate(ctx context.Context) error {
	return r.db.WithContext(ctx).AutoMigrate(&ReportRecord{})
}

// Close releases the underlying connection pool.
func (r *GormReportRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *GormReportRepository) Create(ctx context.Context, report *models.Report) error {
	record, err := toRecord(report)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).Create(record).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: %s", ErrDuplicateReport, report.ID)
	}
	return err
}

func (r *GormReportRepository) Get(ctx context.Context, id string) (*models.Report, error) {
	var record ReportRecord
	err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrReportNotFound
	}
	if err != nil {
		return nil, err
	}
	return fromRecord(&record)
}

func (r *GormReportRepository) listQuery(ctx context.Context, filter models.ReportFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&ReportRecord{})
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if filter.ReporterID != "" {
		query = query.Where("reporter_id = ?", filter.ReporterID)
	}
	return query.Order("timestamp DESC").Order("id ASC")
}

func (r *GormReportRepository) List(ctx context.Context, filter models.ReportFilter) ([]*models.Report, error) {
	var records []ReportRecord
	if err := r.listQuery(ctx, filter).Find(&records).Error; err != nil {
		return nil, err
	}

	out := make([]*models.Report, 0, len(records))
	for i := range records {
		report, err := fromRecord(&records[i])
		if err != nil {
			return nil, err
		}
		out = append(out, report)
	}
	return out, nil
}

func (r *GormReportRepository) UpdateStatus(ctx context.Context, id string, status models.ReportStatus) (*models.Report, error) {
	var updated *models.Report

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var record ReportRecord
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&record, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReportNotFound
		}
		if err != nil {
			return err
		}

		current := models.ReportStatus(record.Status)
		if !current.CanTransitionTo(status) {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current, status)
		}

		if err := tx.Model(&record).Update("status", string(status)).Error; err != nil {
			return err
		}
		record.Status = string(status)

		updated, err = fromRecord(&record)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func toRecord(report *models.Report) (*ReportRecord, error) {
	record := &ReportRecord{
		ID:          report.ID,
		ReporterID:  report.ReporterID,
		Description: report.Description,
		Latitude:    report.Latitude,
		Longitude:   report.Longitude,
		ImageURL:    report.ImageURL,
		ImageKey:    report.ImageKey,
		Timestamp:   report.Timestamp.UTC(),
		Status:      string(report.Status),
		Synced:      report.Synced,
	}
	if report.Analysis != nil {
		payload, err := json.Marshal(report.Analysis)
		if err != nil {
			return nil, fmt.Errorf("encode analysis: %w", err)
		}
		record.Analysis = string(payload)
		record.Prediction = report.Analysis.Prediction
		record.Confidence = report.Analysis.Confidence
	}
	return record, nil
}

func fromRecord(record *ReportRecord) (*models.Report, error) {
	report := &models.Report{
		ID:          record.ID,
		ReporterID:  record.ReporterID,
		Description: record.Description,
		Latitude:    record.Latitude,
		Longitude:   record.Longitude,
		ImageURL:    record.ImageURL,
		ImageKey:    record.ImageKey,
		Timestamp:   record.Timestamp.UTC(),
		Status:      models.ReportStatus(record.Status),
		Synced:      record.Synced,
	}
	if record.Analysis != "" {
		var analysis models.ErosionResult
		if err := json.Unmarshal([]byte(record.Analysis), &analysis); err != nil {
			return nil, fmt.Errorf("decode analysis for report %s: %w", record.ID, err)
		}
		report.Analysis = &analysis
	}
	return report, nil
}
