package database

import (
	"context"

	"gorm.io/gorm"

	"tradie-match-server/models"
)

type ReportStore struct {
	db *gorm.DB
}

func NewReportStore(db *gorm.DB) *ReportStore {
	return &ReportStore{db: db}
}

func (s *ReportStore) Create(ctx context.Context, r *models.Report) error {
	return s.db.WithContext(ctx).Create(r).Error
}

func (s *ReportStore) ListByReporter(ctx context.Context, reporterID string) ([]models.Report, error) {
	var reports []models.Report
	err := s.db.WithContext(ctx).Where("reporter_id = ?", reporterID).Order("created_at DESC").Find(&reports).Error
	return reports, err
}
