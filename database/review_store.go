package database

import (
	"context"

	"gorm.io/gorm"

	"tradie-match-server/models"
)

type ReviewStore struct {
	db *gorm.DB
}

func NewReviewStore(db *gorm.DB) *ReviewStore {
	return &ReviewStore{db: db}
}

func (s *ReviewStore) ListForReviewed(ctx context.Context, reviewedID string) ([]models.Review, error) {
	var reviews []models.Review
	err := s.db.WithContext(ctx).
		Where("reviewed_id = ?", reviewedID).
		Order("created_at DESC").
		Find(&reviews).Error
	return reviews, err
}

// ClientRatingSummary averages the reviews clients wrote about tradieID.
func (s *ReviewStore) ClientRatingSummary(ctx context.Context, tradieID string) (models.RatingSummary, error) {
	var out struct {
		Average float64
		Count   int
	}
	err := s.db.WithContext(ctx).
		Model(&models.Review{}).
		Select("COALESCE(AVG(rating), 0) AS average, COUNT(*) AS count").
		Where("reviewed_id = ? AND reviewer_role = ?", tradieID, models.ReviewerClient).
		Scan(&out).Error
	if err != nil {
		return models.RatingSummary{}, err
	}
	return models.RatingSummary{Average: out.Average, Count: out.Count}, nil
}
