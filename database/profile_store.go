package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
)

type ProfileStore struct {
	db *gorm.DB
}

func NewProfileStore(db *gorm.DB) *ProfileStore {
	return &ProfileStore{db: db}
}

func (s *ProfileStore) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	var p models.Profile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "profile", id)
	}
	return &p, nil
}

// ListActive returns every profile that has not been deleted.
func (s *ProfileStore) ListActive(ctx context.Context) ([]models.Profile, error) {
	var profiles []models.Profile
	err := s.db.WithContext(ctx).
		Where("deleted = ?", false).
		Order("created_at DESC").
		Find(&profiles).Error
	return profiles, err
}

func (s *ProfileStore) Save(ctx context.Context, p *models.Profile) error {
	p.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Save(p).Error
}

// Update writes only the given columns.
func (s *ProfileStore) Update(ctx context.Context, id string, fields map[string]interface{}) error {
	fields["updated_at"] = time.Now()
	res := s.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "profile", id)
	}
	return nil
}

func (s *ProfileStore) UpdateCalendar(ctx context.Context, id string, cal calendar.Calendar) error {
	return s.Update(ctx, id, map[string]interface{}{"calendar": cal})
}

func (s *ProfileStore) UpdateRating(ctx context.Context, id string, summary models.RatingSummary) error {
	rating := summary.Average
	if summary.Count == 0 {
		rating = models.DefaultRating
	}
	return s.Update(ctx, id, map[string]interface{}{
		"rating":       rating,
		"review_count": summary.Count,
	})
}
