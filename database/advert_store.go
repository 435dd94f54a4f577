package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradie-match-server/models"
)

type AdvertStore struct {
	db *gorm.DB
}

func NewAdvertStore(db *gorm.DB) *AdvertStore {
	return &AdvertStore{db: db}
}

func (s *AdvertStore) Create(ctx context.Context, advert *models.JobAdvert) error {
	return s.db.WithContext(ctx).Create(advert).Error
}

func (s *AdvertStore) FindByID(ctx context.Context, id string) (*models.JobAdvert, error) {
	var advert models.JobAdvert
	if err := s.db.WithContext(ctx).First(&advert, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "advert", id)
	}
	return &advert, nil
}

// Delete removes the client's own advert.
func (s *AdvertStore) Delete(ctx context.Context, id, clientID string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND client_id = ?", id, clientID).Delete(&models.JobAdvert{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "advert", id)
	}
	return nil
}

func (s *AdvertStore) ListByClient(ctx context.Context, clientID string) ([]models.JobAdvert, error) {
	var adverts []models.JobAdvert
	err := s.db.WithContext(ctx).Where("client_id = ?", clientID).Order("created_at DESC").Find(&adverts).Error
	return adverts, err
}

// ListForTradie returns adverts in trade that tradieID has not hidden.
func (s *AdvertStore) ListForTradie(ctx context.Context, trade, tradieID string) ([]models.JobAdvert, error) {
	hidden := s.db.Model(&models.HiddenAdvert{}).Select("advert_id").Where("tradie_id = ?", tradieID)
	var adverts []models.JobAdvert
	err := s.db.WithContext(ctx).
		Where("trade = ?", trade).
		Where("client_id <> ?", tradieID).
		Where("id NOT IN (?)", hidden).
		Order("created_at DESC").
		Find(&adverts).Error
	return adverts, err
}

func (s *AdvertStore) Hide(ctx context.Context, h *models.HiddenAdvert) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(h).Error
}

// Accept deletes the advert and creates job in one transaction. A missing
// advert means another tradesperson got there first.
func (s *AdvertStore) Accept(ctx context.Context, advertID string, job *models.Job) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", advertID).Delete(&models.JobAdvert{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return notFound(gorm.ErrRecordNotFound, "advert", advertID)
		}
		if err := tx.Where("advert_id = ?", advertID).Delete(&models.HiddenAdvert{}).Error; err != nil {
			return err
		}
		return tx.Create(job).Error
	})
}
