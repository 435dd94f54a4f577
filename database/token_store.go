package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tradie-match-server/models"
)

type RefreshTokenStore struct {
	db *gorm.DB
}

func NewRefreshTokenStore(db *gorm.DB) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

func (s *RefreshTokenStore) Create(ctx context.Context, token *models.RefreshToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *RefreshTokenStore) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var rt models.RefreshToken
	if err := s.db.WithContext(ctx).Where("token = ?", token).First(&rt).Error; err != nil {
		return nil, notFound(err, "refresh token", "")
	}
	return &rt, nil
}

func (s *RefreshTokenStore) Revoke(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token = ?", token).
		Update("is_revoked", true).Error
}

func (s *RefreshTokenStore) RevokeAll(ctx context.Context, accountID string) error {
	return s.db.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("account_id = ? AND is_revoked = ?", accountID, false).
		Update("is_revoked", true).Error
}

// DeleteExpired removes tokens that expired before now or were revoked.
func (s *RefreshTokenStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("expires_at < ? OR is_revoked = ?", now, true).
		Delete(&models.RefreshToken{})
	return res.RowsAffected, res.Error
}
