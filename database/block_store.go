package database

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradie-match-server/models"
)

type BlockStore struct {
	db *gorm.DB
}

func NewBlockStore(db *gorm.DB) *BlockStore {
	return &BlockStore{db: db}
}

// Block is a no-op when the pair is already blocked.
func (s *BlockStore) Block(ctx context.Context, b *models.BlockedUser) error {
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(b).Error
}

func (s *BlockStore) Unblock(ctx context.Context, blockedBy, blockedUserID string) error {
	return s.db.WithContext(ctx).
		Where("blocked_by = ? AND blocked_user = ?", blockedBy, blockedUserID).
		Delete(&models.BlockedUser{}).Error
}

func (s *BlockStore) ListBlockedBy(ctx context.Context, blockedBy string) ([]models.BlockedUser, error) {
	var blocks []models.BlockedUser
	err := s.db.WithContext(ctx).Where("blocked_by = ?", blockedBy).Order("created_at DESC").Find(&blocks).Error
	return blocks, err
}

// EitherBlocked reports whether a has blocked b or b has blocked a.
func (s *BlockStore) EitherBlocked(ctx context.Context, a, b string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.BlockedUser{}).
		Where("(blocked_by = ? AND blocked_user = ?) OR (blocked_by = ? AND blocked_user = ?)", a, b, b, a).
		Count(&n).Error
	return n > 0, err
}
