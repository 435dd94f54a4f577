package database

import (
	"context"
	"time"

	"gorm.io/gorm"

	"tradie-match-server/models"
)

type AccountStore struct {
	db *gorm.DB
}

func NewAccountStore(db *gorm.DB) *AccountStore {
	return &AccountStore{db: db}
}

// CreateWithProfile inserts an account and its profile together.
func (s *AccountStore) CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(account).Error; err != nil {
			return err
		}
		return tx.Create(profile).Error
	})
}

func (s *AccountStore) FindByID(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "account", id)
	}
	return &account, nil
}

func (s *AccountStore) FindByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "email = ?", email).Error; err != nil {
		return nil, notFound(err, "account", email)
	}
	return &account, nil
}

func (s *AccountStore) FindByVerificationToken(ctx context.Context, token string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "verification_token = ?", token).Error; err != nil {
		return nil, notFound(err, "account", "verification token")
	}
	return &account, nil
}

func (s *AccountStore) FindByResetToken(ctx context.Context, token string) (*models.Account, error) {
	var account models.Account
	if err := s.db.WithContext(ctx).First(&account, "reset_token = ?", token).Error; err != nil {
		return nil, notFound(err, "account", "reset token")
	}
	return &account, nil
}

func (s *AccountStore) Save(ctx context.Context, account *models.Account) error {
	account.UpdatedAt = time.Now()
	return s.db.WithContext(ctx).Save(account).Error
}

// SoftDelete renames the account's email so it can be reused, marks the
// account deleted and anonymizes the profile, all in one transaction.
func (s *AccountStore) SoftDelete(ctx context.Context, account *models.Account, profile *models.Profile) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(account).Error; err != nil {
			return err
		}
		if err := tx.Save(profile).Error; err != nil {
			return err
		}
		return tx.Model(&models.RefreshToken{}).
			Where("account_id = ? AND is_revoked = ?", account.ID, false).
			Update("is_revoked", true).Error
	})
}
