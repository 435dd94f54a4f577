package models

import (
	"time"
)

// Account holds sign-in credentials. The matching Profile shares its ID.
type Account struct {
	ID            string `json:"id" gorm:"type:uuid;primaryKey"`
	Email         string `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash  string `json:"-" gorm:"not null"`
	EmailVerified bool   `json:"email_verified" gorm:"default:false"`

	VerificationToken string     `json:"-" gorm:"size:64;index"`
	ResetToken        string     `json:"-" gorm:"size:64;index"`
	ResetExpiresAt    *time.Time `json:"-"`

	Over18Confirmed bool       `json:"-"`
	TermsAcceptedAt *time.Time `json:"-"`

	Deleted   bool      `json:"deleted" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Account model
func (Account) TableName() string {
	return "accounts"
}

// CanResetPassword checks the reset token has not expired.
func (a *Account) CanResetPassword(now time.Time) bool {
	return a.ResetToken != "" && a.ResetExpiresAt != nil && now.Before(*a.ResetExpiresAt)
}
