package models

import "time"

// BlockedUser hides BlockedUserID from BlockedBy's feeds.
type BlockedUser struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	BlockedBy     string    `json:"blocked_by" gorm:"type:uuid;not null;uniqueIndex:idx_block_pair"`
	BlockedUserID string    `json:"blocked_user" gorm:"column:blocked_user;type:uuid;not null;uniqueIndex:idx_block_pair"`
	Source        string    `json:"source" gorm:"size:30"` // "profile", "chat", "job"
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for the BlockedUser model
func (BlockedUser) TableName() string {
	return "blocked_users"
}
