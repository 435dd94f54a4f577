package models

import "time"

// ChatThread is a conversation between two accounts. ParticipantA sorts
// before ParticipantB so a pair maps to exactly one thread.
type ChatThread struct {
	ID              string     `json:"id" gorm:"type:uuid;primaryKey"`
	ParticipantA    string     `json:"participant_a" gorm:"type:uuid;not null;uniqueIndex:idx_chat_pair"`
	ParticipantB    string     `json:"participant_b" gorm:"type:uuid;not null;uniqueIndex:idx_chat_pair"`
	LastMessageText string     `json:"last_message_text" gorm:"type:text"`
	LastMessageAt   *time.Time `json:"last_message_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName specifies the table name for the ChatThread model
func (ChatThread) TableName() string {
	return "chats"
}

// Other returns the participant that is not accountID.
func (t *ChatThread) Other(accountID string) string {
	if t.ParticipantA == accountID {
		return t.ParticipantB
	}
	return t.ParticipantA
}

// HasParticipant reports whether accountID belongs to the thread.
func (t *ChatThread) HasParticipant(accountID string) bool {
	return t.ParticipantA == accountID || t.ParticipantB == accountID
}

// ChatMessage represents a single message in a chat thread
type ChatMessage struct {
	ID        string     `json:"id" gorm:"type:uuid;primaryKey"`
	ThreadID  string     `json:"thread_id" gorm:"type:uuid;not null;index"`
	SenderID  string     `json:"sender_id" gorm:"type:uuid;not null"`
	Body      string     `json:"body" gorm:"type:text;not null"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at" gorm:"index"`
}

// TableName specifies the table name for the ChatMessage model
func (ChatMessage) TableName() string {
	return "messages"
}
