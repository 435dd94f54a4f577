package database

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"tradie-match-server/models"
)

type ChatStore struct {
	db *gorm.DB
}

func NewChatStore(db *gorm.DB) *ChatStore {
	return &ChatStore{db: db}
}

// FindOrCreateThread returns the single thread between a and b.
func (s *ChatStore) FindOrCreateThread(ctx context.Context, a, b string) (*models.ChatThread, error) {
	if b < a {
		a, b = b, a
	}
	thread := models.ChatThread{ID: uuid.NewString(), ParticipantA: a, ParticipantB: b}
	db := s.db.WithContext(ctx)
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&thread).Error; err != nil {
		return nil, err
	}
	var stored models.ChatThread
	if err := db.First(&stored, "participant_a = ? AND participant_b = ?", a, b).Error; err != nil {
		return nil, err
	}
	return &stored, nil
}

func (s *ChatStore) FindThread(ctx context.Context, id string) (*models.ChatThread, error) {
	var thread models.ChatThread
	if err := s.db.WithContext(ctx).First(&thread, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "chat", id)
	}
	return &thread, nil
}

func (s *ChatStore) ListThreads(ctx context.Context, accountID string) ([]models.ChatThread, error) {
	var threads []models.ChatThread
	err := s.db.WithContext(ctx).
		Where("participant_a = ? OR participant_b = ?", accountID, accountID).
		Order("last_message_at DESC NULLS LAST").
		Find(&threads).Error
	return threads, err
}

// AddMessage stores msg and moves the thread's last-message fields.
func (s *ChatStore) AddMessage(ctx context.Context, msg *models.ChatMessage) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(msg).Error; err != nil {
			return err
		}
		return tx.Model(&models.ChatThread{}).Where("id = ?", msg.ThreadID).Updates(map[string]interface{}{
			"last_message_text": msg.Body,
			"last_message_at":   msg.CreatedAt,
			"updated_at":        msg.CreatedAt,
		}).Error
	})
}

// ListMessages returns up to limit messages, oldest first.
func (s *ChatStore) ListMessages(ctx context.Context, threadID string, limit int) ([]models.ChatMessage, error) {
	var msgs []models.ChatMessage
	err := s.db.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at DESC").
		Limit(limit).
		Find(&msgs).Error
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, err
}
