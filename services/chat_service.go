package services

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
)

const (
	maxMessageRunes    = 2000
	defaultMessagePage = 50
	maxMessagePage     = 200
)

// ChatMessageEvent is pushed to the recipient's chat stream.
type ChatMessageEvent struct {
	Thread  *models.ChatThread  `json:"thread"`
	Message *models.ChatMessage `json:"message"`
}

type ChatService struct {
	chats    ChatRepository
	accounts AccountRepository
	profiles ProfileRepository
	blocks   BlockRepository
	broker   realtime.Publisher
	log      logger.Logger
	now      func() time.Time
}

func NewChatService(chats ChatRepository, accounts AccountRepository, profiles ProfileRepository, blocks BlockRepository, broker realtime.Publisher, log logger.Logger) *ChatService {
	return &ChatService{
		chats:    chats,
		accounts: accounts,
		profiles: profiles,
		blocks:   blocks,
		broker:   broker,
		log:      log,
		now:      time.Now,
	}
}

// Open returns the thread between the two accounts, creating it if needed.
func (s *ChatService) Open(ctx context.Context, accountID, otherID string) (*models.ChatThread, error) {
	if accountID == otherID {
		return nil, apperror.NewValidation("You cannot message yourself")
	}
	other, err := s.profiles.FindByID(ctx, otherID)
	if err != nil {
		return nil, err
	}
	if other.Deleted {
		return nil, apperror.NewValidation("This account no longer exists")
	}
	if err := s.checkBlocked(ctx, accountID, otherID); err != nil {
		return nil, err
	}
	thread, err := s.chats.FindOrCreateThread(ctx, accountID, otherID)
	if err != nil {
		return nil, translate(err, "open chat")
	}
	return thread, nil
}

func (s *ChatService) Threads(ctx context.Context, accountID string) ([]models.ChatThread, error) {
	threads, err := s.chats.ListThreads(ctx, accountID)
	if err != nil {
		return nil, translate(err, "list chats")
	}
	return threads, nil
}

// Messages returns the latest limit messages of a thread, oldest first.
func (s *ChatService) Messages(ctx context.Context, accountID, threadID string, limit int) ([]models.ChatMessage, error) {
	if _, err := s.thread(ctx, accountID, threadID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultMessagePage
	}
	if limit > maxMessagePage {
		limit = maxMessagePage
	}
	msgs, err := s.chats.ListMessages(ctx, threadID, limit)
	if err != nil {
		return nil, translate(err, "list messages")
	}
	return msgs, nil
}

// Send posts a message. The sender's email must be verified at the time of
// sending.
func (s *ChatService) Send(ctx context.Context, accountID, threadID, body string) (*models.ChatMessage, error) {
	if _, err := requireVerified(ctx, s.accounts, accountID, "send messages"); err != nil {
		return nil, err
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperror.NewValidation("Message cannot be empty")
	}
	if utf8.RuneCountInString(body) > maxMessageRunes {
		return nil, apperror.NewValidation("Message is too long")
	}

	thread, err := s.thread(ctx, accountID, threadID)
	if err != nil {
		return nil, err
	}
	recipient := thread.Other(accountID)
	if err := s.checkBlocked(ctx, accountID, recipient); err != nil {
		return nil, err
	}

	msg := &models.ChatMessage{
		ID:        uuid.NewString(),
		ThreadID:  thread.ID,
		SenderID:  accountID,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.chats.AddMessage(ctx, msg); err != nil {
		return nil, translate(err, "send message")
	}
	thread.LastMessageText = msg.Body
	thread.LastMessageAt = &msg.CreatedAt

	s.log.Debug("💬 Message sent", zap.String("thread_id", thread.ID), zap.String("sender_id", accountID))
	if s.broker != nil {
		s.broker.Publish(realtime.ChatTopic(recipient), realtime.KindChat, ChatMessageEvent{Thread: thread, Message: msg})
	}
	return msg, nil
}

func (s *ChatService) thread(ctx context.Context, accountID, threadID string) (*models.ChatThread, error) {
	thread, err := s.chats.FindThread(ctx, threadID)
	if err != nil {
		return nil, err
	}
	if !thread.HasParticipant(accountID) {
		return nil, apperror.NewNotFound("Chat", threadID)
	}
	return thread, nil
}

func (s *ChatService) checkBlocked(ctx context.Context, a, b string) error {
	blocked, err := s.blocks.EitherBlocked(ctx, a, b)
	if err != nil {
		return translate(err, "check blocks")
	}
	if blocked {
		return apperror.NewPermissionDenied("messaging is blocked between these users")
	}
	return nil
}
