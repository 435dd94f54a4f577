package services

import (
	"context"

	"go.uber.org/zap"

	"tradie-match-server/logger"
)

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// LogMailer writes emails to the log instead of sending them.
type LogMailer struct {
	log logger.Logger
}

func NewLogMailer(log logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, to, subject, body string) error {
	m.log.Info("📧 Email", zap.String("to", to), zap.String("subject", subject), zap.String("body", body))
	return nil
}
