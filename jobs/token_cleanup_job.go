package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/logger"
)

const tokenCleanupTimeout = time.Minute

type TokenCleaner interface {
	CleanupExpiredTokens(ctx context.Context) (int64, error)
}

// TokenCleanupJob purges expired and revoked refresh tokens.
type TokenCleanupJob struct {
	*ticker
	cleaner TokenCleaner
}

func NewTokenCleanupJob(cleaner TokenCleaner, interval time.Duration, log logger.Logger) *TokenCleanupJob {
	return &TokenCleanupJob{ticker: newTicker("token-cleanup", interval, log), cleaner: cleaner}
}

func (j *TokenCleanupJob) Start() { j.run(j.cleanup) }

func (j *TokenCleanupJob) Stop() { j.halt() }

func (j *TokenCleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), tokenCleanupTimeout)
	defer cancel()

	n, err := j.cleaner.CleanupExpiredTokens(ctx)
	if err != nil {
		j.log.Error("❌ Refresh token cleanup failed", err)
		return
	}
	j.log.Info("🧹 Refresh tokens cleaned up", zap.Int64("removed", n))
}
