package services

import (
	"context"

	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
)

// requireVerified reads the account fresh so a verification completed in
// another tab counts immediately.
func requireVerified(ctx context.Context, accounts AccountRepository, accountID, action string) (*models.Account, error) {
	account, err := accounts.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if account.Deleted {
		return nil, apperror.NewUnauthorized("This account no longer exists", nil)
	}
	if !account.EmailVerified {
		return nil, apperror.NewUnverified(action)
	}
	return account, nil
}

func requireTradie(p *models.Profile) error {
	if !p.IsTradie() {
		return apperror.NewPermissionDenied("only tradespeople can do this")
	}
	return nil
}

// profileChanged invalidates the discovery feed and pushes the profile to
// its owner's stream.
func profileChanged(ctx context.Context, feed FeedCache, broker realtime.Publisher, log logger.Logger, p *models.Profile) {
	if feed != nil {
		if err := feed.Delete(ctx, feedCacheKey); err != nil {
			log.Warn("⚠️ Failed to invalidate discovery feed", zap.Error(err))
		}
	}
	if broker != nil && p != nil {
		broker.Publish(realtime.ProfileTopic(p.ID), realtime.KindProfile, p)
	}
}
