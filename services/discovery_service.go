package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/discovery"
	"tradie-match-server/logger"
	"tradie-match-server/models"
)

// feedCacheKey holds the list of active profiles every feed starts from.
const feedCacheKey = "discovery:profiles"

// DiscoveryService builds the dating and hiring feeds.
type DiscoveryService struct {
	profiles ProfileRepository
	blocks   BlockRepository
	feed     FeedCache
	ttl      time.Duration
	log      logger.Logger
	now      func() time.Time
}

func NewDiscoveryService(profiles ProfileRepository, blocks BlockRepository, feed FeedCache, ttl time.Duration, loc *time.Location, log logger.Logger) *DiscoveryService {
	return &DiscoveryService{
		profiles: profiles,
		blocks:   blocks,
		feed:     feed,
		ttl:      ttl,
		log:      log,
		now:      ClockIn(loc),
	}
}

// Feed returns the ranked tiles viewerID sees in mode.
func (s *DiscoveryService) Feed(ctx context.Context, viewerID string, mode discovery.Mode, f discovery.Filters) ([]discovery.Tile, error) {
	if !mode.Valid() {
		return nil, apperror.NewValidation("Mode must be dating or hiring")
	}
	viewer, err := s.profiles.FindByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidates(ctx)
	if err != nil {
		return nil, err
	}
	blocked, err := s.blockedSet(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	ranked := discovery.Rank(viewer, candidates, blocked, mode, f, now)
	s.log.Debug("🔍 Feed built",
		zap.String("viewer_id", viewerID),
		zap.String("mode", string(mode)),
		zap.Int("candidates", len(candidates)),
		zap.Int("shown", len(ranked)))
	return discovery.Tiles(viewerID, ranked, now), nil
}

// candidates reads the active profile list through the cache. Cache
// failures fall back to the database.
func (s *DiscoveryService) candidates(ctx context.Context) ([]models.Profile, error) {
	var cached []models.Profile
	if s.feed != nil {
		hit, err := s.feed.GetJSON(ctx, feedCacheKey, &cached)
		if err != nil {
			s.log.Warn("⚠️ Feed cache read failed", zap.Error(err))
		} else if hit {
			return cached, nil
		}
	}

	profiles, err := s.profiles.ListActive(ctx)
	if err != nil {
		return nil, translate(err, "list profiles")
	}
	if s.feed != nil {
		if err := s.feed.SetJSON(ctx, feedCacheKey, profiles, s.ttl); err != nil {
			s.log.Warn("⚠️ Feed cache write failed", zap.Error(err))
		}
	}
	return profiles, nil
}

func (s *DiscoveryService) blockedSet(ctx context.Context, viewerID string) (map[string]bool, error) {
	blocks, err := s.blocks.ListBlockedBy(ctx, viewerID)
	if err != nil {
		return nil, translate(err, "list blocked users")
	}
	set := make(map[string]bool, len(blocks))
	for _, b := range blocks {
		set[b.BlockedUserID] = true
	}
	return set, nil
}
