package services

import (
	"context"
	"time"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
)

// The interfaces below are what services need from storage. The database
// package provides gorm implementations.

type AccountRepository interface {
	CreateWithProfile(ctx context.Context, account *models.Account, profile *models.Profile) error
	FindByID(ctx context.Context, id string) (*models.Account, error)
	FindByEmail(ctx context.Context, email string) (*models.Account, error)
	FindByVerificationToken(ctx context.Context, token string) (*models.Account, error)
	FindByResetToken(ctx context.Context, token string) (*models.Account, error)
	Save(ctx context.Context, account *models.Account) error
	SoftDelete(ctx context.Context, account *models.Account, profile *models.Profile) error
}

type RefreshTokenRepository interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	FindByToken(ctx context.Context, token string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, token string) error
	RevokeAll(ctx context.Context, accountID string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type ProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	ListActive(ctx context.Context) ([]models.Profile, error)
	Save(ctx context.Context, p *models.Profile) error
	Update(ctx context.Context, id string, fields map[string]interface{}) error
	UpdateCalendar(ctx context.Context, id string, cal calendar.Calendar) error
	UpdateRating(ctx context.Context, id string, summary models.RatingSummary) error
}

type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	FindByID(ctx context.Context, id string) (*models.Job, error)
	Save(ctx context.Context, job *models.Job) error
	SaveIfStatus(ctx context.Context, job *models.Job, from models.JobStatus) (bool, error)
	RecordReview(ctx context.Context, review *models.Review, archive func(*models.Job)) (*models.Job, error)
	ListForAccount(ctx context.Context, accountID string) ([]models.Job, error)
	ListPaidBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Job, error)
}

type AdvertRepository interface {
	Create(ctx context.Context, advert *models.JobAdvert) error
	FindByID(ctx context.Context, id string) (*models.JobAdvert, error)
	Delete(ctx context.Context, id, clientID string) error
	ListByClient(ctx context.Context, clientID string) ([]models.JobAdvert, error)
	ListForTradie(ctx context.Context, trade, tradieID string) ([]models.JobAdvert, error)
	Hide(ctx context.Context, h *models.HiddenAdvert) error
	Accept(ctx context.Context, advertID string, job *models.Job) error
}

type ReviewRepository interface {
	ListForReviewed(ctx context.Context, reviewedID string) ([]models.Review, error)
	ClientRatingSummary(ctx context.Context, tradieID string) (models.RatingSummary, error)
}

type BlockRepository interface {
	Block(ctx context.Context, b *models.BlockedUser) error
	Unblock(ctx context.Context, blockedBy, blockedUserID string) error
	ListBlockedBy(ctx context.Context, blockedBy string) ([]models.BlockedUser, error)
	EitherBlocked(ctx context.Context, a, b string) (bool, error)
}

type ChatRepository interface {
	FindOrCreateThread(ctx context.Context, a, b string) (*models.ChatThread, error)
	FindThread(ctx context.Context, id string) (*models.ChatThread, error)
	ListThreads(ctx context.Context, accountID string) ([]models.ChatThread, error)
	AddMessage(ctx context.Context, msg *models.ChatMessage) error
	ListMessages(ctx context.Context, threadID string, limit int) ([]models.ChatMessage, error)
}

type ReportRepository interface {
	Create(ctx context.Context, r *models.Report) error
	ListByReporter(ctx context.Context, reporterID string) ([]models.Report, error)
}

// FeedCache holds the discovery candidate list.
type FeedCache interface {
	GetJSON(ctx context.Context, key string, out interface{}) (bool, error)
	SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// ClockIn returns a clock reporting wall time in loc.
func ClockIn(loc *time.Location) func() time.Time {
	return func() time.Time { return time.Now().In(loc) }
}
