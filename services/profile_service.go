package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
	"tradie-match-server/utils"
)

const maxProfilePhotos = 6

// LocationResolver turns a typed location label into coordinates.
type LocationResolver interface {
	Geocode(ctx context.Context, label string) (*utils.GeocodingResult, error)
}

// ProfilePhotoUploader stores profile and ID photos.
type ProfilePhotoUploader interface {
	UploadProfilePhoto(ctx context.Context, accountID string, file Upload) (string, error)
	UploadIDPhoto(ctx context.Context, accountID string, file Upload) (string, error)
}

// UpdateProfileRequest carries the editable profile fields. Nil fields are
// left unchanged.
type UpdateProfileRequest struct {
	Name              *string  `json:"name"`
	Age               *int     `json:"age"`
	Location          *string  `json:"location"`
	Trade             *string  `json:"trade"`
	HourlyRate        *float64 `json:"hourly_rate"`
	Bio               *string  `json:"bio"`
	Incognito         *bool    `json:"incognito"`
	HideDistance      *bool    `json:"hide_distance"`
	JobOnlyVisibility *bool    `json:"job_only_visibility"`
	BlurPhotos        *bool    `json:"blur_photos"`
}

// LocationUpdate is a browser geolocation fix.
type LocationUpdate struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Accuracy  *float64 `json:"accuracy"`
}

type ProfileService struct {
	profiles ProfileRepository
	blocks   BlockRepository
	photos   ProfilePhotoUploader
	geocoder LocationResolver
	feed     FeedCache
	broker   realtime.Publisher
	log      logger.Logger
	now      func() time.Time
}

func NewProfileService(profiles ProfileRepository, blocks BlockRepository, photos ProfilePhotoUploader, geocoder LocationResolver, feed FeedCache, broker realtime.Publisher, log logger.Logger) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		blocks:   blocks,
		photos:   photos,
		geocoder: geocoder,
		feed:     feed,
		broker:   broker,
		log:      log,
		now:      time.Now,
	}
}

// Get returns a profile. Deleted profiles are still returned in their
// anonymized form so old jobs and chats resolve.
func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.FindByID(ctx, id)
}

func (s *ProfileService) Update(ctx context.Context, accountID string, req UpdateProfileRequest) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, apperror.NewValidation("Name cannot be empty")
		}
		fields["name"] = name
	}
	if req.Age != nil {
		if *req.Age < 18 || *req.Age > 120 {
			return nil, apperror.NewValidation("You must be 18+ to use this service")
		}
		fields["age"] = *req.Age
	}
	if req.Trade != nil {
		if !p.IsTradie() {
			return nil, apperror.NewValidation("Only tradespeople can set a trade")
		}
		if !models.IsKnownTrade(*req.Trade) {
			return nil, apperror.NewValidation("Please choose a trade from the list")
		}
		fields["trade"] = *req.Trade
	}
	if req.HourlyRate != nil {
		if *req.HourlyRate < 0 {
			return nil, apperror.NewValidation("Hourly rate cannot be negative")
		}
		fields["hourly_rate"] = *req.HourlyRate
	}
	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}
	if req.Incognito != nil {
		fields["incognito"] = *req.Incognito
	}
	if req.HideDistance != nil {
		fields["hide_distance"] = *req.HideDistance
	}
	if req.JobOnlyVisibility != nil {
		fields["job_only_visibility"] = *req.JobOnlyVisibility
	}
	if req.BlurPhotos != nil {
		fields["blur_photos"] = *req.BlurPhotos
	}
	if req.Location != nil {
		label := strings.TrimSpace(*req.Location)
		fields["location"] = label
		if label != "" && label != p.Location {
			s.resolveLocation(ctx, label, fields)
		}
	}

	if len(fields) == 0 {
		return p, nil
	}
	if err := s.profiles.Update(ctx, accountID, fields); err != nil {
		return nil, translate(err, "update profile")
	}
	return s.reload(ctx, accountID)
}

// resolveLocation fills coordinates for a typed label. A failed lookup
// keeps the label and the previous coordinates.
func (s *ProfileService) resolveLocation(ctx context.Context, label string, fields map[string]interface{}) {
	if s.geocoder == nil {
		return
	}
	res, err := s.geocoder.Geocode(ctx, label)
	if err != nil {
		s.log.Warn("⚠️ Geocoding failed", zap.String("label", label), zap.Error(err))
		return
	}
	fields["latitude"] = res.Latitude
	fields["longitude"] = res.Longitude
	fields["location_accuracy"] = nil
	fields["location_updated_at"] = s.now()
}

// UpdateLocation stores a geolocation fix.
func (s *ProfileService) UpdateLocation(ctx context.Context, accountID string, loc LocationUpdate) (*models.Profile, error) {
	if !utils.IsLocationValid(loc.Latitude, loc.Longitude) {
		return nil, apperror.NewValidation("Invalid coordinates")
	}
	fields := map[string]interface{}{
		"latitude":            loc.Latitude,
		"longitude":           loc.Longitude,
		"location_accuracy":   loc.Accuracy,
		"location_updated_at": s.now(),
	}
	if err := s.profiles.Update(ctx, accountID, fields); err != nil {
		return nil, translate(err, "update location")
	}
	s.log.Info("📍 Location updated", zap.String("account_id", accountID))
	return s.reload(ctx, accountID)
}

// GeolocationFailed maps a browser geolocation error code to the message to
// show. Nothing is stored.
func (s *ProfileService) GeolocationFailed(accountID string, code int) string {
	s.log.Debug("Geolocation failed", zap.String("account_id", accountID), zap.Int("code", code))
	return apperror.GeolocationMessage(code)
}

// AddPhoto uploads a profile photo. The first photo becomes the main one.
func (s *ProfileService) AddPhoto(ctx context.Context, accountID string, file Upload) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if len(p.Photos) >= maxProfilePhotos {
		return nil, apperror.NewValidation("You can add up to 6 photos")
	}
	url, err := s.photos.UploadProfilePhoto(ctx, accountID, file)
	if err != nil {
		return nil, err
	}

	fields := map[string]interface{}{"photos": append(p.Photos, url)}
	if p.PhotoURL == "" {
		fields["photo_url"] = url
	}
	if err := s.profiles.Update(ctx, accountID, fields); err != nil {
		return nil, translate(err, "save profile photo")
	}
	s.log.Info("📸 Profile photo added", zap.String("account_id", accountID))
	return s.reload(ctx, accountID)
}

// SubmitVerification uploads an ID photo and queues the profile for review.
func (s *ProfileService) SubmitVerification(ctx context.Context, accountID string, file Upload) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if p.Verified {
		return nil, apperror.NewConflict("Your profile is already verified", accountID)
	}
	url, err := s.photos.UploadIDPhoto(ctx, accountID, file)
	if err != nil {
		return nil, err
	}
	fields := map[string]interface{}{
		"id_photo_url":        url,
		"verification_status": models.VerificationPendingReview,
	}
	if err := s.profiles.Update(ctx, accountID, fields); err != nil {
		return nil, translate(err, "submit verification")
	}
	s.log.Info("🪪 Verification submitted", zap.String("account_id", accountID))
	return s.reload(ctx, accountID)
}

// Block hides target from the account's feeds and stops jobs and chat
// between the two. source records where the block came from.
func (s *ProfileService) Block(ctx context.Context, accountID, targetID, source string) error {
	if accountID == targetID {
		return apperror.NewValidation("You cannot block yourself")
	}
	if _, err := s.profiles.FindByID(ctx, targetID); err != nil {
		return err
	}
	switch source {
	case "":
		source = "profile"
	case "profile", "chat", "job":
	default:
		return apperror.NewValidation("Unknown block source")
	}
	if err := s.blocks.Block(ctx, &models.BlockedUser{BlockedBy: accountID, BlockedUserID: targetID, Source: source}); err != nil {
		return translate(err, "block user")
	}
	s.log.Info("🚫 User blocked", zap.String("account_id", accountID), zap.String("blocked", targetID))
	return nil
}

func (s *ProfileService) Unblock(ctx context.Context, accountID, targetID string) error {
	if err := s.blocks.Unblock(ctx, accountID, targetID); err != nil {
		return translate(err, "unblock user")
	}
	return nil
}

func (s *ProfileService) ListBlocked(ctx context.Context, accountID string) ([]models.BlockedUser, error) {
	blocked, err := s.blocks.ListBlockedBy(ctx, accountID)
	if err != nil {
		return nil, translate(err, "list blocked users")
	}
	return blocked, nil
}

func (s *ProfileService) reload(ctx context.Context, accountID string) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	profileChanged(ctx, s.feed, s.broker, s.log, p)
	return p, nil
}
