package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/lifecycle"
	"tradie-match-server/logger"
	"tradie-match-server/models"
)

// JobAnnouncer publishes a newly opened job.
type JobAnnouncer interface {
	Opened(ctx context.Context, job *models.Job, party lifecycle.Party, actorID, event string)
}

type CreateAdvertRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
	Trade       string `json:"trade" binding:"required"`
	Location    string `json:"location"`
}

// AdvertService runs the job board.
type AdvertService struct {
	adverts  AdvertRepository
	profiles ProfileRepository
	accounts AccountRepository
	jobs     JobAnnouncer
	log      logger.Logger
	now      func() time.Time
}

func NewAdvertService(adverts AdvertRepository, profiles ProfileRepository, accounts AccountRepository, jobs JobAnnouncer, log logger.Logger) *AdvertService {
	return &AdvertService{
		adverts:  adverts,
		profiles: profiles,
		accounts: accounts,
		jobs:     jobs,
		log:      log,
		now:      time.Now,
	}
}

// Create posts an advert for the client's chosen trade.
func (s *AdvertService) Create(ctx context.Context, clientID string, req CreateAdvertRequest) (*models.JobAdvert, error) {
	if _, err := requireVerified(ctx, s.accounts, clientID, "post a job"); err != nil {
		return nil, err
	}
	client, err := s.profiles.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, apperror.NewValidation("Please add a title")
	}
	if !models.IsKnownTrade(req.Trade) {
		return nil, apperror.NewValidation("Please choose a trade from the list")
	}

	advert := &models.JobAdvert{
		ID:          uuid.NewString(),
		ClientID:    clientID,
		ClientName:  client.Name,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Budget:      strings.TrimSpace(req.Budget),
		Trade:       req.Trade,
		Location:    strings.TrimSpace(req.Location),
	}
	if err := s.adverts.Create(ctx, advert); err != nil {
		return nil, translate(err, "create advert")
	}
	s.log.Info("📋 Advert posted", zap.String("advert_id", advert.ID), zap.String("trade", advert.Trade))
	return advert, nil
}

func (s *AdvertService) Delete(ctx context.Context, clientID, advertID string) error {
	if err := s.adverts.Delete(ctx, advertID, clientID); err != nil {
		return translate(err, "delete advert")
	}
	return nil
}

func (s *AdvertService) ListMine(ctx context.Context, clientID string) ([]models.JobAdvert, error) {
	adverts, err := s.adverts.ListByClient(ctx, clientID)
	if err != nil {
		return nil, translate(err, "list adverts")
	}
	return adverts, nil
}

// Board lists the adverts for the tradesperson's trade that they have not
// hidden.
func (s *AdvertService) Board(ctx context.Context, tradieID string) ([]models.JobAdvert, error) {
	tradie, err := s.profiles.FindByID(ctx, tradieID)
	if err != nil {
		return nil, err
	}
	if err := requireTradie(tradie); err != nil {
		return nil, err
	}
	if tradie.Trade == "" {
		return []models.JobAdvert{}, nil
	}
	adverts, err := s.adverts.ListForTradie(ctx, tradie.Trade, tradieID)
	if err != nil {
		return nil, translate(err, "list job board")
	}
	return adverts, nil
}

func (s *AdvertService) Hide(ctx context.Context, tradieID, advertID string) error {
	if _, err := s.adverts.FindByID(ctx, advertID); err != nil {
		return err
	}
	if err := s.adverts.Hide(ctx, &models.HiddenAdvert{TradieID: tradieID, AdvertID: advertID, CreatedAt: s.now()}); err != nil {
		return translate(err, "hide advert")
	}
	return nil
}

// Accept turns the advert into a job awaiting the client's approval. The
// advert is removed in the same transaction, so only one tradesperson can
// take it.
func (s *AdvertService) Accept(ctx context.Context, tradieID, advertID string) (*models.Job, error) {
	tradie, err := s.profiles.FindByID(ctx, tradieID)
	if err != nil {
		return nil, err
	}
	advert, err := s.adverts.FindByID(ctx, advertID)
	if err != nil {
		return nil, err
	}
	if tradie.Trade != advert.Trade {
		return nil, apperror.NewPermissionDenied("this job is for a different trade")
	}

	job, err := lifecycle.FromAdvert(uuid.NewString(), advert, tradie, s.now())
	if err != nil {
		return nil, translate(err, "accept advert")
	}
	if err := s.adverts.Accept(ctx, advertID, &job); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, apperror.NewConflict("This job has already been taken", advertID)
		}
		return nil, translate(err, "accept advert")
	}

	s.log.Info("✅ Advert accepted", zap.String("advert_id", advertID), zap.String("job_id", job.ID))
	s.jobs.Opened(ctx, &job, lifecycle.Tradie, tradieID, "accept_advert")
	return &job, nil
}
