package lifecycle

import (
	"strings"
	"time"

	"tradie-match-server/models"
)

// JobRequest is a client asking a tradesperson directly.
type JobRequest struct {
	Title       string
	Description string
	Budget      string
}

// NewRequest opens a Pending job between client and tradie.
func NewRequest(id string, client, tradie *models.Profile, req JobRequest, now time.Time) (models.Job, error) {
	if strings.TrimSpace(req.Title) == "" {
		return models.Job{}, &InvalidEventError{Event: "request", Message: "a title is required"}
	}
	if err := checkParties(client, tradie); err != nil {
		return models.Job{}, err
	}
	return models.Job{
		ID:          id,
		ClientID:    client.ID,
		ClientName:  client.Name,
		TradieID:    tradie.ID,
		TradieName:  tradie.Name,
		TradieTrade: tradie.Trade,
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Budget:      strings.TrimSpace(req.Budget),
		Source:      models.JobSourceDirect,
		Status:      models.JobStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// FromAdvert opens a TradieAccepted job for a tradesperson taking an advert.
// The client still has to approve it.
func FromAdvert(id string, advert *models.JobAdvert, tradie *models.Profile, now time.Time) (models.Job, error) {
	client := &models.Profile{ID: advert.ClientID, Name: advert.ClientName, Role: models.RoleAdmirer}
	if err := checkParties(client, tradie); err != nil {
		return models.Job{}, err
	}
	return models.Job{
		ID:          id,
		ClientID:    advert.ClientID,
		ClientName:  advert.ClientName,
		TradieID:    tradie.ID,
		TradieName:  tradie.Name,
		TradieTrade: tradie.Trade,
		Title:       advert.Title,
		Description: advert.Description,
		Budget:      advert.Budget,
		Source:      models.JobSourceJobBoard,
		Status:      models.JobStatusTradieAccepted,
		AcceptedAt:  &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func checkParties(client, tradie *models.Profile) error {
	if !tradie.IsTradie() {
		return &InvalidEventError{Event: "request", Message: "jobs can only be requested from tradespeople"}
	}
	if client.ID == tradie.ID {
		return &InvalidEventError{Event: "request", Message: "you cannot hire yourself"}
	}
	if client.Deleted || tradie.Deleted {
		return &InvalidEventError{Event: "request", Message: "this account no longer exists"}
	}
	return nil
}
