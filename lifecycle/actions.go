package lifecycle

import "tradie-match-server/models"

// PartyOf returns the side accountID is on, or false if it is neither.
func PartyOf(job *models.Job, accountID string) (Party, bool) {
	switch accountID {
	case job.ClientID:
		return Client, true
	case job.TradieID:
		return Tradie, true
	}
	return "", false
}

// NeedsAction reports whether the job is waiting on party.
func NeedsAction(job *models.Job, party Party) bool {
	if job.Archived {
		return false
	}
	switch party {
	case Tradie:
		switch job.Status {
		case models.JobStatusPending, models.JobStatusInfoProvided, models.JobStatusBookingRequested:
			return true
		case models.JobStatusCompleted:
			return job.AwaitingReview && !job.TradieReviewed
		}
	case Client:
		switch job.Status {
		case models.JobStatusTradieAccepted, models.JobStatusInfoRequested, models.JobStatusQuoteProvided,
			models.JobStatusBookingConfirmed:
			return true
		case models.JobStatusCompleted:
			return job.AwaitingReview && !job.ClientReviewed
		}
	}
	return false
}

// PendingCount counts the jobs waiting on accountID.
func PendingCount(jobs []models.Job, accountID string) int {
	n := 0
	for i := range jobs {
		if party, ok := PartyOf(&jobs[i], accountID); ok && NeedsAction(&jobs[i], party) {
			n++
		}
	}
	return n
}

// ArchivedView is what remains visible of an archived job.
type ArchivedView struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	CounterpartID   string `json:"counterpart_id"`
	CounterpartName string `json:"counterpart_name"`
	InvoiceID       string `json:"invoice_id"`
	CanDispute      bool   `json:"can_dispute"`
}

// Archived reduces job to its archived view as seen by accountID.
func Archived(job *models.Job, accountID string) ArchivedView {
	id, name := job.Counterpart(accountID)
	return ArchivedView{
		ID:              job.ID,
		Title:           job.Title,
		CounterpartID:   id,
		CounterpartName: name,
		InvoiceID:       job.InvoiceID,
		CanDispute:      true,
	}
}
