package lifecycle

import (
	"time"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
)

// Effect is work the caller must carry out after persisting the new job.
type Effect interface {
	effect()
}

// BookSlot marks the tradesperson's calendar slot as taken by the job,
// overwriting whatever was there.
type BookSlot struct {
	TradieID string
	DateKey  string
	Slot     calendar.Slot
	JobID    string
}

// RecordReview stores a review. ID is left for the caller to assign.
type RecordReview struct {
	Review models.Review
}

// RecomputeRating refreshes the tradesperson's rating from client reviews.
type RecomputeRating struct {
	TradieID string
}

// PromptReview asks AccountID to review the job.
type PromptReview struct {
	AccountID string
	JobID     string
}

// SchedulePaymentStart moves the job to InProgress at or after At.
type SchedulePaymentStart struct {
	JobID string
	At    time.Time
}

func (BookSlot) effect()             {}
func (RecordReview) effect()         {}
func (RecomputeRating) effect()      {}
func (PromptReview) effect()         {}
func (SchedulePaymentStart) effect() {}
