package models

import (
	"time"

	"github.com/lib/pq"

	"tradie-match-server/calendar"
)

// JobStatus represents the stage of a hiring engagement
type JobStatus string

const (
	JobStatusPending          JobStatus = "Pending"
	JobStatusTradieAccepted   JobStatus = "TradieAccepted"
	JobStatusAccepted         JobStatus = "Accepted"
	JobStatusInfoRequested    JobStatus = "InfoRequested"
	JobStatusInfoProvided     JobStatus = "InfoProvided"
	JobStatusQuoteProvided    JobStatus = "QuoteProvided"
	JobStatusQuoteAccepted    JobStatus = "QuoteAccepted"
	JobStatusQuoteDeclined    JobStatus = "QuoteDeclined"
	JobStatusBookingRequested JobStatus = "BookingRequested"
	JobStatusBookingConfirmed JobStatus = "BookingConfirmed"
	JobStatusPaymentComplete  JobStatus = "PaymentComplete"
	JobStatusInProgress       JobStatus = "InProgress"
	JobStatusCompleted        JobStatus = "Completed"
	JobStatusDeclined         JobStatus = "Declined"
)

// Job sources
const (
	JobSourceDirect   = "direct"
	JobSourceJobBoard = "job_board"
)

// MaxInfoPhotos bounds the photos a client may attach when asked for info.
const MaxInfoPhotos = 5

// Quote is the tradesperson's price for the job.
type Quote struct {
	HourlyRate     float64 `json:"hourly_rate"`
	EstimatedHours float64 `json:"estimated_hours"`
	Total          float64 `json:"total"`
	Notes          string  `json:"notes,omitempty"`
}

// Booking is the requested date and slot.
type Booking struct {
	Date     string        `json:"date"`
	TimeSlot calendar.Slot `json:"time_slot"`
}

// ServiceLocation is where the work happens. Cleared on completion.
type ServiceLocation struct {
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email,omitempty"`
}

// Job is a single engagement between one client and one tradesperson.
type Job struct {
	ID string `json:"id" gorm:"type:uuid;primaryKey"`

	ClientID    string `json:"client_id" gorm:"type:uuid;not null;index"`
	TradieID    string `json:"tradie_id" gorm:"type:uuid;not null;index"`
	ClientName  string `json:"client_name" gorm:"size:100"`
	TradieName  string `json:"tradie_name" gorm:"size:100"`
	TradieTrade string `json:"tradie_trade" gorm:"size:50"`

	Title       string    `json:"title" gorm:"size:200;not null"`
	Description string    `json:"description" gorm:"type:text"`
	Budget      string    `json:"budget" gorm:"size:100"`
	Source      string    `json:"source" gorm:"size:20;default:direct"`
	Status      JobStatus `json:"status" gorm:"size:30;not null;index"`

	Quote           *Quote           `json:"quote,omitempty" gorm:"type:jsonb;serializer:json"`
	Booking         *Booking         `json:"booking,omitempty" gorm:"type:jsonb;serializer:json"`
	ServiceLocation *ServiceLocation `json:"service_location,omitempty" gorm:"type:jsonb;serializer:json"`

	InfoPhotos      pq.StringArray `json:"info_photos,omitempty" gorm:"type:text[]"`
	InfoDescription string         `json:"info_description,omitempty" gorm:"type:text"`
	JobPhotos       pq.StringArray `json:"job_photos,omitempty" gorm:"type:text[]"`
	DeclineReason   string         `json:"decline_reason,omitempty" gorm:"type:text"`

	PaymentAmount   float64 `json:"payment_amount,omitempty"`
	PaymentError    string  `json:"payment_error,omitempty"`
	PaymentAttempts int     `json:"payment_attempts,omitempty"`

	AwaitingReview bool   `json:"awaiting_review" gorm:"default:false"`
	TradieReviewed bool   `json:"tradie_reviewed" gorm:"default:false"`
	ClientReviewed bool   `json:"client_reviewed" gorm:"default:false"`
	Archived       bool   `json:"archived" gorm:"default:false;index"`
	InvoiceID      string `json:"invoice_id,omitempty" gorm:"size:40"`

	ApprovedAt         *time.Time `json:"approved_at,omitempty"`
	AcceptedAt         *time.Time `json:"accepted_at,omitempty"`
	InfoRequestedAt    *time.Time `json:"info_requested_at,omitempty"`
	InfoProvidedAt     *time.Time `json:"info_provided_at,omitempty"`
	QuotedAt           *time.Time `json:"quoted_at,omitempty"`
	QuoteAcceptedAt    *time.Time `json:"quote_accepted_at,omitempty"`
	QuoteDeclinedAt    *time.Time `json:"quote_declined_at,omitempty"`
	BookingRequestedAt *time.Time `json:"booking_requested_at,omitempty"`
	BookingConfirmedAt *time.Time `json:"booking_confirmed_at,omitempty"`
	PaymentCompletedAt *time.Time `json:"payment_completed_at,omitempty" gorm:"index"`
	StartedAt          *time.Time `json:"started_at,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	DeclinedAt         *time.Time `json:"declined_at,omitempty"`
	ArchivedAt         *time.Time `json:"archived_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Job model
func (Job) TableName() string {
	return "jobs"
}

// IsParty reports whether accountID is the client or the tradesperson.
func (j *Job) IsParty(accountID string) bool {
	return j.ClientID == accountID || j.TradieID == accountID
}

// Counterpart returns the other party's id and name.
func (j *Job) Counterpart(accountID string) (string, string) {
	if accountID == j.ClientID {
		return j.TradieID, j.TradieName
	}
	return j.ClientID, j.ClientName
}

// Clone copies the job including its optional parts.
func (j Job) Clone() Job {
	out := j
	if j.Quote != nil {
		q := *j.Quote
		out.Quote = &q
	}
	if j.Booking != nil {
		b := *j.Booking
		out.Booking = &b
	}
	if j.ServiceLocation != nil {
		s := *j.ServiceLocation
		out.ServiceLocation = &s
	}
	out.InfoPhotos = append(pq.StringArray(nil), j.InfoPhotos...)
	out.JobPhotos = append(pq.StringArray(nil), j.JobPhotos...)
	return out
}
