package lifecycle

import "tradie-match-server/calendar"

// Party is who is acting on a job.
type Party string

const (
	Client Party = "client"
	Tradie Party = "tradie"
	System Party = "system"
)

// EventName identifies an event kind in the transition table.
type EventName string

const (
	EventApprove         EventName = "approve"
	EventDecline         EventName = "decline"
	EventAccept          EventName = "accept"
	EventRequestInfo     EventName = "request_info"
	EventProvideInfo     EventName = "provide_info"
	EventSubmitQuote     EventName = "submit_quote"
	EventAcceptQuote     EventName = "accept_quote"
	EventDeclineQuote    EventName = "decline_quote"
	EventRequestBooking  EventName = "request_booking"
	EventConfirmBooking  EventName = "confirm_booking"
	EventCompletePayment EventName = "complete_payment"
	EventPaymentFailed   EventName = "payment_failed"
	EventStartWork       EventName = "start_work"
	EventComplete        EventName = "complete"
	EventSubmitReview    EventName = "submit_review"
)

// Event is something a party does to a job.
type Event interface {
	Name() EventName
}

// Approve is the client taking up a tradesperson who accepted their advert.
type Approve struct{}

// Decline ends the job; Reason is mandatory.
type Decline struct {
	Reason string
}

// Accept is the tradesperson taking on a direct request.
type Accept struct{}

type RequestInfo struct{}

// ProvideInfo answers RequestInfo with 1 to 5 photos and a description.
type ProvideInfo struct {
	Photos      []string
	Description string
}

// SubmitQuote prices the job; the total is HourlyRate x EstimatedHours.
type SubmitQuote struct {
	HourlyRate     float64
	EstimatedHours float64
	Notes          string
}

type AcceptQuote struct{}

type DeclineQuote struct{}

// RequestBooking asks for a date and slot at an address.
type RequestBooking struct {
	Date     string
	TimeSlot calendar.Slot
	Address  string
	Phone    string
	Email    string
}

type ConfirmBooking struct{}

// CompletePayment records a successful charge.
type CompletePayment struct {
	Reference string
}

// PaymentFailed records a failed charge; the job stays payable.
type PaymentFailed struct {
	Reason string
}

// StartWork is issued by the scheduler once payment has settled.
type StartWork struct{}

// Complete is the client marking the work done.
type Complete struct{}

// SubmitReview rates the counterpart after completion.
type SubmitReview struct {
	Rating  int
	Comment string
}

func (Approve) Name() EventName         { return EventApprove }
func (Decline) Name() EventName         { return EventDecline }
func (Accept) Name() EventName          { return EventAccept }
func (RequestInfo) Name() EventName     { return EventRequestInfo }
func (ProvideInfo) Name() EventName     { return EventProvideInfo }
func (SubmitQuote) Name() EventName     { return EventSubmitQuote }
func (AcceptQuote) Name() EventName     { return EventAcceptQuote }
func (DeclineQuote) Name() EventName    { return EventDeclineQuote }
func (RequestBooking) Name() EventName  { return EventRequestBooking }
func (ConfirmBooking) Name() EventName  { return EventConfirmBooking }
func (CompletePayment) Name() EventName { return EventCompletePayment }
func (PaymentFailed) Name() EventName   { return EventPaymentFailed }
func (StartWork) Name() EventName       { return EventStartWork }
func (Complete) Name() EventName        { return EventComplete }
func (SubmitReview) Name() EventName    { return EventSubmitReview }
