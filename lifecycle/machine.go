// Package lifecycle holds the job state machine. Every change to a job's
// status goes through Machine.Apply.
package lifecycle

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"strings"
	"time"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
)

// TransitionError is returned for an event that is not allowed from the
// job's current state or by the acting party.
type TransitionError struct {
	From   models.JobStatus
	Event  EventName
	Actor  Party
	Reason string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot %s job in status %s as %s: %s", e.Event, e.From, e.Actor, e.Reason)
}

// InvalidEventError is returned when the event itself is malformed, e.g. a
// booking without an address.
type InvalidEventError struct {
	Event   EventName
	Message string
}

func (e *InvalidEventError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Event, e.Message)
}

type edge struct {
	actors []Party
	from   []models.JobStatus
}

// edges lists which party may send which event from which states.
var edges = map[EventName]edge{
	EventApprove:         {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusTradieAccepted}},
	EventDecline:         {actors: []Party{Client, Tradie}, from: []models.JobStatus{models.JobStatusTradieAccepted, models.JobStatusPending, models.JobStatusInfoProvided}},
	EventAccept:          {actors: []Party{Tradie}, from: []models.JobStatus{models.JobStatusPending}},
	EventRequestInfo:     {actors: []Party{Tradie}, from: []models.JobStatus{models.JobStatusAccepted}},
	EventProvideInfo:     {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusInfoRequested}},
	EventSubmitQuote:     {actors: []Party{Tradie}, from: []models.JobStatus{models.JobStatusAccepted, models.JobStatusInfoProvided}},
	EventAcceptQuote:     {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusQuoteProvided}},
	EventDeclineQuote:    {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusQuoteProvided}},
	EventRequestBooking:  {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusQuoteAccepted}},
	EventConfirmBooking:  {actors: []Party{Tradie}, from: []models.JobStatus{models.JobStatusBookingRequested}},
	EventCompletePayment: {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusBookingConfirmed}},
	EventPaymentFailed:   {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusBookingConfirmed}},
	EventStartWork:       {actors: []Party{System}, from: []models.JobStatus{models.JobStatusPaymentComplete}},
	EventComplete:        {actors: []Party{Client}, from: []models.JobStatus{models.JobStatusInProgress}},
	EventSubmitReview:    {actors: []Party{Client, Tradie}, from: []models.JobStatus{models.JobStatusCompleted}},
}

// declineFrom narrows EventDecline per party.
var declineFrom = map[Party][]models.JobStatus{
	Client: {models.JobStatusTradieAccepted},
	Tradie: {models.JobStatusPending, models.JobStatusInfoProvided},
}

// Machine applies events to jobs.
type Machine struct {
	Now               func() time.Time
	InvoiceID         func(time.Time) string
	PaymentStartDelay time.Duration
}

// NewMachine returns a machine on the wall clock.
func NewMachine(paymentStartDelay time.Duration) *Machine {
	return &Machine{
		Now:               time.Now,
		InvoiceID:         NewInvoiceID,
		PaymentStartDelay: paymentStartDelay,
	}
}

// Apply returns the job after ev, plus the effects the caller must run.
// The input job is never modified.
func (m *Machine) Apply(job models.Job, actor Party, ev Event) (models.Job, []Effect, error) {
	if err := m.check(&job, actor, ev.Name()); err != nil {
		return job, nil, err
	}

	now := m.Now()
	next := job.Clone()
	next.UpdatedAt = now

	var effects []Effect
	switch e := ev.(type) {
	case Approve:
		next.Status = models.JobStatusPending
		next.ApprovedAt = &now

	case Decline:
		reason := strings.TrimSpace(e.Reason)
		if reason == "" {
			return job, nil, &InvalidEventError{Event: EventDecline, Message: "a reason is required"}
		}
		next.Status = models.JobStatusDeclined
		next.DeclineReason = reason
		next.DeclinedAt = &now

	case Accept:
		next.Status = models.JobStatusAccepted
		next.AcceptedAt = &now

	case RequestInfo:
		next.Status = models.JobStatusInfoRequested
		next.InfoRequestedAt = &now

	case ProvideInfo:
		if len(e.Photos) == 0 || len(e.Photos) > models.MaxInfoPhotos {
			return job, nil, &InvalidEventError{Event: EventProvideInfo, Message: fmt.Sprintf("between 1 and %d photos are required", models.MaxInfoPhotos)}
		}
		next.Status = models.JobStatusInfoProvided
		next.InfoPhotos = append([]string(nil), e.Photos...)
		next.InfoDescription = strings.TrimSpace(e.Description)
		next.InfoProvidedAt = &now

	case SubmitQuote:
		if e.HourlyRate <= 0 || e.EstimatedHours <= 0 {
			return job, nil, &InvalidEventError{Event: EventSubmitQuote, Message: "hourly rate and estimated hours must be positive"}
		}
		next.Status = models.JobStatusQuoteProvided
		next.Quote = &models.Quote{
			HourlyRate:     e.HourlyRate,
			EstimatedHours: e.EstimatedHours,
			Total:          QuoteTotal(e.HourlyRate, e.EstimatedHours),
			Notes:          strings.TrimSpace(e.Notes),
		}
		next.QuotedAt = &now

	case AcceptQuote:
		if next.Quote == nil {
			return job, nil, &TransitionError{From: job.Status, Event: EventAcceptQuote, Actor: actor, Reason: "job has no quote"}
		}
		next.Status = models.JobStatusQuoteAccepted
		next.PaymentAmount = next.Quote.Total
		next.QuoteAcceptedAt = &now

	case DeclineQuote:
		next.Status = models.JobStatusQuoteDeclined
		next.QuoteDeclinedAt = &now

	case RequestBooking:
		if err := validateBooking(e, calendar.DateKey(now)); err != nil {
			return job, nil, err
		}
		next.Status = models.JobStatusBookingRequested
		next.Booking = &models.Booking{Date: e.Date, TimeSlot: e.TimeSlot}
		next.ServiceLocation = &models.ServiceLocation{
			Address: strings.TrimSpace(e.Address),
			Phone:   strings.TrimSpace(e.Phone),
			Email:   strings.TrimSpace(e.Email),
		}
		next.BookingRequestedAt = &now

	case ConfirmBooking:
		if next.Booking == nil {
			return job, nil, &TransitionError{From: job.Status, Event: EventConfirmBooking, Actor: actor, Reason: "job has no booking"}
		}
		next.Status = models.JobStatusBookingConfirmed
		next.BookingConfirmedAt = &now
		effects = append(effects, BookSlot{
			TradieID: next.TradieID,
			DateKey:  next.Booking.Date,
			Slot:     next.Booking.TimeSlot,
			JobID:    next.ID,
		})

	case CompletePayment:
		next.Status = models.JobStatusPaymentComplete
		next.PaymentAttempts++
		next.PaymentError = ""
		next.PaymentCompletedAt = &now
		effects = append(effects, SchedulePaymentStart{JobID: next.ID, At: now.Add(m.PaymentStartDelay)})

	case PaymentFailed:
		next.PaymentAttempts++
		next.PaymentError = strings.TrimSpace(e.Reason)
		if next.PaymentError == "" {
			next.PaymentError = "payment failed"
		}

	case StartWork:
		next.Status = models.JobStatusInProgress
		next.StartedAt = &now

	case Complete:
		next.Status = models.JobStatusCompleted
		next.AwaitingReview = true
		next.ServiceLocation = nil
		next.JobPhotos = nil
		next.InfoPhotos = nil
		next.CompletedAt = &now
		effects = append(effects, PromptReview{AccountID: next.ClientID, JobID: next.ID})

	case SubmitReview:
		reviewEffects, err := m.review(&next, actor, e, now)
		if err != nil {
			return job, nil, err
		}
		effects = append(effects, reviewEffects...)

	default:
		return job, nil, &TransitionError{From: job.Status, Event: ev.Name(), Actor: actor, Reason: "unknown event"}
	}

	return next, effects, nil
}

func (m *Machine) check(job *models.Job, actor Party, name EventName) error {
	e, ok := edges[name]
	if !ok {
		return &TransitionError{From: job.Status, Event: name, Actor: actor, Reason: "unknown event"}
	}
	if job.Archived {
		return &TransitionError{From: job.Status, Event: name, Actor: actor, Reason: "job is archived"}
	}
	if !containsParty(e.actors, actor) {
		return &TransitionError{From: job.Status, Event: name, Actor: actor, Reason: "not allowed for this party"}
	}
	from := e.from
	if name == EventDecline {
		from = declineFrom[actor]
	}
	if !containsStatus(from, job.Status) {
		return &TransitionError{From: job.Status, Event: name, Actor: actor, Reason: "not allowed from this status"}
	}
	if name == EventSubmitReview {
		if !job.AwaitingReview {
			return &TransitionError{From: job.Status, Event: name, Actor: actor, Reason: "job is not awaiting review"}
		}
		if (actor == Client && job.ClientReviewed) || (actor == Tradie && job.TradieReviewed) {
			return &TransitionError{From: job.Status, Event: name, Actor: actor, Reason: "already reviewed"}
		}
	}
	return nil
}

func (m *Machine) review(next *models.Job, actor Party, e SubmitReview, now time.Time) ([]Effect, error) {
	if e.Rating < 1 || e.Rating > 5 {
		return nil, &InvalidEventError{Event: EventSubmitReview, Message: "rating must be between 1 and 5"}
	}

	review := models.Review{
		JobID:     next.ID,
		Rating:    e.Rating,
		Comment:   strings.TrimSpace(e.Comment),
		CreatedAt: now,
	}
	var effects []Effect
	if actor == Client {
		next.ClientReviewed = true
		review.ReviewerID, review.ReviewerName = next.ClientID, next.ClientName
		review.ReviewedID, review.ReviewedName = next.TradieID, next.TradieName
		review.ReviewerRole = models.ReviewerClient
	} else {
		next.TradieReviewed = true
		review.ReviewerID, review.ReviewerName = next.TradieID, next.TradieName
		review.ReviewedID, review.ReviewedName = next.ClientID, next.ClientName
		review.ReviewerRole = models.ReviewerTradie
	}
	effects = append(effects, RecordReview{Review: review})
	if actor == Client {
		effects = append(effects, RecomputeRating{TradieID: next.TradieID})
	}

	if next.ClientReviewed && next.TradieReviewed {
		m.Archive(next, now)
	} else {
		other := next.ClientID
		if actor == Client {
			other = next.TradieID
		}
		effects = append(effects, PromptReview{AccountID: other, JobID: next.ID})
	}
	return effects, nil
}

// Archive closes a job once both parties have reviewed it. An invoice ID is
// issued if payment never produced one.
func (m *Machine) Archive(job *models.Job, now time.Time) {
	job.Archived = true
	job.AwaitingReview = false
	job.ArchivedAt = &now
	if job.InvoiceID == "" {
		job.InvoiceID = m.InvoiceID(now)
	}
}

func validateBooking(e RequestBooking, today string) error {
	if _, err := calendar.ParseDateKey(e.Date, time.UTC); err != nil {
		return &InvalidEventError{Event: EventRequestBooking, Message: "date must be YYYY-MM-DD"}
	}
	if e.Date < today {
		return &InvalidEventError{Event: EventRequestBooking, Message: "date is in the past"}
	}
	if !e.TimeSlot.Valid() {
		return &InvalidEventError{Event: EventRequestBooking, Message: "time slot must be morning, afternoon or evening"}
	}
	if strings.TrimSpace(e.Address) == "" || strings.TrimSpace(e.Phone) == "" {
		return &InvalidEventError{Event: EventRequestBooking, Message: "address and phone are required"}
	}
	return nil
}

// QuoteTotal is rate x hours rounded to pence.
func QuoteTotal(rate, hours float64) float64 {
	return math.Round(rate*hours*100) / 100
}

const base36 = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewInvoiceID returns INV-<unix millis>-<9 random base36 chars>.
func NewInvoiceID(now time.Time) string {
	var sb strings.Builder
	radix := big.NewInt(int64(len(base36)))
	for i := 0; i < 9; i++ {
		n, err := rand.Int(rand.Reader, radix)
		if err != nil {
			n = big.NewInt(int64(now.UnixNano()>>uint(i)) % 36)
		}
		sb.WriteByte(base36[n.Int64()])
	}
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), sb.String())
}

// Allowed lists the events party may send for job in its current state,
// ignoring event payload validation.
func Allowed(job models.Job, party Party) []EventName {
	m := &Machine{}
	var out []EventName
	for _, name := range eventOrder {
		if m.check(&job, party, name) == nil {
			out = append(out, name)
		}
	}
	return out
}

var eventOrder = []EventName{
	EventApprove, EventDecline, EventAccept, EventRequestInfo, EventProvideInfo,
	EventSubmitQuote, EventAcceptQuote, EventDeclineQuote, EventRequestBooking,
	EventConfirmBooking, EventCompletePayment, EventStartWork, EventComplete,
	EventSubmitReview,
}

func containsParty(list []Party, p Party) bool {
	for _, x := range list {
		if x == p {
			return true
		}
	}
	return false
}

func containsStatus(list []models.JobStatus, s models.JobStatus) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
