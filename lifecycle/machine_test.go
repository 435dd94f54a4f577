package lifecycle

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"tradie-match-server/calendar"
	"tradie-match-server/models"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func testMachine() *Machine {
	return &Machine{
		Now: func() time.Time { return fixedNow },
		InvoiceID: NewInvoiceID,
		PaymentStartDelay: time.Second,
	}
}

func client() *models.Profile {
	return &models.Profile{ID: "client-1", Name: "Alex", Role: models.RoleAdmirer}
}

func tradie() *models.Profile {
	return &models.Profile{ID: "tradie-1", Name: "Sam", Role: models.RoleTradie, Trade: "Plumber"}
}

func pendingJob(t *testing.T) models.Job {
	t.Helper()
	job, err := NewRequest("job-1", client(), tradie(), JobRequest{Title: "Leaking tap", Budget: "£100"}, fixedNow)
	require.NoError(t, err)
	return job
}

type WalkSuite struct {
	suite.Suite
	m   *Machine
	job models.Job
}

func TestWalkSuite(t *testing.T) {
	suite.Run(t, new(WalkSuite))
}

func (s *WalkSuite) SetupTest() {
	s.m = testMachine()
	s.job = pendingJob(s.T())
}

func (s *WalkSuite) apply(actor Party, ev Event) []Effect {
	next, effects, err := s.m.Apply(s.job, actor, ev)
	s.Require().NoError(err, "%s by %s from %s", ev.Name(), actor, s.job.Status)
	s.job = next
	return effects
}

func (s *WalkSuite) TestHappyPathToArchive() {
	s.apply(Tradie, Accept{})
	s.Equal(models.JobStatusAccepted, s.job.Status)

	s.apply(Tradie, RequestInfo{})
	s.apply(Client, ProvideInfo{Photos: []string{"https://img/1.jpg", "https://img/2.jpg"}, Description: "Under the sink"})
	s.Equal(models.JobStatusInfoProvided, s.job.Status)
	s.Len(s.job.InfoPhotos, 2)

	s.apply(Tradie, SubmitQuote{HourlyRate: 50, EstimatedHours: 3, Notes: "parts extra"})
	s.Require().NotNil(s.job.Quote)
	s.Equal(150.00, s.job.Quote.Total)

	s.apply(Client, AcceptQuote{})
	s.Equal(150.00, s.job.PaymentAmount)

	s.apply(Client, RequestBooking{Date: "2025-03-12", TimeSlot: calendar.Afternoon, Address: "1 High St", Phone: "07700900000", Email: "alex@example.com"})
	s.Equal(models.JobStatusBookingRequested, s.job.Status)

	effects := s.apply(Tradie, ConfirmBooking{})
	s.Equal([]Effect{BookSlot{TradieID: "tradie-1", DateKey: "2025-03-12", Slot: calendar.Afternoon, JobID: "job-1"}}, effects)

	effects = s.apply(Client, CompletePayment{Reference: "sim-1"})
	s.Equal(models.JobStatusPaymentComplete, s.job.Status)
	s.Equal([]Effect{SchedulePaymentStart{JobID: "job-1", At: fixedNow.Add(time.Second)}}, effects)

	s.apply(System, StartWork{})
	s.Equal(models.JobStatusInProgress, s.job.Status)

	effects = s.apply(Client, Complete{})
	s.Equal(models.JobStatusCompleted, s.job.Status)
	s.True(s.job.AwaitingReview)
	s.Nil(s.job.ServiceLocation)
	s.Empty(s.job.JobPhotos)
	s.Empty(s.job.InfoPhotos)
	s.Contains(effects, Effect(PromptReview{AccountID: "client-1", JobID: "job-1"}))

	effects = s.apply(Tradie, SubmitReview{Rating: 4, Comment: "Friendly"})
	s.False(s.job.Archived)
	s.Empty(s.job.InvoiceID)
	s.Require().Len(effects, 2)
	rec := effects[0].(RecordReview)
	s.Equal(models.ReviewerTradie, rec.Review.ReviewerRole)
	s.Equal("client-1", rec.Review.ReviewedID)
	s.Equal(PromptReview{AccountID: "client-1", JobID: "job-1"}, effects[1])

	effects = s.apply(Client, SubmitReview{Rating: 5, Comment: "Great"})
	s.True(s.job.Archived)
	s.False(s.job.AwaitingReview)
	s.Regexp(regexp.MustCompile(`^INV-\d+-[0-9A-Z]{9}$`), s.job.InvoiceID)
	s.Contains(effects, Effect(RecomputeRating{TradieID: "tradie-1"}))
}

func (s *WalkSuite) TestJobBoardApprovalReentersFlow() {
	advert := &models.JobAdvert{ID: "ad-1", ClientID: "client-1", ClientName: "Alex", Title: "Fence", Trade: "Carpenter"}
	job, err := FromAdvert("job-2", advert, tradie(), fixedNow)
	s.Require().NoError(err)
	s.Equal(models.JobStatusTradieAccepted, job.Status)
	s.Equal(models.JobSourceJobBoard, job.Source)
	s.job = job

	s.apply(Client, Approve{})
	s.Equal(models.JobStatusPending, s.job.Status)
	s.apply(Tradie, Accept{})
	s.apply(Tradie, SubmitQuote{HourlyRate: 30, EstimatedHours: 2})
	s.apply(Client, DeclineQuote{})
	s.Equal(models.JobStatusQuoteDeclined, s.job.Status)

	_, _, err = s.m.Apply(s.job, Client, AcceptQuote{})
	s.Error(err)
}

func (s *WalkSuite) TestPaymentFailureIsRetryable() {
	s.job.Status = models.JobStatusBookingConfirmed
	s.job.Booking = &models.Booking{Date: "2025-03-12", TimeSlot: calendar.Morning}

	effects := s.apply(Client, PaymentFailed{Reason: "card declined"})
	s.Empty(effects)
	s.Equal(models.JobStatusBookingConfirmed, s.job.Status)
	s.Equal("card declined", s.job.PaymentError)
	s.Equal(1, s.job.PaymentAttempts)

	s.apply(Client, CompletePayment{})
	s.Equal(models.JobStatusPaymentComplete, s.job.Status)
	s.Empty(s.job.PaymentError)
	s.Equal(2, s.job.PaymentAttempts)

	_, _, err := s.m.Apply(s.job, Client, CompletePayment{})
	s.Error(err, "payment cannot complete twice")
	_, _, err = s.m.Apply(s.job, Client, StartWork{})
	s.Error(err, "only the scheduler starts work")
}

func TestDeclinedIsTerminal(t *testing.T) {
	m := testMachine()
	job, _, err := m.Apply(pendingJob(t), Tradie, Decline{Reason: "Too far away"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDeclined, job.Status)
	assert.Equal(t, "Too far away", job.DeclineReason)

	events := []Event{Approve{}, Decline{Reason: "x"}, Accept{}, RequestInfo{}, ProvideInfo{Photos: []string{"a"}},
		SubmitQuote{HourlyRate: 1, EstimatedHours: 1}, AcceptQuote{}, DeclineQuote{}, ConfirmBooking{},
		CompletePayment{}, StartWork{}, Complete{}, SubmitReview{Rating: 5}}
	for _, ev := range events {
		for _, actor := range []Party{Client, Tradie, System} {
			_, _, err := m.Apply(job, actor, ev)
			var te *TransitionError
			assert.ErrorAs(t, err, &te, "%s by %s", ev.Name(), actor)
		}
	}
	assert.Empty(t, Allowed(job, Client))
	assert.Empty(t, Allowed(job, Tradie))
}

func TestDeclineRules(t *testing.T) {
	m := testMachine()
	job := pendingJob(t)

	_, _, err := m.Apply(job, Tradie, Decline{Reason: "  "})
	var ie *InvalidEventError
	assert.ErrorAs(t, err, &ie)

	_, _, err = m.Apply(job, Client, Decline{Reason: "changed my mind"})
	var te *TransitionError
	assert.ErrorAs(t, err, &te, "clients decline only job-board acceptances")

	job.Status = models.JobStatusTradieAccepted
	_, _, err = m.Apply(job, Tradie, Decline{Reason: "busy"})
	assert.ErrorAs(t, err, &te)
	declined, _, err := m.Apply(job, Client, Decline{Reason: "found someone"})
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusDeclined, declined.Status)
}

func TestProvideInfoPhotoBounds(t *testing.T) {
	m := testMachine()
	job := pendingJob(t)
	job.Status = models.JobStatusInfoRequested

	_, _, err := m.Apply(job, Client, ProvideInfo{})
	assert.Error(t, err)
	_, _, err = m.Apply(job, Client, ProvideInfo{Photos: []string{"1", "2", "3", "4", "5", "6"}})
	assert.Error(t, err)
	next, _, err := m.Apply(job, Client, ProvideInfo{Photos: []string{"1", "2", "3", "4", "5"}})
	require.NoError(t, err)
	assert.Len(t, next.InfoPhotos, 5)
}

func TestRequestBookingValidation(t *testing.T) {
	m := testMachine()
	job := pendingJob(t)
	job.Status = models.JobStatusQuoteAccepted

	bad := []RequestBooking{
		{Date: "2025-03-12", TimeSlot: calendar.Morning, Phone: "0770"},
		{Date: "2025-03-12", TimeSlot: calendar.Morning, Address: "1 High St"},
		{Date: "12/03/2025", TimeSlot: calendar.Morning, Address: "1 High St", Phone: "0770"},
		{Date: "2025-03-12", TimeSlot: "night", Address: "1 High St", Phone: "0770"},
		{Date: "2025-03-01", TimeSlot: calendar.Morning, Address: "1 High St", Phone: "0770"},
	}
	for _, ev := range bad {
		_, _, err := m.Apply(job, Client, ev)
		var ie *InvalidEventError
		assert.ErrorAs(t, err, &ie, "%+v", ev)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	m := testMachine()
	job := pendingJob(t)
	job.Status = models.JobStatusInProgress
	job.ServiceLocation = &models.ServiceLocation{Address: "1 High St", Phone: "0770"}
	job.JobPhotos = []string{"site.jpg"}

	_, _, err := m.Apply(job, Client, Complete{})
	require.NoError(t, err)
	require.NotNil(t, job.ServiceLocation)
	assert.Equal(t, "1 High St", job.ServiceLocation.Address)
	assert.Len(t, job.JobPhotos, 1)
}

func TestReviewRules(t *testing.T) {
	m := testMachine()
	job := pendingJob(t)
	job.Status = models.JobStatusCompleted
	job.AwaitingReview = true

	_, _, err := m.Apply(job, Client, SubmitReview{Rating: 6})
	assert.Error(t, err)

	reviewed, _, err := m.Apply(job, Client, SubmitReview{Rating: 5})
	require.NoError(t, err)
	_, _, err = m.Apply(reviewed, Client, SubmitReview{Rating: 4})
	assert.Error(t, err, "a party reviews once")

	archived, _, err := m.Apply(reviewed, Tradie, SubmitReview{Rating: 3})
	require.NoError(t, err)
	invoice := archived.InvoiceID
	require.NotEmpty(t, invoice)

	_, _, err = m.Apply(archived, Tradie, SubmitReview{Rating: 3})
	assert.Error(t, err)
	assert.Equal(t, invoice, archived.InvoiceID)
}

func TestArchiveKeepsExistingInvoice(t *testing.T) {
	m := testMachine()
	job := pendingJob(t)
	job.Status = models.JobStatusCompleted
	job.AwaitingReview = true
	job.TradieReviewed = true
	job.InvoiceID = "INV-1-ABCDEFGHI"

	archived, _, err := m.Apply(job, Client, SubmitReview{Rating: 5})
	require.NoError(t, err)
	assert.True(t, archived.Archived)
	assert.Equal(t, "INV-1-ABCDEFGHI", archived.InvoiceID)
}

func TestAllowed(t *testing.T) {
	job := pendingJob(t)
	assert.Equal(t, []EventName{EventDecline, EventAccept}, Allowed(job, Tradie))
	assert.Empty(t, Allowed(job, Client))

	job.Status = models.JobStatusInfoProvided
	assert.Equal(t, []EventName{EventDecline, EventSubmitQuote}, Allowed(job, Tradie))
}

func TestNewRequestValidation(t *testing.T) {
	_, err := NewRequest("j", client(), client(), JobRequest{Title: "x"}, fixedNow)
	assert.Error(t, err)

	_, err = NewRequest("j", client(), tradie(), JobRequest{Title: " "}, fixedNow)
	assert.Error(t, err)

	self := tradie()
	_, err = NewRequest("j", self, self, JobRequest{Title: "x"}, fixedNow)
	assert.Error(t, err)
}
