package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/calendar"
	"tradie-match-server/events"
	"tradie-match-server/lifecycle"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
)

const (
	defaultPaymentTimeout = 30 * time.Second
	eventPublishTimeout   = 5 * time.Second
	paymentStartBatch     = 50
)

// ErrAlreadyMoved is returned when a system transition lost the race to
// another worker.
var ErrAlreadyMoved = errors.New("job already moved on")

// JobPhotoUploader stores the photos a client sends with ProvideInfo.
type JobPhotoUploader interface {
	UploadJobPhotos(ctx context.Context, jobID string, files []Upload) ([]string, error)
}

// JobDeps are the collaborators of JobService.
type JobDeps struct {
	Jobs     JobRepository
	Profiles ProfileRepository
	Accounts AccountRepository
	Reviews  ReviewRepository
	Blocks   BlockRepository
	Photos   JobPhotoUploader
	Gateway  PaymentGateway
	Machine  *lifecycle.Machine
	Events   events.Publisher
	Broker   realtime.Publisher
	Feed     FeedCache
	Log      logger.Logger

	PaymentTimeout    time.Duration
	PaymentStartDelay time.Duration
}

// JobService runs job events through the lifecycle machine, persists the
// result and carries out the effects.
type JobService struct {
	JobDeps
	now func() time.Time
}

func NewJobService(deps JobDeps) *JobService {
	if deps.PaymentTimeout <= 0 {
		deps.PaymentTimeout = defaultPaymentTimeout
	}
	if deps.Events == nil {
		deps.Events = events.NopPublisher{}
	}
	now := time.Now
	if deps.Machine != nil && deps.Machine.Now != nil {
		now = deps.Machine.Now
	}
	return &JobService{JobDeps: deps, now: now}
}

// JobView is a job as one of its parties sees it. Archived jobs only carry
// the reduced view.
type JobView struct {
	Job         *models.Job             `json:"job,omitempty"`
	Archived    *lifecycle.ArchivedView `json:"archived,omitempty"`
	Actions     []lifecycle.EventName   `json:"actions"`
	NeedsAction bool                    `json:"needs_action"`
	Role        lifecycle.Party         `json:"role"`
}

// JobList is everything the jobs screen shows.
type JobList struct {
	Active       []JobView                `json:"active"`
	Archived     []lifecycle.ArchivedView `json:"archived"`
	PendingCount int                      `json:"pending_count"`
}

type CreateJobRequest struct {
	TradieID    string `json:"tradie_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Budget      string `json:"budget"`
}

type QuoteRequest struct {
	HourlyRate     float64 `json:"hourly_rate" binding:"required"`
	EstimatedHours float64 `json:"estimated_hours" binding:"required"`
	Notes          string  `json:"notes"`
}

type BookingRequest struct {
	Date     string        `json:"date" binding:"required"`
	TimeSlot calendar.Slot `json:"time_slot" binding:"required"`
	Address  string        `json:"address" binding:"required"`
	Phone    string        `json:"phone" binding:"required"`
	Email    string        `json:"email"`
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required"`
	Comment string `json:"comment"`
}

// Request opens a direct job from a client to a tradesperson.
func (s *JobService) Request(ctx context.Context, clientID string, req CreateJobRequest) (*models.Job, error) {
	if _, err := requireVerified(ctx, s.Accounts, clientID, "request a job"); err != nil {
		return nil, err
	}
	client, err := s.Profiles.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	tradie, err := s.Profiles.FindByID(ctx, req.TradieID)
	if err != nil {
		return nil, err
	}
	blocked, err := s.Blocks.EitherBlocked(ctx, clientID, tradie.ID)
	if err != nil {
		return nil, translate(err, "check blocks")
	}
	if blocked {
		return nil, apperror.NewPermissionDenied("you cannot request a job from this user")
	}

	job, err := lifecycle.NewRequest(uuid.NewString(), client, tradie, lifecycle.JobRequest{
		Title:       req.Title,
		Description: req.Description,
		Budget:      req.Budget,
	}, s.now())
	if err != nil {
		return nil, translate(err, "new job request")
	}
	if err := s.Jobs.Create(ctx, &job); err != nil {
		return nil, translate(err, "create job")
	}

	s.Log.Info("✅ Job requested",
		zap.String("job_id", job.ID),
		zap.String("client_id", job.ClientID),
		zap.String("tradie_id", job.TradieID))
	s.announce(ctx, "", &job, lifecycle.Client, clientID, "request")
	return &job, nil
}

func (s *JobService) Approve(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.Approve{})
}

func (s *JobService) Decline(ctx context.Context, accountID, jobID, reason string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.Decline{Reason: reason})
}

func (s *JobService) Accept(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.Accept{})
}

func (s *JobService) RequestInfo(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.RequestInfo{})
}

// ProvideInfo uploads the photos and then answers the info request. The
// job state is checked before anything is uploaded.
func (s *JobService) ProvideInfo(ctx context.Context, accountID, jobID, description string, files []Upload) (*models.Job, error) {
	job, party, err := s.load(ctx, accountID, jobID)
	if err != nil {
		return nil, err
	}
	if !allows(*job, party, lifecycle.EventProvideInfo) {
		return nil, translate(&lifecycle.TransitionError{From: job.Status, Event: lifecycle.EventProvideInfo, Actor: party, Reason: "not allowed now"}, "")
	}
	if len(files) == 0 || len(files) > models.MaxInfoPhotos {
		return nil, apperror.NewValidation("Please add between 1 and 5 photos")
	}
	for _, f := range files {
		if err := ValidateImage(f.Filename, int64(len(f.Data))); err != nil {
			return nil, err
		}
	}

	urls, err := s.Photos.UploadJobPhotos(ctx, job.ID, files)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, job, party, accountID, lifecycle.ProvideInfo{Photos: urls, Description: description})
}

func (s *JobService) Quote(ctx context.Context, accountID, jobID string, req QuoteRequest) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.SubmitQuote{
		HourlyRate:     req.HourlyRate,
		EstimatedHours: req.EstimatedHours,
		Notes:          req.Notes,
	})
}

func (s *JobService) AcceptQuote(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.AcceptQuote{})
}

func (s *JobService) DeclineQuote(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.DeclineQuote{})
}

// RequestBooking needs a verified email; the contact email defaults to the
// account's.
func (s *JobService) RequestBooking(ctx context.Context, accountID, jobID string, req BookingRequest) (*models.Job, error) {
	account, err := requireVerified(ctx, s.Accounts, accountID, "request a booking")
	if err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = account.Email
	}
	return s.act(ctx, accountID, jobID, lifecycle.RequestBooking{
		Date:     req.Date,
		TimeSlot: req.TimeSlot,
		Address:  req.Address,
		Phone:    req.Phone,
		Email:    email,
	})
}

func (s *JobService) ConfirmBooking(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.ConfirmBooking{})
}

// Pay charges the client. A failed charge is recorded on the job and
// reported as retryable; calling Pay again retries.
func (s *JobService) Pay(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	job, party, err := s.load(ctx, accountID, jobID)
	if err != nil {
		return nil, err
	}
	if !allows(*job, party, lifecycle.EventCompletePayment) {
		return nil, translate(&lifecycle.TransitionError{From: job.Status, Event: lifecycle.EventCompletePayment, Actor: party, Reason: "not allowed now"}, "")
	}

	s.Log.Info("💳 Charging client", zap.String("job_id", job.ID), zap.Float64("amount", job.PaymentAmount))
	chargeCtx, cancel := context.WithTimeout(ctx, s.PaymentTimeout)
	receipt, chargeErr := s.Gateway.Charge(chargeCtx, job)
	cancel()

	if chargeErr != nil {
		s.Log.Warn("⚠️ Payment failed", zap.String("job_id", job.ID), zap.Error(chargeErr))
		if _, err := s.apply(ctx, job, party, accountID, lifecycle.PaymentFailed{Reason: paymentFailureReason(chargeErr)}); err != nil {
			return nil, err
		}
		return nil, apperror.NewRetryable("Payment failed. Please try again.", chargeErr)
	}

	s.Log.Info("✅ Payment completed", zap.String("job_id", job.ID), zap.String("reference", receipt.Reference))
	// The charge went through; record it even if the caller has gone away.
	return s.apply(context.WithoutCancel(ctx), job, party, accountID, lifecycle.CompletePayment{Reference: receipt.Reference})
}

func paymentFailureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "payment timed out"
	case errors.Is(err, ErrPaymentDeclined):
		return "payment declined"
	}
	return "payment failed"
}

func (s *JobService) Complete(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.Complete{})
}

func (s *JobService) Review(ctx context.Context, accountID, jobID string, req ReviewRequest) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.SubmitReview{Rating: req.Rating, Comment: req.Comment})
}

// Start is the start endpoint. Work only ever starts through the
// scheduler, so for a client or tradesperson this reports a conflict.
func (s *JobService) Start(ctx context.Context, accountID, jobID string) (*models.Job, error) {
	return s.act(ctx, accountID, jobID, lifecycle.StartWork{})
}

// StartWork moves one paid job to InProgress on behalf of the scheduler.
func (s *JobService) StartWork(ctx context.Context, jobID string) (*models.Job, error) {
	job, err := s.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, job, lifecycle.System, "", lifecycle.StartWork{})
}

// StartDuePayments starts work on every job whose payment settled at least
// the start delay ago. It returns how many jobs moved.
func (s *JobService) StartDuePayments(ctx context.Context, now time.Time) (int, error) {
	due, err := s.Jobs.ListPaidBefore(ctx, now.Add(-s.PaymentStartDelay), paymentStartBatch)
	if err != nil {
		return 0, err
	}
	started := 0
	for i := range due {
		if ctx.Err() != nil {
			return started, ctx.Err()
		}
		_, err := s.apply(ctx, &due[i], lifecycle.System, "", lifecycle.StartWork{})
		switch {
		case err == nil:
			started++
		case errors.Is(err, ErrAlreadyMoved), errors.Is(err, apperror.ErrConflict):
			s.Log.Debug("Job already started elsewhere", zap.String("job_id", due[i].ID))
		default:
			s.Log.Error("❌ Failed to start job", err, zap.String("job_id", due[i].ID))
		}
	}
	return started, nil
}

// Get returns one job for a party. Archived jobs come back reduced.
func (s *JobService) Get(ctx context.Context, accountID, jobID string) (*JobView, error) {
	job, party, err := s.load(ctx, accountID, jobID)
	if err != nil {
		return nil, err
	}
	view := viewOf(job, party, accountID)
	return &view, nil
}

// List splits the account's jobs into active and archived.
func (s *JobService) List(ctx context.Context, accountID string) (*JobList, error) {
	jobs, err := s.Jobs.ListForAccount(ctx, accountID)
	if err != nil {
		return nil, translate(err, "list jobs")
	}
	return buildJobList(jobs, accountID), nil
}

func (s *JobService) PendingCount(ctx context.Context, accountID string) (int, error) {
	jobs, err := s.Jobs.ListForAccount(ctx, accountID)
	if err != nil {
		return 0, translate(err, "list jobs")
	}
	return lifecycle.PendingCount(jobs, accountID), nil
}

func buildJobList(jobs []models.Job, accountID string) *JobList {
	list := &JobList{
		Active:       []JobView{},
		Archived:     []lifecycle.ArchivedView{},
		PendingCount: lifecycle.PendingCount(jobs, accountID),
	}
	for i := range jobs {
		party, ok := lifecycle.PartyOf(&jobs[i], accountID)
		if !ok {
			continue
		}
		if jobs[i].Archived {
			list.Archived = append(list.Archived, lifecycle.Archived(&jobs[i], accountID))
			continue
		}
		list.Active = append(list.Active, viewOf(&jobs[i], party, accountID))
	}
	return list
}

func viewOf(job *models.Job, party lifecycle.Party, accountID string) JobView {
	if job.Archived {
		av := lifecycle.Archived(job, accountID)
		return JobView{Archived: &av, Actions: []lifecycle.EventName{}, Role: party}
	}
	actions := lifecycle.Allowed(*job, party)
	if actions == nil {
		actions = []lifecycle.EventName{}
	}
	return JobView{
		Job:         job,
		Actions:     actions,
		NeedsAction: lifecycle.NeedsAction(job, party),
		Role:        party,
	}
}

func allows(job models.Job, party lifecycle.Party, name lifecycle.EventName) bool {
	for _, n := range lifecycle.Allowed(job, party) {
		if n == name {
			return true
		}
	}
	return false
}

func (s *JobService) load(ctx context.Context, accountID, jobID string) (*models.Job, lifecycle.Party, error) {
	job, err := s.Jobs.FindByID(ctx, jobID)
	if err != nil {
		return nil, "", err
	}
	party, ok := lifecycle.PartyOf(job, accountID)
	if !ok {
		return nil, "", apperror.NewNotFound("Job", jobID)
	}
	return job, party, nil
}

func (s *JobService) act(ctx context.Context, accountID, jobID string, ev lifecycle.Event) (*models.Job, error) {
	job, party, err := s.load(ctx, accountID, jobID)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, job, party, accountID, ev)
}

// apply runs ev, saves the job and then carries out the remaining effects.
// A review is stored together with its reviewer flag rather than by saving
// the whole job. System transitions save only if the job is still in the
// status they were computed from.
func (s *JobService) apply(ctx context.Context, job *models.Job, party lifecycle.Party, actorID string, ev lifecycle.Event) (*models.Job, error) {
	next, effects, err := s.Machine.Apply(*job, party, ev)
	if err != nil {
		return nil, translate(err, "apply job event")
	}

	if rec, ok := findReview(effects); ok {
		review := rec.Review
		review.ID = uuid.NewString()
		archiveAt := s.now()
		stored, err := s.Jobs.RecordReview(ctx, &review, func(j *models.Job) { s.Machine.Archive(j, archiveAt) })
		if err != nil {
			if isDuplicate(err) {
				return nil, apperror.NewConflict("You have already reviewed this job", job.ID)
			}
			return nil, translate(err, "record review")
		}
		next = *stored
		if next.Archived {
			effects = withoutReviewPrompts(effects)
		}
	} else if party == lifecycle.System {
		saved, err := s.Jobs.SaveIfStatus(ctx, &next, job.Status)
		if err != nil {
			return nil, translate(err, "save job")
		}
		if !saved {
			return nil, ErrAlreadyMoved
		}
	} else if err := s.Jobs.Save(ctx, &next); err != nil {
		return nil, translate(err, "save job")
	}

	s.Log.Info("🔄 Job transition",
		zap.String("job_id", next.ID),
		zap.String("event", string(ev.Name())),
		zap.String("actor", string(party)),
		zap.String("from", string(job.Status)),
		zap.String("to", string(next.Status)))

	s.runEffects(ctx, effects)
	s.announce(ctx, job.Status, &next, party, actorID, string(ev.Name()))
	return &next, nil
}

func findReview(effects []lifecycle.Effect) (lifecycle.RecordReview, bool) {
	for _, eff := range effects {
		if rec, ok := eff.(lifecycle.RecordReview); ok {
			return rec, true
		}
	}
	return lifecycle.RecordReview{}, false
}

// withoutReviewPrompts drops prompts computed from a job that turned out to
// be archived once the other party's review was taken into account.
func withoutReviewPrompts(effects []lifecycle.Effect) []lifecycle.Effect {
	out := effects[:0:0]
	for _, eff := range effects {
		if _, ok := eff.(lifecycle.PromptReview); !ok {
			out = append(out, eff)
		}
	}
	return out
}

// runEffects carries out post-save effects. The job is already stored, so
// failures are logged rather than returned.
func (s *JobService) runEffects(ctx context.Context, effects []lifecycle.Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case lifecycle.BookSlot:
			if err := s.bookSlot(ctx, e); err != nil {
				s.Log.Error("❌ Failed to book calendar slot", err,
					zap.String("tradie_id", e.TradieID),
					zap.String("date", e.DateKey),
					zap.String("job_id", e.JobID))
			}
		case lifecycle.RecomputeRating:
			if err := s.recomputeRating(ctx, e.TradieID); err != nil {
				s.Log.Error("❌ Failed to update rating", err, zap.String("tradie_id", e.TradieID))
			}
		case lifecycle.PromptReview:
			s.Log.Info("⭐ Review requested", zap.String("account_id", e.AccountID), zap.String("job_id", e.JobID))
		case lifecycle.SchedulePaymentStart:
			s.Log.Debug("Work start scheduled", zap.String("job_id", e.JobID), zap.Time("at", e.At))
		}
	}
}

// bookSlot overwrites the slot. Two confirmed bookings of the same slot end
// with the later one in the calendar.
func (s *JobService) bookSlot(ctx context.Context, e lifecycle.BookSlot) error {
	tradie, err := s.Profiles.FindByID(ctx, e.TradieID)
	if err != nil {
		return err
	}
	cal, err := calendar.BookJobSlot(tradie.Calendar, e.DateKey, e.Slot, e.JobID)
	if err != nil {
		return err
	}
	if err := s.Profiles.UpdateCalendar(ctx, tradie.ID, cal); err != nil {
		return err
	}
	tradie.Calendar = cal
	profileChanged(ctx, s.Feed, s.Broker, s.Log, tradie)
	return nil
}

func (s *JobService) recomputeRating(ctx context.Context, tradieID string) error {
	summary, err := s.Reviews.ClientRatingSummary(ctx, tradieID)
	if err != nil {
		return err
	}
	if err := s.Profiles.UpdateRating(ctx, tradieID, summary); err != nil {
		return err
	}
	s.Log.Info("⭐ Rating updated",
		zap.String("tradie_id", tradieID),
		zap.Float64("average", summary.Average),
		zap.Int("count", summary.Count))
	if p, err := s.Profiles.FindByID(ctx, tradieID); err == nil {
		profileChanged(ctx, s.Feed, s.Broker, s.Log, p)
	}
	return nil
}

// Opened announces a job created outside Request, such as one taken from
// the job board.
func (s *JobService) Opened(ctx context.Context, job *models.Job, party lifecycle.Party, actorID, event string) {
	s.announce(ctx, "", job, party, actorID, event)
}

// announce writes the domain event and pushes fresh job lists to both
// parties.
func (s *JobService) announce(ctx context.Context, from models.JobStatus, job *models.Job, party lifecycle.Party, actorID, event string) {
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()
	err := s.Events.PublishJobEvent(pubCtx, events.JobEvent{
		JobID:      job.ID,
		Event:      event,
		Actor:      string(party),
		ActorID:    actorID,
		FromStatus: string(from),
		ToStatus:   string(job.Status),
		ClientID:   job.ClientID,
		TradieID:   job.TradieID,
		InvoiceID:  job.InvoiceID,
		OccurredAt: job.UpdatedAt,
	})
	if err != nil {
		s.Log.Warn("⚠️ Job event not published", zap.String("job_id", job.ID), zap.Error(err))
	}

	for _, accountID := range []string{job.ClientID, job.TradieID} {
		if err := s.PublishSnapshot(ctx, accountID); err != nil {
			s.Log.Error("❌ Failed to load jobs for snapshot", err, zap.String("account_id", accountID))
		}
	}
}

// PublishSnapshot pushes the account's current job list to its stream.
func (s *JobService) PublishSnapshot(ctx context.Context, accountID string) error {
	if s.Broker == nil {
		return nil
	}
	jobs, err := s.Jobs.ListForAccount(ctx, accountID)
	if err != nil {
		return err
	}
	s.Broker.Publish(realtime.JobsTopic(accountID), realtime.KindJobs, buildJobList(jobs, accountID))
	return nil
}
