package services

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/apperror"
	"tradie-match-server/calendar"
	"tradie-match-server/logger"
	"tradie-match-server/models"
	"tradie-match-server/realtime"
)

// Range names accepted by Block and Clear.
const (
	RangeDay   = "day"
	RangeWeek  = "week"
	RangeMonth = "month"
)

// CalendarStatus is what the availability badge shows.
type CalendarStatus struct {
	UnavailableNow bool              `json:"unavailable_now"`
	Reason         *calendar.Entry   `json:"reason,omitempty"`
	NextAvailable  *calendar.Opening `json:"next_available,omitempty"`
}

// ClearResult reports whether job bookings in the range were kept.
type ClearResult struct {
	Calendar     calendar.Calendar `json:"calendar"`
	JobSlotsKept bool              `json:"job_slots_kept"`
}

// CalendarService edits a tradesperson's availability. Date keys and slots
// are evaluated in the service's location.
type CalendarService struct {
	profiles ProfileRepository
	feed     FeedCache
	broker   realtime.Publisher
	log      logger.Logger
	now      func() time.Time
}

func NewCalendarService(profiles ProfileRepository, feed FeedCache, broker realtime.Publisher, loc *time.Location, log logger.Logger) *CalendarService {
	return &CalendarService{
		profiles: profiles,
		feed:     feed,
		broker:   broker,
		log:      log,
		now:      ClockIn(loc),
	}
}

func (s *CalendarService) Get(ctx context.Context, accountID string) (calendar.Calendar, error) {
	p, err := s.tradie(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if p.Calendar == nil {
		return calendar.Calendar{}, nil
	}
	return p.Calendar, nil
}

// Toggle flips one slot between open and manually blocked.
func (s *CalendarService) Toggle(ctx context.Context, accountID, dateKey string, slot calendar.Slot) (calendar.Calendar, error) {
	p, err := s.tradie(ctx, accountID)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.ToggleManualSlot(p.Calendar, dateKey, slot)
	if err != nil {
		return nil, translate(err, "toggle slot")
	}
	return s.store(ctx, p, cal)
}

// Block blocks every slot over a day, week or month starting at dateKey.
func (s *CalendarService) Block(ctx context.Context, accountID, dateKey, rangeName string) (calendar.Calendar, error) {
	p, err := s.tradie(ctx, accountID)
	if err != nil {
		return nil, err
	}
	span, err := spanOf(dateKey, rangeName)
	if err != nil {
		return nil, err
	}
	cal, err := calendar.BlockRange(p.Calendar, dateKey, span)
	if err != nil {
		return nil, translate(err, "block range")
	}
	return s.store(ctx, p, cal)
}

// Clear removes manual blocks over a range. Job bookings stay.
func (s *CalendarService) Clear(ctx context.Context, accountID, dateKey, rangeName string) (*ClearResult, error) {
	p, err := s.tradie(ctx, accountID)
	if err != nil {
		return nil, err
	}
	span, err := spanOf(dateKey, rangeName)
	if err != nil {
		return nil, err
	}
	cal, kept, err := calendar.ClearRange(p.Calendar, dateKey, span)
	if err != nil {
		return nil, translate(err, "clear range")
	}
	stored, err := s.store(ctx, p, cal)
	if err != nil {
		return nil, err
	}
	return &ClearResult{Calendar: stored, JobSlotsKept: kept}, nil
}

// Status is the availability of any tradesperson right now.
func (s *CalendarService) Status(ctx context.Context, tradieID string) (*CalendarStatus, error) {
	p, err := s.profiles.FindByID(ctx, tradieID)
	if err != nil {
		return nil, err
	}
	if err := requireTradie(p); err != nil {
		return nil, err
	}
	return statusOf(p.Calendar, s.now()), nil
}

func statusOf(cal calendar.Calendar, now time.Time) *CalendarStatus {
	return &CalendarStatus{
		UnavailableNow: calendar.IsUnavailableNow(cal, now),
		Reason:         calendar.CurrentUnavailabilityReason(cal, now),
		NextAvailable:  calendar.NextAvailable(cal, now),
	}
}

func spanOf(dateKey, rangeName string) (int, error) {
	switch rangeName {
	case RangeDay:
		return calendar.SpanDay, nil
	case RangeWeek:
		return calendar.SpanWeek, nil
	case RangeMonth:
		n, err := calendar.MonthSpan(dateKey)
		if err != nil {
			return 0, translate(err, "month span")
		}
		return n, nil
	}
	return 0, apperror.NewValidation("Range must be day, week or month")
}

func (s *CalendarService) tradie(ctx context.Context, accountID string) (*models.Profile, error) {
	p, err := s.profiles.FindByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := requireTradie(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CalendarService) store(ctx context.Context, p *models.Profile, cal calendar.Calendar) (calendar.Calendar, error) {
	if err := s.profiles.UpdateCalendar(ctx, p.ID, cal); err != nil {
		return nil, translate(err, "save calendar")
	}
	s.log.Info("📅 Calendar updated", zap.String("tradie_id", p.ID), zap.Int("days", len(cal)))
	p.Calendar = cal
	profileChanged(ctx, s.feed, s.broker, s.log, p)
	if cal == nil {
		return calendar.Calendar{}, nil
	}
	return cal, nil
}
