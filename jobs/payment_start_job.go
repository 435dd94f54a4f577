package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/logger"
)

// PaymentStarter moves paid jobs whose start delay has passed to in
// progress, returning how many moved.
type PaymentStarter interface {
	StartDuePayments(ctx context.Context, now time.Time) (int, error)
}

// PaymentStartJob starts work on paid jobs once the delay after payment
// has elapsed. The store update is conditional, so overlapping runs or a
// second server instance never start a job twice.
type PaymentStartJob struct {
	*ticker
	starter PaymentStarter
	timeout time.Duration
	now     func() time.Time
}

// NewPaymentStartJob creates a new payment start job
func NewPaymentStartJob(starter PaymentStarter, interval time.Duration, log logger.Logger) *PaymentStartJob {
	return &PaymentStartJob{
		ticker:  newTicker("payment-start", interval, log),
		starter: starter,
		timeout: interval,
		now:     time.Now,
	}
}

// Start begins the payment start job
func (j *PaymentStartJob) Start() {
	j.run(j.startDue)
}

// Stop stops the job and waits for the current run.
func (j *PaymentStartJob) Stop() {
	j.halt()
}

func (j *PaymentStartJob) startDue() {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	n, err := j.starter.StartDuePayments(ctx, j.now())
	if err != nil {
		j.log.Error("❌ Error starting paid jobs", err)
		return
	}
	if n > 0 {
		j.log.Info("⏰ Started paid jobs", zap.Int("count", n))
	}
}
