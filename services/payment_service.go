package services

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"tradie-match-server/models"
)

// ErrPaymentDeclined is returned by a gateway that refused the charge.
var ErrPaymentDeclined = errors.New("payment declined")

// PaymentReceipt is a successful charge.
type PaymentReceipt struct {
	Reference string
	Amount    float64
	ChargedAt time.Time
}

// PaymentGateway charges the client for a job.
type PaymentGateway interface {
	Charge(ctx context.Context, job *models.Job) (PaymentReceipt, error)
}

// SimulatedGateway stands in for a payment provider. It waits Delay and
// then succeeds, except every FailEvery-th call fails when FailEvery > 0.
type SimulatedGateway struct {
	Delay     time.Duration
	FailEvery int

	calls atomic.Int64
}

func NewSimulatedGateway(delay time.Duration, failEvery int) *SimulatedGateway {
	return &SimulatedGateway{Delay: delay, FailEvery: failEvery}
}

func (g *SimulatedGateway) Charge(ctx context.Context, job *models.Job) (PaymentReceipt, error) {
	n := g.calls.Add(1)

	if g.Delay > 0 {
		timer := time.NewTimer(g.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return PaymentReceipt{}, ctx.Err()
		case <-timer.C:
		}
	}

	if g.FailEvery > 0 && n%int64(g.FailEvery) == 0 {
		return PaymentReceipt{}, fmt.Errorf("%w: card was not accepted", ErrPaymentDeclined)
	}
	return PaymentReceipt{
		Reference: "PAY-" + uuid.NewString(),
		Amount:    job.PaymentAmount,
		ChargedAt: time.Now(),
	}, nil
}
