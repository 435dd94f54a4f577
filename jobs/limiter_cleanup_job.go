package jobs

import (
	"time"

	"go.uber.org/zap"

	"tradie-match-server/logger"
)

// Sweeper drops idle state and reports how much it removed.
type Sweeper interface {
	Cleanup() int
}

// LimiterCleanupJob sweeps idle per-client rate limiters.
type LimiterCleanupJob struct {
	*ticker
	sweepers []Sweeper
}

func NewLimiterCleanupJob(interval time.Duration, log logger.Logger, sweepers ...Sweeper) *LimiterCleanupJob {
	return &LimiterCleanupJob{ticker: newTicker("limiter-cleanup", interval, log), sweepers: sweepers}
}

func (j *LimiterCleanupJob) Start() { j.run(j.sweep) }

func (j *LimiterCleanupJob) Stop() { j.halt() }

func (j *LimiterCleanupJob) sweep() {
	removed := 0
	for _, s := range j.sweepers {
		removed += s.Cleanup()
	}
	if removed > 0 {
		j.log.Debug("🧹 Idle rate limiters removed", zap.Int("removed", removed))
	}
}
