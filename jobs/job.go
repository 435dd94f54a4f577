// Package jobs runs the server's periodic background work.
package jobs

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"tradie-match-server/logger"
)

// ticker runs fn once at start and then on every interval until stopped.
type ticker struct {
	name     string
	interval time.Duration
	log      logger.Logger

	stopChan chan struct{}
	done     chan struct{}
	start    sync.Once
	stop     sync.Once
}

func newTicker(name string, interval time.Duration, log logger.Logger) *ticker {
	return &ticker{
		name:     name,
		interval: interval,
		log:      log,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (t *ticker) run(fn func()) {
	t.start.Do(func() {
		go t.loop(fn)
		t.log.Info("🚀 Background job started", zap.String("job", t.name), zap.Duration("interval", t.interval))
	})
}

func (t *ticker) loop(fn func()) {
	defer close(t.done)
	tick := time.NewTicker(t.interval)
	defer tick.Stop()

	fn()
	for {
		select {
		case <-tick.C:
			fn()
		case <-t.stopChan:
			return
		}
	}
}

// halt stops the loop and waits for a running tick to finish. A job that
// was never started stops immediately.
func (t *ticker) halt() {
	t.stop.Do(func() {
		close(t.stopChan)
		started := true
		t.start.Do(func() {
			started = false
			close(t.done)
		})
		if started {
			<-t.done
		}
		t.log.Info("🛑 Background job stopped", zap.String("job", t.name))
	})
}
