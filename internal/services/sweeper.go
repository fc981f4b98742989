package services

import (
	"time"

	"signn-go/internal/config"
	"signn-go/internal/session"
	"signn-go/internal/vision"

	"go.uber.org/zap"
)

// Sweeper evicts check sessions that have gone idle without finalizing,
// along with their rolling vision buffers.
type Sweeper struct {
	log     *zap.Logger
	manager *session.Manager
	tracker *vision.Tracker
}

func NewSweeper(log *zap.Logger, manager *session.Manager, tracker *vision.Tracker) *Sweeper {
	return &Sweeper{
		log:     log,
		manager: manager,
		tracker: tracker,
	}
}

// Start runs the sweeper in a goroutine.
func (s *Sweeper) Start() {
	s.log.Info("Starting idle session sweeper...")
	go func() {
		// Ticker will fire on every minute.
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()

		for {
			<-ticker.C
			s.runSweep()
		}
	}()
}

func (s *Sweeper) runSweep() {
	timeout := time.Duration(config.Conf.Readiness.SessionIdleTimeoutMinutes) * time.Minute
	cutoff := time.Now().Add(-timeout)

	evicted := s.manager.EvictIdle(cutoff)
	for _, id := range evicted {
		s.tracker.Discard(id)
	}

	if len(evicted) > 0 {
		s.log.Info("Evicted idle check sessions",
			zap.Int("count", len(evicted)),
			zap.Strings("sessions", evicted),
		)
	}
}
