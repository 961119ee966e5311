package cache

import (
	"time"

	"github.com/evrwell/habitstore/internal/logger"
	"github.com/evrwell/habitstore/internal/storage"
)

// Sweeper periodically purges expired cache rows. Reads already treat
// expired rows as absent, so the sweep only reclaims space; a failed
// sweep is logged and retried on the next tick, never escalated.
type Sweeper struct {
	store    storage.Provider
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

func NewSweeper(store storage.Provider, interval time.Duration) *Sweeper {
	return &Sweeper{
		store:    store,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start runs one immediate sweep, then sweeps on every tick until Stop
// is called.
func (s *Sweeper) Start() {
	go func() {
		defer close(s.done)

		s.sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stop:
				return
			}
		}
	}()
}

// Stop halts the sweep loop and waits for an in-flight sweep to finish.
func (s *Sweeper) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Sweeper) sweep() {
	purged, err := s.store.ClearExpiredCache()
	if err != nil {
		logger.Warn("cache sweep failed", "error", err)
		return
	}
	if purged > 0 {
		logger.Debug("cache sweep purged expired entries", "count", purged)
	}
}
