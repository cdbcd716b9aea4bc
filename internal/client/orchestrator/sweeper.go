package orchestrator

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/logging"
)

// DefaultRetention is how long trashed entities are kept.
const DefaultRetention = 30 * 24 * time.Hour

type purger interface {
	PurgeExpired(ctx context.Context, retention time.Duration) (int, error)
}

// Sweeper purges expired trash periodically.
type Sweeper struct {
	target    purger
	retention time.Duration
	interval  time.Duration
	log       logging.Logger
}

func NewSweeper(target purger, retention, interval time.Duration, log logging.Logger) *Sweeper {
	return &Sweeper{target: target, retention: retention, interval: interval, log: log.With("module", "sweeper")}
}

// Run sweeps once immediately and then every interval until ctx is done. A
// non-positive retention or interval disables sweeping.
func (s *Sweeper) Run(ctx context.Context) {
	if s.retention <= 0 || s.interval <= 0 {
		s.log.Info(ctx, "trash sweeper disabled")
		return
	}

	t := time.NewTicker(s.interval)
	defer t.Stop()

	for {
		s.Sweep(ctx)
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Sweep runs one pass and returns the number of purged entities.
func (s *Sweeper) Sweep(ctx context.Context) int {
	n, err := s.target.PurgeExpired(ctx, s.retention)
	if err != nil {
		s.log.Error(ctx, "trash sweep failed", "error", err)
	}
	return n
}
