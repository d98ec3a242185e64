package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper exposes abandoned attempts for removal
type Sweeper interface {
	Expired(now time.Time) []string
	Delete(id string) error
}

// Cleaner periodically discards expired assessment attempts
type Cleaner struct {
	sweeper  Sweeper
	interval time.Duration
	now      func() time.Time
}

// NewCleaner creates a new cleanup worker
func NewCleaner(sweeper Sweeper, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		sweeper:  sweeper,
		interval: interval,
		now:      time.Now,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.Sweep()

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Sweep removes every attempt expired at the current time and returns
// how many were removed
func (c *Cleaner) Sweep() int {
	expired := c.sweeper.Expired(c.now())
	if len(expired) == 0 {
		slog.Debug("no expired attempts found")
		return 0
	}

	removed := 0
	for _, id := range expired {
		if err := c.sweeper.Delete(id); err != nil {
			slog.Error("failed to delete expired attempt", "error", err, "attempt_id", id)
			continue
		}
		removed++
	}

	slog.Info("expired attempts removed", "count", removed)
	return removed
}
