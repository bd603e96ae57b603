// Package autosave periodically writes a dirty layout session to disk.
package autosave

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultInterval is used when Config.Interval is not positive.
const DefaultInterval = 30 * time.Second

// Saver is the part of a session the loop drives.
type Saver interface {
	SaveIfDirty() (bool, error)
}

// Config holds configuration for the autosave loop.
type Config struct {
	Interval time.Duration
	Clock    clockwork.Clock
	Logger   *slog.Logger
}

// Loop saves a session on every tick when it has unsaved changes.
type Loop struct {
	interval time.Duration
	clock    clockwork.Clock
	saver    Saver
	logger   *slog.Logger
}

// New creates an autosave loop for saver.
func New(cfg Config, saver Saver) *Loop {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	clock := cfg.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Loop{
		interval: interval,
		clock:    clock,
		saver:    saver,
		logger:   logger,
	}
}

// Run starts the loop. Blocks until ctx is cancelled, then makes a final
// save attempt.
func (l *Loop) Run(ctx context.Context) {
	ticker := l.clock.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Info("autosave started", "interval", l.interval)

	for {
		select {
		case <-ctx.Done():
			l.tick()
			l.logger.Info("autosave stopped")
			return
		case <-ticker.Chan():
			l.tick()
		}
	}
}

// tick performs a single save attempt.
func (l *Loop) tick() {
	defer func() {
		if err := recover(); err != nil {
			l.logger.Error("autosave panic recovered", "error", err)
		}
	}()

	saved, err := l.saver.SaveIfDirty()
	if err != nil {
		// The session stays dirty, so the next tick retries.
		l.logger.Error("autosave: failed to save layout", "error", err)
		return
	}
	if saved {
		l.logger.Debug("autosave: layout saved")
	}
}
