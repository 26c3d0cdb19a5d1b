package bot

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler drives the bot on a fixed poll interval. One cycle runs at a
// time; cancellation is observed between cycles and inside a cycle's
// suspension points, never mid-post.
type Scheduler struct {
	bot      *Bot
	interval time.Duration
}

func NewScheduler(b *Bot, interval time.Duration) *Scheduler {
	return &Scheduler{bot: b, interval: interval}
}

// Run executes cycles until the context is cancelled. The first cycle starts
// immediately rather than waiting a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	slog.Info("[Scheduler] Starting poll loop", slog.Duration("interval", s.interval))

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.tick(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("[Scheduler] Shutting down")
			return
		case <-ticker.C:
			s.tick(ctx)
		}
	}
}

func (s *Scheduler) tick(ctx context.Context) {
	s.bot.RunCycle(ctx)
	if _, err := s.bot.MaybePostSummary(ctx); err != nil {
		slog.Error("[Scheduler] Daily summary failed", slog.String("error", err.Error()))
	}
}
