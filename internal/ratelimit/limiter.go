package ratelimit

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"
)

const window = time.Hour

// Limiter enforces a rolling per-hour cap on posting actions. Timestamps are
// pruned to the trailing window on every check and persisted to a flat file
// so the window survives a process restart.
type Limiter struct {
	capPerHour int
	path       string
	actions    []time.Time

	delayMin time.Duration
	delayMax time.Duration

	now func() time.Time
	rng *rand.Rand
}

// Option tweaks a Limiter; used by tests to inject the clock and rng.
type Option func(*Limiter)

func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

func WithRand(rng *rand.Rand) Option {
	return func(l *Limiter) { l.rng = rng }
}

func WithDelayRange(min, max time.Duration) Option {
	return func(l *Limiter) { l.delayMin, l.delayMax = min, max }
}

// New builds a limiter, loading any persisted action timestamps from path.
// An empty path keeps the state in memory only.
func New(capPerHour int, path string, opts ...Option) (*Limiter, error) {
	l := &Limiter{
		capPerHour: capPerHour,
		path:       path,
		now:        time.Now,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(l)
	}

	if path != "" {
		if err := l.load(); err != nil {
			return nil, fmt.Errorf("loading rate state: %w", err)
		}
	}
	return l, nil
}

// Allow reports whether one more action fits inside the trailing window.
func (l *Limiter) Allow() bool {
	l.prune()
	return len(l.actions) < l.capPerHour
}

// Record appends an action at the current time and persists the state.
func (l *Limiter) Record() error {
	l.prune()
	l.actions = append(l.actions, l.now())
	return l.save()
}

// Remaining is how many actions the current window still permits.
func (l *Limiter) Remaining() int {
	l.prune()
	if r := l.capPerHour - len(l.actions); r > 0 {
		return r
	}
	return 0
}

// Delay picks a uniform random pause within the configured range. This is a
// scheduling decision applied before posting, separate from the hourly cap;
// callers sleep it through a cancellable select.
func (l *Limiter) Delay() time.Duration {
	if l.delayMax <= l.delayMin {
		return l.delayMin
	}
	return l.delayMin + time.Duration(l.rng.Int63n(int64(l.delayMax-l.delayMin)))
}

func (l *Limiter) prune() {
	cutoff := l.now().Add(-window)
	kept := l.actions[:0]
	for _, t := range l.actions {
		if t.After(cutoff) {
			kept = append(kept, t)
		}
	}
	l.actions = kept
}

func (l *Limiter) load() error {
	data, err := os.ReadFile(l.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, &l.actions); err != nil {
		slog.Warn("[RateLimiter] Discarding unreadable rate state",
			slog.String("path", l.path),
			slog.String("error", err.Error()))
		l.actions = nil
	}
	return nil
}

func (l *Limiter) save() error {
	if l.path == "" {
		return nil
	}
	data, err := json.Marshal(l.actions)
	if err != nil {
		return err
	}
	return os.WriteFile(l.path, data, 0644)
}
