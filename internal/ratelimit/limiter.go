package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/phrazzld/recruiter-api/internal/metrics"
)

// Defaults applied to zero-valued Config fields.
const (
	DefaultMaxRequests   = 10
	DefaultWindow        = time.Minute
	DefaultSweepInterval = 5 * time.Minute
)

// Config sets the ceiling and window of the gate.
type Config struct {
	MaxRequests   int
	Window        time.Duration
	SweepInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.MaxRequests == 0 {
		c.MaxRequests = DefaultMaxRequests
	}
	if c.Window == 0 {
		c.Window = DefaultWindow
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

// Decision describes the outcome of one admission check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// window is the ordered request log of one identity. removed is set when the
// sweep deletes the window from the map; holders of a stale pointer must look
// the identity up again.
type window struct {
	mu      sync.Mutex
	stamps  []time.Time
	removed bool
}

// prune drops every stamp at or before cutoff. Stamps are appended in
// order, so the survivors form a suffix.
func (w *window) prune(cutoff time.Time) {
	i := 0
	for i < len(w.stamps) && !w.stamps[i].After(cutoff) {
		i++
	}
	if i > 0 {
		w.stamps = append(w.stamps[:0], w.stamps[i:]...)
	}
}

// Gate is a per-identity sliding-window rate limiter. It is safe for
// concurrent use.
type Gate struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	mu      sync.RWMutex
	windows map[string]*window
}

// Option customizes a Gate.
type Option func(*Gate)

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gate) {
		if now != nil {
			g.now = now
		}
	}
}

// WithMetrics records rejections and tracked identities on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(g *Gate) {
		g.metrics = m
	}
}

// New creates a Gate.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*Gate, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	cfg = cfg.withDefaults()
	if cfg.MaxRequests < 1 {
		return nil, fmt.Errorf("max requests must be positive, got %d", cfg.MaxRequests)
	}
	if cfg.Window <= 0 || cfg.SweepInterval <= 0 {
		return nil, fmt.Errorf("window and sweep interval must be positive")
	}

	g := &Gate{
		config:  cfg,
		logger:  logger,
		now:     time.Now,
		windows: make(map[string]*window),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Config returns the effective configuration.
func (g *Gate) Config() Config { return g.config }

// Admit reports whether a request from identity may proceed, recording it
// when it may.
func (g *Gate) Admit(identity string) bool {
	return g.Decide(identity).Allowed
}

// Decide checks identity against the ceiling. An admitted request is
// appended to the identity's window; a rejected one leaves it unchanged.
func (g *Gate) Decide(identity string) Decision {
	for {
		w := g.lookup(identity)
		w.mu.Lock()
		if w.removed {
			w.mu.Unlock()
			continue
		}

		now := g.now()
		w.prune(now.Add(-g.config.Window))

		if len(w.stamps) >= g.config.MaxRequests {
			retryAfter := w.stamps[0].Add(g.config.Window).Sub(now)
			w.mu.Unlock()
			g.metrics.ObserveRejection()
			return Decision{
				Allowed:    false,
				Limit:      g.config.MaxRequests,
				Remaining:  0,
				RetryAfter: retryAfter,
			}
		}

		w.stamps = append(w.stamps, now)
		remaining := g.config.MaxRequests - len(w.stamps)
		w.mu.Unlock()
		return Decision{Allowed: true, Limit: g.config.MaxRequests, Remaining: remaining}
	}
}

// lookup fetches or creates the window for identity.
func (g *Gate) lookup(identity string) *window {
	g.mu.RLock()
	w, ok := g.windows[identity]
	g.mu.RUnlock()
	if ok {
		return w
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if w, ok = g.windows[identity]; ok {
		return w
	}
	w = &window{}
	g.windows[identity] = w
	return w
}

// Len returns the number of tracked identities.
func (g *Gate) Len() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.windows)
}

// Sweep prunes every window and removes identities left empty. It returns
// the number of identities removed. The map lock is only held per deletion.
func (g *Gate) Sweep() int {
	g.mu.RLock()
	identities := make([]string, 0, len(g.windows))
	for id := range g.windows {
		identities = append(identities, id)
	}
	g.mu.RUnlock()

	removed := 0
	for _, id := range identities {
		if g.sweepOne(id) {
			removed++
		}
	}

	g.metrics.SetTrackedIdentities(g.Len())
	return removed
}

func (g *Gate) sweepOne(identity string) bool {
	g.mu.RLock()
	w, ok := g.windows[identity]
	g.mu.RUnlock()
	if !ok {
		return false
	}

	w.mu.Lock()
	w.prune(g.now().Add(-g.config.Window))
	empty := len(w.stamps) == 0
	w.mu.Unlock()
	if !empty {
		return false
	}

	// Lock order: map, then window.
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.windows[identity] != w {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.stamps) != 0 {
		return false
	}
	w.removed = true
	delete(g.windows, identity)
	return true
}

// Run sweeps on every SweepInterval tick until ctx is done.
func (g *Gate) Run(ctx context.Context) {
	ticker := time.NewTicker(g.config.SweepInterval)
	defer ticker.Stop()

	g.logger.Info("rate limit sweeper started",
		"interval", g.config.SweepInterval.String(),
		"max_requests", g.config.MaxRequests,
		"window", g.config.Window.String())

	for {
		select {
		case <-ctx.Done():
			g.logger.Info("rate limit sweeper stopped")
			return
		case <-ticker.C:
			removed := g.Sweep()
			g.logger.Debug("rate limit sweep completed",
				"removed_identities", removed,
				"tracked_identities", g.Len())
		}
	}
}
