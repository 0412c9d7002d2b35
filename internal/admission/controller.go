package admission

import (
	"log/slog"
	"sync"
	"time"
)

// Verdict is the outcome of an admission check. Rejection is a normal
// return value, never an error.
type Verdict int

const (
	VerdictAdmitted Verdict = iota
	VerdictRateLimited
	VerdictBlocked
)

func (v Verdict) String() string {
	switch v {
	case VerdictAdmitted:
		return "admitted"
	case VerdictRateLimited:
		return "rate_limited"
	case VerdictBlocked:
		return "blocked"
	default:
		return "unknown"
	}
}

// Config holds admission control tuning knobs
type Config struct {
	MaxRequests      int           // Cap on admitted requests per window
	Window           time.Duration // Sliding-window width
	LockoutThreshold int           // Failure count that triggers blocking
	LockoutDuration  time.Duration // Block duration once triggered
	IdleTTL          time.Duration // Inactivity before a client record may be evicted
}

// DefaultConfig returns the default admission settings
func DefaultConfig() Config {
	return Config{
		MaxRequests:      100,
		Window:           60 * time.Second,
		LockoutThreshold: 5,
		LockoutDuration:  15 * time.Minute,
		IdleTTL:          10 * time.Minute,
	}
}

// Metrics receives admission outcomes for telemetry. Implementations must be
// safe for concurrent use.
type Metrics interface {
	ObserveVerdict(v Verdict)
	ObserveAuthFailure()
}

// clientRecord tracks one client identifier: its request timestamps inside
// the trailing window plus its auth-failure lockout state. The record mutex
// guards the full read-modify-write sequence so two concurrent requests from
// one identifier cannot both claim the last window slot or lose a failure
// increment.
type clientRecord struct {
	mu           sync.Mutex
	window       []time.Time
	failures     int
	blockedUntil time.Time
	lastSeen     time.Time
}

// Controller is a per-client sliding-window request counter combined with an
// auth-failure lockout tracker. State is process-memory-resident and does not
// survive restart. The zero value is not usable; use New.
type Controller struct {
	cfg     Config
	logger  *slog.Logger
	metrics Metrics

	mu      sync.Mutex // guards clients map only, never held across record work
	clients map[string]*clientRecord
}

// New creates a Controller. metrics may be nil.
func New(cfg Config, logger *slog.Logger, metrics Metrics) *Controller {
	return &Controller{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics,
		clients: make(map[string]*clientRecord),
	}
}

// record returns the record for clientID, creating it on first observation.
func (c *Controller) record(clientID string) *clientRecord {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.clients[clientID]
	if !ok {
		rec = &clientRecord{}
		c.clients[clientID] = rec
	}
	return rec
}

// Check evaluates the lockout gate and the sliding window for clientID at
// the given instant. The lockout is checked first: an armed lockout whose
// deadline has passed is cleared and evaluation continues against the window.
// Window entries older than the window width are pruned lazily here; there is
// no background reset.
func (c *Controller) Check(clientID string, now time.Time) Verdict {
	rec := c.record(clientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.lastSeen = now

	if rec.failures >= c.cfg.LockoutThreshold {
		if now.Before(rec.blockedUntil) {
			c.observe(VerdictBlocked)
			return VerdictBlocked
		}
		// Lockout expired: first observation after the deadline clears it.
		rec.failures = 0
		rec.blockedUntil = time.Time{}
	}

	kept := rec.window[:0]
	for _, ts := range rec.window {
		if now.Sub(ts) < c.cfg.Window {
			kept = append(kept, ts)
		}
	}
	rec.window = kept

	if len(rec.window) < c.cfg.MaxRequests {
		rec.window = append(rec.window, now)
		c.observe(VerdictAdmitted)
		return VerdictAdmitted
	}

	c.observe(VerdictRateLimited)
	return VerdictRateLimited
}

// Allow reports whether a request from clientID is admitted at the given
// instant.
func (c *Controller) Allow(clientID string, now time.Time) bool {
	return c.Check(clientID, now) == VerdictAdmitted
}

// RecordFailure counts one failed authentication attempt against clientID.
// Callers must invoke it exactly once per failed attempt. Reaching the
// lockout threshold arms the block; further failures extend it.
func (c *Controller) RecordFailure(clientID string, now time.Time) {
	rec := c.record(clientID)

	rec.mu.Lock()
	defer rec.mu.Unlock()

	rec.lastSeen = now
	rec.failures++

	if rec.failures >= c.cfg.LockoutThreshold {
		rec.blockedUntil = now.Add(c.cfg.LockoutDuration)
		c.logger.Warn("client locked out",
			slog.String("client_id", clientID),
			slog.Int("failures", rec.failures),
			slog.Time("blocked_until", rec.blockedUntil))
	}

	if c.metrics != nil {
		c.metrics.ObserveAuthFailure()
	}
}

// Sweep evicts records that have been idle past IdleTTL and carry no armed
// lockout. Returns the number of evicted records.
func (c *Controller) Sweep(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	evicted := 0
	for id, rec := range c.clients {
		rec.mu.Lock()
		idle := now.Sub(rec.lastSeen) >= c.cfg.IdleTTL
		locked := rec.failures >= c.cfg.LockoutThreshold && now.Before(rec.blockedUntil)
		rec.mu.Unlock()

		if idle && !locked {
			delete(c.clients, id)
			evicted++
		}
	}
	return evicted
}

// Size returns the number of tracked client records.
func (c *Controller) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.clients)
}

func (c *Controller) observe(v Verdict) {
	if c.metrics != nil {
		c.metrics.ObserveVerdict(v)
	}
}
