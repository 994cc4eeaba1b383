package engine

import (
	"time"

	"golang.org/x/time/rate"
)

// Tier is the current debounce tier derived from observed ingestion rate.
type Tier int32

const (
	// TierIdle applies below the idle rate threshold; recompute reacts
	// quickly to user edits.
	TierIdle Tier = iota
	// TierNormal applies between the thresholds.
	TierNormal
	// TierLoad applies above the high-load threshold; a longer debounce
	// protects CPU during ingestion bursts.
	TierLoad
)

// String implements fmt.Stringer.
func (t Tier) String() string {
	switch t {
	case TierIdle:
		return "idle"
	case TierNormal:
		return "normal"
	case TierLoad:
		return "load"
	default:
		return "unknown"
	}
}

// IngestDecision tells the run loop how to react to a structural change
// caused by ingestion.
type IngestDecision int

const (
	// IngestAbsorbed means a debounce timer is already pending and will pick
	// up the change; nothing to do.
	IngestAbsorbed IngestDecision = iota
	// IngestRecompute means the throttle allows an immediate recompute.
	IngestRecompute
	// IngestArmDebounce means the throttle denied an immediate recompute and
	// no timer is pending; arm the debounce timer so the change is not lost.
	IngestArmDebounce
)

// Scheduler decides recompute timing: it debounces user-driven filter edits,
// throttles ingestion-driven recomputes, and adapts the debounce delay to
// the observed ingestion rate.
//
// The scheduler is decision-only: it owns no timers. The run loop feeds it
// events and interprets the returned decisions, which keeps the logic
// deterministic under test. Owned by the run loop; not safe for concurrent
// use.
type Scheduler struct {
	now func() time.Time

	idleDelay   time.Duration
	normalDelay time.Duration
	loadDelay   time.Duration

	idleBelow float64
	loadAbove float64

	throttle *rate.Limiter

	currentDelay time.Duration
	tier         Tier
	pending      bool

	arrived    int64
	lastSample time.Time
}

// SchedulerConfig configures a Scheduler. Zero fields fall back to defaults.
type SchedulerConfig struct {
	ThrottleInterval time.Duration
	IdleDelay        time.Duration
	NormalDelay      time.Duration
	LoadDelay        time.Duration
	IdleBelowRate    float64
	LoadAboveRate    float64
	Now              func() time.Time
}

// NewScheduler creates a scheduler starting in the idle tier.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.ThrottleInterval <= 0 {
		cfg.ThrottleInterval = DefaultThrottleInterval
	}
	if cfg.IdleDelay <= 0 {
		cfg.IdleDelay = DefaultIdleDelay
	}
	if cfg.NormalDelay <= 0 {
		cfg.NormalDelay = DefaultNormalDelay
	}
	if cfg.LoadDelay <= 0 {
		cfg.LoadDelay = DefaultLoadDelay
	}
	if cfg.IdleBelowRate <= 0 {
		cfg.IdleBelowRate = DefaultIdleBelowRate
	}
	if cfg.LoadAboveRate <= 0 {
		cfg.LoadAboveRate = DefaultLoadAboveRate
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	s := &Scheduler{
		now:          cfg.Now,
		idleDelay:    cfg.IdleDelay,
		normalDelay:  cfg.NormalDelay,
		loadDelay:    cfg.LoadDelay,
		idleBelow:    cfg.IdleBelowRate,
		loadAbove:    cfg.LoadAboveRate,
		throttle:     rate.NewLimiter(rate.Every(cfg.ThrottleInterval), 1),
		currentDelay: cfg.IdleDelay,
		tier:         TierIdle,
	}
	s.lastSample = s.now()
	return s
}

// OnEdit registers a filter-state mutation and returns the delay at which
// the single-shot debounce timer must be (re)armed. Only the last edit
// within the window survives.
func (s *Scheduler) OnEdit() time.Duration {
	s.pending = true
	return s.currentDelay
}

// OnIngest registers n newly merged records and decides whether the change
// triggers an immediate recompute, is absorbed by a pending timer, or needs
// the debounce timer armed.
func (s *Scheduler) OnIngest(n int) IngestDecision {
	s.arrived += int64(n)

	if s.pending {
		return IngestAbsorbed
	}
	if s.throttle.AllowN(s.now(), 1) {
		return IngestRecompute
	}
	return IngestArmDebounce
}

// DebounceFired clears the pending flag when the timer fires.
func (s *Scheduler) DebounceFired() {
	s.pending = false
}

// Pending reports whether a debounce timer is currently armed.
func (s *Scheduler) Pending() bool {
	return s.pending
}

// Sample closes the current sampling window, re-evaluates the debounce tier
// from the observed arrival rate, and returns the new tier.
//
// The tier is re-evaluated every window regardless of whether a debounce
// timer is pending.
func (s *Scheduler) Sample() Tier {
	now := s.now()
	elapsed := now.Sub(s.lastSample).Seconds()
	if elapsed <= 0 {
		return s.tier
	}

	perSecond := float64(s.arrived) / elapsed
	s.arrived = 0
	s.lastSample = now

	switch {
	case perSecond < s.idleBelow:
		s.tier = TierIdle
		s.currentDelay = s.idleDelay
	case perSecond > s.loadAbove:
		s.tier = TierLoad
		s.currentDelay = s.loadDelay
	default:
		s.tier = TierNormal
		s.currentDelay = s.normalDelay
	}
	return s.tier
}

// CurrentTier returns the tier chosen by the last sampling window.
func (s *Scheduler) CurrentTier() Tier {
	return s.tier
}

// CurrentDelay returns the debounce delay for the current tier.
func (s *Scheduler) CurrentDelay() time.Duration {
	return s.currentDelay
}
