package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock drives the scheduler deterministically.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func newTestScheduler(clock *fakeClock) *Scheduler {
	return NewScheduler(SchedulerConfig{
		ThrottleInterval: 500 * time.Millisecond,
		IdleDelay:        100 * time.Millisecond,
		NormalDelay:      200 * time.Millisecond,
		LoadDelay:        400 * time.Millisecond,
		IdleBelowRate:    5,
		LoadAboveRate:    50,
		Now:              clock.Now,
	})
}

func TestSchedulerOnEditUsesCurrentDelay(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestScheduler(clock)

	assert.Equal(t, 100*time.Millisecond, s.OnEdit(), "starts in idle tier")
	assert.True(t, s.Pending())

	s.DebounceFired()
	assert.False(t, s.Pending())
}

func TestSchedulerThrottle(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestScheduler(clock)

	// First ingest: throttle allows an immediate recompute.
	assert.Equal(t, IngestRecompute, s.OnIngest(10))

	// Within the interval: denied, debounce armed instead.
	clock.Advance(100 * time.Millisecond)
	assert.Equal(t, IngestArmDebounce, s.OnIngest(10))

	// With a timer pending, further changes are absorbed.
	s.OnEdit()
	clock.Advance(time.Second)
	assert.Equal(t, IngestAbsorbed, s.OnIngest(10))

	// Timer fired and interval elapsed: immediate again.
	s.DebounceFired()
	assert.Equal(t, IngestRecompute, s.OnIngest(10))
}

func TestSchedulerRateTiers(t *testing.T) {
	tests := []struct {
		name     string
		arrived  int
		expected Tier
		delay    time.Duration
	}{
		{"idle", 3, TierIdle, 100 * time.Millisecond},
		{"low_boundary_is_normal", 5, TierNormal, 200 * time.Millisecond},
		{"normal", 30, TierNormal, 200 * time.Millisecond},
		{"high_boundary_is_normal", 50, TierNormal, 200 * time.Millisecond},
		{"load", 80, TierLoad, 400 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(1000, 0)}
			s := newTestScheduler(clock)

			s.OnIngest(tt.arrived)
			clock.Advance(time.Second)

			assert.Equal(t, tt.expected, s.Sample())
			assert.Equal(t, tt.expected, s.CurrentTier())
			assert.Equal(t, tt.delay, s.CurrentDelay())
		})
	}
}

func TestSchedulerSampleResetsWindow(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestScheduler(clock)

	s.OnIngest(100)
	clock.Advance(time.Second)
	assert.Equal(t, TierLoad, s.Sample())

	// The next window saw nothing; tier drops back to idle.
	clock.Advance(time.Second)
	assert.Equal(t, TierIdle, s.Sample())
}

func TestSchedulerSampleWhilePending(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s := newTestScheduler(clock)

	s.OnEdit()
	s.OnIngest(200)
	clock.Advance(time.Second)

	// Tier adapts regardless of the pending timer.
	assert.Equal(t, TierLoad, s.Sample())
	assert.True(t, s.Pending())
	assert.Equal(t, 400*time.Millisecond, s.OnEdit(), "next edit uses the new delay")
}

func TestTierString(t *testing.T) {
	assert.Equal(t, "idle", TierIdle.String())
	assert.Equal(t, "normal", TierNormal.String())
	assert.Equal(t, "load", TierLoad.String())
	assert.Equal(t, "unknown", Tier(99).String())
}
