package service

import (
	"flightprep_backend/pkg/scheduler"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{cur: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cur
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(d)
}

func TestNextEngagementDecayAndRecover(t *testing.T) {
	s := testEngagementSettings()

	// 空闲超过阈值时衰减
	assert.Equal(t, 0.9, NextEngagement(1.0, 31*time.Second, s))
	assert.Equal(t, 0.8, NextEngagement(0.9, 60*time.Second, s))

	// 活跃时缓慢恢复
	assert.Equal(t, 0.55, NextEngagement(0.5, 5*time.Second, s))

	// 正好等于阈值不算空闲
	assert.Equal(t, 1.0, NextEngagement(1.0, 30*time.Second, s))
}

func TestNextEngagementBounds(t *testing.T) {
	s := testEngagementSettings()

	// 下限 0.1
	assert.Equal(t, 0.1, NextEngagement(0.15, time.Minute, s))
	assert.Equal(t, 0.1, NextEngagement(0.1, time.Hour, s))

	// 上限 1.0
	assert.Equal(t, 1.0, NextEngagement(1.0, time.Second, s))
	assert.Equal(t, 1.0, NextEngagement(0.97, time.Second, s))
}

func TestEngagementTrackerIdleDecay(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	sched := scheduler.NewManual()
	tracker := NewEngagementTracker(sched, testEngagementSettings(), clock.Now)

	tracker.Start()
	require.Equal(t, 1.0, tracker.Score())

	// 用户持续空闲，每个 tick 衰减 0.1
	clock.Advance(40 * time.Second)
	sched.Tick()
	assert.Equal(t, 0.9, tracker.Score())

	clock.Advance(10 * time.Second)
	sched.Tick()
	assert.Equal(t, 0.8, tracker.Score())

	// 一次活动后恢复增长
	tracker.Touch()
	clock.Advance(10 * time.Second)
	sched.Tick()
	assert.Equal(t, 0.85, tracker.Score())
}

func TestEngagementTrackerScoreNeverBelowFloor(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	sched := scheduler.NewManual()
	tracker := NewEngagementTracker(sched, testEngagementSettings(), clock.Now)
	tracker.Start()

	clock.Advance(time.Minute)
	for i := 0; i < 50; i++ {
		sched.Tick()
		clock.Advance(10 * time.Second)
	}
	assert.Equal(t, 0.1, tracker.Score())
}

func TestEngagementTrackerPauseStopsTicking(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	sched := scheduler.NewManual()
	tracker := NewEngagementTracker(sched, testEngagementSettings(), clock.Now)
	tracker.Start()

	tracker.Pause()
	require.False(t, tracker.Running())
	require.Equal(t, 0, sched.TaskCount())

	clock.Advance(5 * time.Minute)
	sched.Tick()
	assert.Equal(t, 1.0, tracker.Score(), "paused tracker must not decay")

	tracker.Resume()
	require.True(t, tracker.Running())
	clock.Advance(time.Minute)
	sched.Tick()
	assert.Equal(t, 0.9, tracker.Score())
}

func TestEngagementTrackerStopReleasesTask(t *testing.T) {
	sched := scheduler.NewManual()
	tracker := NewEngagementTracker(sched, testEngagementSettings(), nil)
	tracker.Start()
	require.Equal(t, 1, sched.TaskCount())

	tracker.Stop()
	assert.Equal(t, 0, sched.TaskCount())
	assert.False(t, tracker.Running())
}
