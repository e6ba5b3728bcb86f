package service

import (
	"flightprep_backend/internal/config"
	"flightprep_backend/pkg/scheduler"
	"math"
	"sync"
	"time"
)

// EngagementSettings 专注度计算参数
type EngagementSettings struct {
	TickInterval  time.Duration
	IdleThreshold time.Duration
	DecayStep     float64
	RecoverStep   float64
	MinScore      float64
}

func EngagementSettingsFromConfig(cfg config.EngagementConfig) EngagementSettings {
	return EngagementSettings{
		TickInterval:  time.Duration(cfg.TickSeconds) * time.Second,
		IdleThreshold: time.Duration(cfg.IdleThresholdSeconds) * time.Second,
		DecayStep:     cfg.DecayStep,
		RecoverStep:   cfg.RecoverStep,
		MinScore:      cfg.MinScore,
	}
}

// NextEngagement 纯函数：一次 tick 后的专注度。
// 距最后活动超过空闲阈值则衰减，否则缓慢恢复，结果保留两位小数。
func NextEngagement(score float64, sinceActivity time.Duration, s EngagementSettings) float64 {
	if sinceActivity > s.IdleThreshold {
		score = math.Max(s.MinScore, score-s.DecayStep)
	} else {
		score = math.Min(1.0, score+s.RecoverStep)
	}
	return math.Round(score*100) / 100
}

// EngagementTracker 跟踪单个活跃会话的专注度。
// 用户活动只刷新 lastActivity，分数只在 tick 时变化。
type EngagementTracker struct {
	mu           sync.Mutex
	settings     EngagementSettings
	sched        scheduler.Scheduler
	now          func() time.Time
	score        float64
	lastActivity time.Time
	cancel       scheduler.CancelFunc
	running      bool
}

func NewEngagementTracker(sched scheduler.Scheduler, settings EngagementSettings, now func() time.Time) *EngagementTracker {
	if now == nil {
		now = time.Now
	}
	return &EngagementTracker{
		settings: settings,
		sched:    sched,
		now:      now,
		score:    1.0,
	}
}

// Start 以满分开始追踪并启动周期 tick
func (t *EngagementTracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.score = 1.0
	t.lastActivity = t.now()
	t.cancel = t.sched.Every(t.settings.TickInterval, t.tick)
	t.running = true
}

func (t *EngagementTracker) tick() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.score = NextEngagement(t.score, t.now().Sub(t.lastActivity), t.settings)
}

// Touch 记录一次用户活动（指针/按键/滚动）
func (t *EngagementTracker) Touch() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lastActivity = t.now()
}

// Pause 暂停 tick，分数保持不变
func (t *EngagementTracker) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.running {
		return
	}
	t.cancel()
	t.cancel = nil
	t.running = false
}

// Resume 恢复 tick 并重置活动时间
func (t *EngagementTracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.running {
		return
	}
	t.lastActivity = t.now()
	t.cancel = t.sched.Every(t.settings.TickInterval, t.tick)
	t.running = true
}

// Stop 终止追踪，之后不可再启动
func (t *EngagementTracker) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
	t.running = false
}

func (t *EngagementTracker) Score() float64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.score
}

func (t *EngagementTracker) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running
}
