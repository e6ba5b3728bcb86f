package service

import (
	"context"
	"flightprep_backend/internal/model"
	"flightprep_backend/internal/util"
	"flightprep_backend/pkg/logger"
	"flightprep_backend/pkg/monitoring"
	"flightprep_backend/pkg/scheduler"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"
)

// SessionService 管理每个用户的活跃学习会话。
// 同一用户同时只允许一个活跃会话，重复 start 直接拒绝。
type SessionService struct {
	mu     sync.Mutex
	active map[uint]*activeSession

	sessions   SessionStore
	profiles   ProfileStore
	sched      scheduler.Scheduler
	engagement EngagementSettings
	now        func() time.Time
	loc        *time.Location
}

type activeSession struct {
	session *model.LearningSession
	tracker *EngagementTracker
	paused  bool
}

func NewSessionService(
	sessions SessionStore,
	profiles ProfileStore,
	sched scheduler.Scheduler,
	engagement EngagementSettings,
) *SessionService {
	return &SessionService{
		active:     make(map[uint]*activeSession),
		sessions:   sessions,
		profiles:   profiles,
		sched:      sched,
		engagement: engagement,
		now:        time.Now,
		loc:        time.Local,
	}
}

type StartSessionInput struct {
	SessionType model.SessionType     `json:"sessionType" binding:"required"`
	ContentID   string                `json:"contentId"`
	ContentType model.ContentType     `json:"contentType"`
	Metadata    model.SessionMetadata `json:"metadata"`
}

// SessionFeedback 会话进行中或结束时用户提交的主观评价，全部按边界收敛
type SessionFeedback struct {
	ComprehensionScore  *float64 `json:"comprehensionScore"`  // 0-1
	DifficultyPerceived *int     `json:"difficultyPerceived"` // 1-5
	SatisfactionRating  *int     `json:"satisfactionRating"`  // 1-5
	Notes               string   `json:"notes"`
}

// Start 开启新会话，专注度从 1.0 开始
func (s *SessionService) Start(userID uint, in StartSessionInput) (*model.LearningSession, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[userID]; exists {
		return nil, util.ErrSessionActive
	}

	session := &model.LearningSession{
		UUIDBase:        model.UUIDBase{ID: model.GenerateUUID()},
		UserID:          userID,
		SessionType:     in.SessionType,
		ContentID:       in.ContentID,
		ContentType:     in.ContentType,
		StartTime:       s.now(),
		EngagementScore: 1.0,
		Metadata:        in.Metadata,
	}

	tracker := NewEngagementTracker(s.sched, s.engagement, s.now)
	tracker.Start()

	s.active[userID] = &activeSession{session: session, tracker: tracker}
	monitoring.SessionsStarted.Inc()

	logger.Log.Debug("learning session started",
		zap.Uint("userID", userID),
		zap.String("sessionID", session.ID),
		zap.String("type", string(session.SessionType)),
	)

	copied := *session
	return &copied, nil
}

// RecordActivity 刷新活动时间，本身不改变专注度分数
func (s *SessionService) RecordActivity(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.active[userID]
	if !ok {
		return util.ErrNoActiveSession
	}
	a.tracker.Touch()
	return nil
}

// Pause 暂停会话，专注度 tick 停止
func (s *SessionService) Pause(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.active[userID]
	if !ok {
		return util.ErrNoActiveSession
	}
	if a.paused {
		return nil
	}
	a.tracker.Pause()
	a.paused = true
	return nil
}

// Resume 恢复被暂停的会话
func (s *SessionService) Resume(userID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.active[userID]
	if !ok {
		return util.ErrNoActiveSession
	}
	if !a.paused {
		return util.ErrSessionNotPaused
	}
	a.tracker.Resume()
	a.paused = false
	return nil
}

// SetFeedback 更新会话的主观评价，仅活跃会话可更新
func (s *SessionService) SetFeedback(userID uint, fb SessionFeedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.active[userID]
	if !ok {
		return util.ErrNoActiveSession
	}
	applyFeedback(a.session, fb)
	return nil
}

// Active 返回当前活跃会话的副本
func (s *SessionService) Active(userID uint) (*model.LearningSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.active[userID]
	if !ok {
		return nil, false
	}
	copied := *a.session
	copied.EngagementScore = a.tracker.Score()
	return &copied, true
}

// End 结束会话并落库。
// 落库失败时该会话从内存丢弃并向调用方返回错误，不做静默重试。
// 成功后推进连续学习天数并累加总学习时长（画像写入带有限重试）。
func (s *SessionService) End(ctx context.Context, userID uint, fb SessionFeedback) (*model.LearningSession, error) {
	s.mu.Lock()
	a, ok := s.active[userID]
	if !ok {
		s.mu.Unlock()
		return nil, util.ErrNoActiveSession
	}
	delete(s.active, userID)

	a.tracker.Stop()

	session := a.session
	endTime := s.now()
	session.EndTime = &endTime
	session.DurationMinutes = int(math.Round(endTime.Sub(session.StartTime).Minutes()))
	session.EngagementScore = a.tracker.Score()
	applyFeedback(session, fb)
	s.mu.Unlock()

	if err := s.sessions.Insert(ctx, session); err != nil {
		monitoring.SessionsDiscarded.Inc()
		logger.Log.Error("failed to persist learning session, session discarded",
			zap.Uint("userID", userID),
			zap.String("sessionID", session.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("persist learning session: %w", err)
	}
	monitoring.SessionsCompleted.Inc()

	if err := s.updateProfile(ctx, userID, session.DurationMinutes, endTime); err != nil {
		// 会话本身已落库，画像更新失败只记录不回滚
		logger.Log.Error("failed to update learning profile",
			zap.Uint("userID", userID),
			zap.Error(err),
		)
	}

	copied := *session
	return &copied, nil
}

// SessionMetricsSummary 近 30 天会话汇总
type SessionMetricsSummary struct {
	SessionCount          int     `json:"sessionCount"`
	TotalStudyTimeMinutes int     `json:"totalStudyTimeMinutes"`
	AverageEngagement     float64 `json:"averageEngagement"`
	CurrentStreakDays     int     `json:"currentStreakDays"`
}

// SessionMetrics 统计最近 30 天已结束的会话
func (s *SessionService) SessionMetrics(ctx context.Context, userID uint) (*SessionMetricsSummary, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}

	since := s.now().AddDate(0, 0, -30)
	sessions, err := s.sessions.FindByUserSince(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	summary := &SessionMetricsSummary{SessionCount: len(sessions)}
	var engagementSum float64
	for _, sess := range sessions {
		summary.TotalStudyTimeMinutes += sess.DurationMinutes
		engagementSum += sess.EngagementScore
	}
	if len(sessions) > 0 {
		summary.AverageEngagement = math.Round(engagementSum/float64(len(sessions))*100) / 100
	}

	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	summary.CurrentStreakDays = profile.CurrentStreakDays

	return summary, nil
}

// Shutdown 停掉所有活跃会话的计时器，进程退出前调用
func (s *SessionService) Shutdown() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, a := range s.active {
		a.tracker.Stop()
		delete(s.active, userID)
	}
}

func (s *SessionService) updateProfile(ctx context.Context, userID uint, durationMinutes int, completedAt time.Time) error {
	profile, err := s.profiles.Get(ctx, userID)
	if err != nil {
		return err
	}

	updated := AdvanceStreak(*profile, completedAt, s.loc)
	updated.TotalStudyTimeMinutes += durationMinutes

	return util.Retry(ctx, 2, 200*time.Millisecond, func() error {
		if err := s.profiles.Upsert(ctx, &updated); err != nil {
			monitoring.StoreRetries.WithLabelValues("upsert_profile").Inc()
			return util.Transient(err)
		}
		return nil
	})
}

func applyFeedback(session *model.LearningSession, fb SessionFeedback) {
	if fb.ComprehensionScore != nil {
		v := ClampUnit(*fb.ComprehensionScore)
		session.ComprehensionScore = &v
	}
	if fb.DifficultyPerceived != nil {
		v := ClampRange(*fb.DifficultyPerceived, 1, 5)
		session.DifficultyPerceived = &v
	}
	if fb.SatisfactionRating != nil {
		v := ClampRange(*fb.SatisfactionRating, 1, 5)
		session.SatisfactionRating = &v
	}
	if fb.Notes != "" {
		session.Notes = fb.Notes
	}
}
