package service

import (
	"context"
	"errors"
	"flightprep_backend/internal/model"
	"flightprep_backend/internal/util"
	"flightprep_backend/pkg/scheduler"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSessionService(clock *fakeClock) (*SessionService, *memSessionStore, *memProfileStore, *scheduler.Manual) {
	sessions := &memSessionStore{}
	profiles := newMemProfileStore()
	sched := scheduler.NewManual()
	svc := NewSessionService(sessions, profiles, sched, testEngagementSettings())
	svc.loc = time.UTC
	if clock != nil {
		svc.now = clock.Now
	}
	return svc, sessions, profiles, sched
}

func TestStartRejectsSecondSession(t *testing.T) {
	svc, _, _, _ := newTestSessionService(nil)

	_, err := svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	require.NoError(t, err)

	_, err = svc.Start(1, StartSessionInput{SessionType: model.SessionQuiz})
	assert.ErrorIs(t, err, util.ErrSessionActive)

	// 其他用户不受影响
	_, err = svc.Start(2, StartSessionInput{SessionType: model.SessionReading})
	assert.NoError(t, err)
}

func TestStartRequiresUser(t *testing.T) {
	svc, _, _, _ := newTestSessionService(nil)
	_, err := svc.Start(0, StartSessionInput{SessionType: model.SessionReading})
	assert.ErrorIs(t, err, util.ErrNotAuthenticated)
}

func TestSessionLifecycle(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	svc, sessions, profiles, sched := newTestSessionService(clock)

	started, err := svc.Start(1, StartSessionInput{
		SessionType: model.SessionReading,
		ContentID:   "content-1",
		ContentType: model.ContentArticle,
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, started.EngagementScore)
	assert.NotEmpty(t, started.ID)

	// 空闲一分钟掉分
	clock.Advance(time.Minute)
	sched.Tick()

	// 活动后恢复
	require.NoError(t, svc.RecordActivity(1))
	clock.Advance(10 * time.Second)
	sched.Tick()

	clock.Advance(29 * time.Minute)
	ended, err := svc.End(context.Background(), 1, SessionFeedback{})
	require.NoError(t, err)

	assert.NotNil(t, ended.EndTime)
	assert.Equal(t, 30, ended.DurationMinutes)
	assert.Equal(t, 0.95, ended.EngagementScore)

	require.Len(t, sessions.sessions, 1)

	profile, _ := profiles.Get(context.Background(), 1)
	assert.Equal(t, 30, profile.TotalStudyTimeMinutes)
	assert.Equal(t, 1, profile.CurrentStreakDays)

	// 结束后不再有活跃会话
	_, active := svc.Active(1)
	assert.False(t, active)
	_, err = svc.End(context.Background(), 1, SessionFeedback{})
	assert.ErrorIs(t, err, util.ErrNoActiveSession)
}

func TestPauseResumeStateMachine(t *testing.T) {
	svc, _, _, _ := newTestSessionService(nil)

	assert.ErrorIs(t, svc.Pause(1), util.ErrNoActiveSession)

	_, err := svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	require.NoError(t, err)

	// 未暂停时 resume 报错
	assert.ErrorIs(t, svc.Resume(1), util.ErrSessionNotPaused)

	require.NoError(t, svc.Pause(1))
	// 重复 pause 幂等
	assert.NoError(t, svc.Pause(1))
	require.NoError(t, svc.Resume(1))
}

func TestEndPersistenceFailureDiscardsSession(t *testing.T) {
	svc, sessions, _, _ := newTestSessionService(nil)
	sessions.insertErr = errors.New("connection refused")

	_, err := svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	require.NoError(t, err)

	_, err = svc.End(context.Background(), 1, SessionFeedback{})
	require.Error(t, err)

	// 会话已被丢弃，用户可以开新会话
	_, active := svc.Active(1)
	assert.False(t, active)
	_, err = svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	assert.NoError(t, err)
}

func TestEndRetriesProfileUpsert(t *testing.T) {
	svc, _, profiles, _ := newTestSessionService(nil)
	profiles.upsertErr = errors.New("deadlock")
	profiles.failures = 1 // 第一次失败，重试成功

	_, err := svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	require.NoError(t, err)

	_, err = svc.End(context.Background(), 1, SessionFeedback{})
	require.NoError(t, err)

	profile, _ := profiles.Get(context.Background(), 1)
	assert.Equal(t, 1, profile.CurrentStreakDays, "retry should land the profile update")
}

func TestSetFeedbackClampsValues(t *testing.T) {
	svc, sessions, _, _ := newTestSessionService(nil)

	_, err := svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	require.NoError(t, err)

	comprehension := 1.7
	difficulty := 9
	satisfaction := 0
	require.NoError(t, svc.SetFeedback(1, SessionFeedback{
		ComprehensionScore:  &comprehension,
		DifficultyPerceived: &difficulty,
		SatisfactionRating:  &satisfaction,
		Notes:               "气象部分需要再过一遍",
	}))

	ended, err := svc.End(context.Background(), 1, SessionFeedback{})
	require.NoError(t, err)
	require.NotNil(t, ended.ComprehensionScore)
	assert.Equal(t, 1.0, *ended.ComprehensionScore)
	assert.Equal(t, 5, *ended.DifficultyPerceived)
	assert.Equal(t, 1, *ended.SatisfactionRating)
	assert.Equal(t, "气象部分需要再过一遍", ended.Notes)

	require.Len(t, sessions.sessions, 1)
}

func TestSessionMetricsRollup(t *testing.T) {
	clock := newFakeClock(time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC))
	svc, sessions, profiles, _ := newTestSessionService(clock)

	now := clock.Now()
	sessions.sessions = []model.LearningSession{
		{UserID: 1, StartTime: now.AddDate(0, 0, -1), DurationMinutes: 30, EngagementScore: 0.8},
		{UserID: 1, StartTime: now.AddDate(0, 0, -5), DurationMinutes: 20, EngagementScore: 0.6},
		{UserID: 1, StartTime: now.AddDate(0, 0, -40), DurationMinutes: 99, EngagementScore: 0.1}, // 窗口外
		{UserID: 2, StartTime: now, DurationMinutes: 15, EngagementScore: 1.0},                    // 其他用户
	}
	profiles.profiles[1] = model.UserLearningProfile{UserID: 1, CurrentStreakDays: 3}

	summary, err := svc.SessionMetrics(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.SessionCount)
	assert.Equal(t, 50, summary.TotalStudyTimeMinutes)
	assert.Equal(t, 0.7, summary.AverageEngagement)
	assert.Equal(t, 3, summary.CurrentStreakDays)
}

func TestShutdownStopsAllTrackers(t *testing.T) {
	svc, _, _, sched := newTestSessionService(nil)

	_, err := svc.Start(1, StartSessionInput{SessionType: model.SessionReading})
	require.NoError(t, err)
	_, err = svc.Start(2, StartSessionInput{SessionType: model.SessionQuiz})
	require.NoError(t, err)
	require.Equal(t, 2, sched.TaskCount())

	svc.Shutdown()
	assert.Equal(t, 0, sched.TaskCount())
	_, active := svc.Active(1)
	assert.False(t, active)
}
