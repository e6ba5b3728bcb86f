package service

import (
	"context"
	"encoding/json"
	"flightprep_backend/internal/config"
	"flightprep_backend/internal/model"
	"flightprep_backend/internal/util"
	"flightprep_backend/pkg/gather"
	"flightprep_backend/pkg/logger"
	"flightprep_backend/pkg/monitoring"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// DashboardWindow 仪表盘统计窗口
type DashboardWindow string

const (
	WindowWeek    DashboardWindow = "week"
	WindowMonth   DashboardWindow = "month"
	WindowQuarter DashboardWindow = "quarter"
)

func (w DashboardWindow) days() int {
	switch w {
	case WindowMonth:
		return 30
	case WindowQuarter:
		return 90
	default:
		return 7
	}
}

// MetricsService 聚合仪表盘指标。三路取数并行，单路失败降级为空数据
type MetricsService struct {
	sessions SessionStore
	results  TestResultStore
	profiles ProfileStore
	rdb      *redis.Client
	tuning   *Tuning
	now      func() time.Time
	loc      *time.Location
}

func NewMetricsService(sessions SessionStore, results TestResultStore, profiles ProfileStore, rdb *redis.Client, tuning *Tuning) *MetricsService {
	return &MetricsService{
		sessions: sessions,
		results:  results,
		profiles: profiles,
		rdb:      rdb,
		tuning:   tuning,
		now:      time.Now,
		loc:      time.Local,
	}
}

// WeeklyBucket 一周的学习时长与测验得分，标签为该周起始日 "月/日"
type WeeklyBucket struct {
	Label        string  `json:"label"` // "M/D"
	StudyMinutes int     `json:"studyMinutes"`
	Score        float64 `json:"score"` // 该周测验正确率 0-100，无作答时为 0
}

type AreaStat struct {
	SubjectCategory string  `json:"subjectCategory"`
	SubCategory     string  `json:"subCategory"`
	Accuracy        float64 `json:"accuracy"` // 0-100
	AttemptCount    int     `json:"attemptCount"`
}

type StreakData struct {
	CurrentDays   int        `json:"currentDays"`
	LongestDays   int        `json:"longestDays"`
	LastStudiedAt *time.Time `json:"lastStudiedAt"`
}

type DashboardMetrics struct {
	Window                DashboardWindow    `json:"window"`
	TotalStudyTimeMinutes int                `json:"totalStudyTimeMinutes"`
	SessionCount          int                `json:"sessionCount"`
	AverageEngagement     float64            `json:"averageEngagement"` // 0-1
	CompletionRate        float64            `json:"completionRate"`    // 0-100
	LearningVelocity      float64            `json:"learningVelocity"`  // 正确题数/小时
	RetentionRate         float64            `json:"retentionRate"`     // 0-100
	SubjectMastery        map[string]float64 `json:"subjectMastery"`    // 科目 -> 正确率 0-100
	WeeklyActivity        []WeeklyBucket     `json:"weeklyActivity"`
	WeakAreas             []AreaStat         `json:"weakAreas"`
	StrongAreas           []AreaStat         `json:"strongAreas"`
	Streak                StreakData         `json:"streak"`
	GeneratedAt           time.Time          `json:"generatedAt"`
}

// Dashboard 返回窗口内的聚合指标，结果在 Redis 里短期缓存。
// 三路取数任一失败不影响整体返回，失败分支按空数据计算。
func (m *MetricsService) Dashboard(ctx context.Context, userID uint, window DashboardWindow) (*DashboardMetrics, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}
	switch window {
	case WindowWeek, WindowMonth, WindowQuarter:
	default:
		window = WindowWeek
	}

	cacheKey := fmt.Sprintf("dashboard:%d:%s", userID, window)
	if cached := m.fromCache(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	now := m.now()
	windowStart := now.AddDate(0, 0, -window.days())

	// 周序列固定覆盖 7 周，取数窗口按两者中较早的算
	since := windowStart
	if seriesStart := now.AddDate(0, 0, -49); seriesStart.Before(since) {
		since = seriesStart
	}

	var (
		sessions []model.LearningSession
		results  []model.TestResult
		profile  *model.UserLearningProfile
	)
	errs := gather.All(ctx,
		gather.Fetch("sessions", &sessions, nil, func(ctx context.Context) ([]model.LearningSession, error) {
			return m.sessions.FindByUserSince(ctx, userID, since)
		}),
		gather.Fetch("results", &results, nil, func(ctx context.Context) ([]model.TestResult, error) {
			return m.results.FindByUserSince(ctx, userID, since)
		}),
		gather.Fetch("profile", &profile, &model.UserLearningProfile{UserID: userID}, func(ctx context.Context) (*model.UserLearningProfile, error) {
			return m.profiles.Get(ctx, userID)
		}),
	)
	for branch, err := range errs {
		monitoring.AggregationBranchFailures.WithLabelValues(branch).Inc()
		logger.Log.Warn("dashboard branch failed, using empty data",
			zap.String("branch", branch),
			zap.Uint("userID", userID),
			zap.Error(err),
		)
	}

	metrics := ComputeDashboard(sessions, results, profile, windowStart, now, m.loc, m.tuning.Load())
	metrics.Window = window

	m.toCache(ctx, cacheKey, metrics)
	return metrics, nil
}

func (m *MetricsService) fromCache(ctx context.Context, key string) *DashboardMetrics {
	if m.rdb == nil {
		return nil
	}
	raw, err := m.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return nil
	}
	var metrics DashboardMetrics
	if err := json.Unmarshal(raw, &metrics); err != nil {
		return nil
	}
	return &metrics
}

func (m *MetricsService) toCache(ctx context.Context, key string, metrics *DashboardMetrics) {
	if m.rdb == nil {
		return
	}
	raw, err := json.Marshal(metrics)
	if err != nil {
		return
	}
	ttl := time.Duration(m.tuning.Load().DashboardCacheSeconds) * time.Second
	if err := m.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Log.Warn("failed to cache dashboard metrics", zap.Error(err))
	}
}

// ComputeDashboard 纯函数聚合，方便直接用构造数据做校验。
// 汇总类指标只统计 windowStart 之后的数据，7 周序列用全部传入数据。
func ComputeDashboard(
	sessions []model.LearningSession,
	results []model.TestResult,
	profile *model.UserLearningProfile,
	windowStart time.Time,
	now time.Time,
	loc *time.Location,
	cfg config.AnalyticsConfig,
) *DashboardMetrics {
	metrics := &DashboardMetrics{GeneratedAt: now}

	windowed := make([]model.LearningSession, 0, len(sessions))
	for _, s := range sessions {
		if !s.StartTime.Before(windowStart) {
			windowed = append(windowed, s)
		}
	}
	windowedResults := make([]model.TestResult, 0, len(results))
	for _, r := range results {
		if !r.CreatedAt.Before(windowStart) {
			windowedResults = append(windowedResults, r)
		}
	}

	var engagementSum, comprehensionSum float64
	comprehensionCount := 0
	for _, s := range windowed {
		metrics.TotalStudyTimeMinutes += s.DurationMinutes
		engagementSum += s.EngagementScore
		if s.ComprehensionScore != nil {
			comprehensionSum += *s.ComprehensionScore
			comprehensionCount++
		}
	}
	metrics.SessionCount = len(windowed)
	if len(windowed) > 0 {
		metrics.AverageEngagement = round2(engagementSum / float64(len(windowed)))
	}
	if comprehensionCount > 0 {
		metrics.CompletionRate = round2(comprehensionSum / float64(comprehensionCount) * 100)
	}

	correct := 0
	for _, r := range windowedResults {
		if r.IsCorrect {
			correct++
		}
	}
	if len(windowedResults) > 0 {
		accuracy := float64(correct) / float64(len(windowedResults)) * 100
		// 留存率目前等同于正确率，后续引入间隔重复后再拆分
		metrics.RetentionRate = round2(accuracy)
	}
	if metrics.TotalStudyTimeMinutes > 0 {
		metrics.LearningVelocity = round2(float64(correct) / float64(metrics.TotalStudyTimeMinutes) * 60)
	}

	metrics.SubjectMastery = subjectMastery(windowedResults)
	metrics.WeeklyActivity = weeklyActivity(sessions, results, now, loc)
	metrics.WeakAreas, metrics.StrongAreas = areaStats(windowedResults, cfg)

	if profile != nil {
		metrics.Streak = StreakData{
			CurrentDays:   profile.CurrentStreakDays,
			LongestDays:   profile.LongestStreakDays,
			LastStudiedAt: profile.LastStudiedAt,
		}
	}
	return metrics
}

// subjectMastery 按科目聚合的正确率百分比
func subjectMastery(results []model.TestResult) map[string]float64 {
	type tally struct {
		correct int
		total   int
	}
	counts := make(map[string]*tally)
	for _, r := range results {
		t, ok := counts[r.SubjectCategory]
		if !ok {
			t = &tally{}
			counts[r.SubjectCategory] = t
		}
		t.total++
		if r.IsCorrect {
			t.correct++
		}
	}

	mastery := make(map[string]float64, len(counts))
	for subject, t := range counts {
		mastery[subject] = round2(float64(t.correct) / float64(t.total) * 100)
	}
	return mastery
}

// weeklyActivity 最近 7 周每周的学习分钟数与测验正确率，
// 末尾桶是当前周（今天往前 7 天），标签为该周起始日 "月/日"
func weeklyActivity(sessions []model.LearningSession, results []model.TestResult, now time.Time, loc *time.Location) []WeeklyBucket {
	today := dayStart(now.In(loc))

	buckets := make([]WeeklyBucket, 7)
	for i := 0; i < 7; i++ {
		start := today.AddDate(0, 0, -((6-i)*7 + 6))
		buckets[i] = WeeklyBucket{Label: fmt.Sprintf("%d/%d", int(start.Month()), start.Day())}
	}

	// 按距今天数折算周序号，i=6 为当前周。四舍五入吸收夏令时造成的非整天差
	bucketOf := func(t time.Time) int {
		daysAgo := int(math.Round(today.Sub(dayStart(t.In(loc))).Hours() / 24))
		if daysAgo < 0 || daysAgo > 48 {
			return -1
		}
		return 6 - daysAgo/7
	}

	for _, s := range sessions {
		if i := bucketOf(s.StartTime); i >= 0 {
			buckets[i].StudyMinutes += s.DurationMinutes
		}
	}

	correct := make([]int, 7)
	total := make([]int, 7)
	for _, r := range results {
		i := bucketOf(r.CreatedAt)
		if i < 0 {
			continue
		}
		total[i]++
		if r.IsCorrect {
			correct[i]++
		}
	}
	for i := range buckets {
		if total[i] > 0 {
			buckets[i].Score = round2(float64(correct[i]) / float64(total[i]) * 100)
		}
	}
	return buckets
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// areaStats 按 (科目, 子类) 聚合正确率，样本不足的分组不参与强弱判定
func areaStats(results []model.TestResult, cfg config.AnalyticsConfig) (weak, strong []AreaStat) {
	type tally struct {
		correct int
		total   int
	}
	groups := make(map[answerGroup]*tally)
	for _, r := range results {
		g := answerGroup{subject: r.SubjectCategory, subCategory: r.SubCategory}
		t, ok := groups[g]
		if !ok {
			t = &tally{}
			groups[g] = t
		}
		t.total++
		if r.IsCorrect {
			t.correct++
		}
	}

	weak = make([]AreaStat, 0)
	strong = make([]AreaStat, 0)
	for g, t := range groups {
		if t.total < cfg.MinSampleSize {
			continue
		}
		stat := AreaStat{
			SubjectCategory: g.subject,
			SubCategory:     g.subCategory,
			Accuracy:        round2(float64(t.correct) / float64(t.total) * 100),
			AttemptCount:    t.total,
		}
		switch {
		case stat.Accuracy < cfg.MasteryThreshold:
			weak = append(weak, stat)
		case stat.Accuracy >= cfg.StrongThreshold:
			strong = append(strong, stat)
		}
	}

	sort.Slice(weak, func(i, j int) bool { return weak[i].Accuracy < weak[j].Accuracy })
	sort.Slice(strong, func(i, j int) bool { return strong[i].Accuracy > strong[j].Accuracy })
	if len(weak) > 5 {
		weak = weak[:5]
	}
	if len(strong) > 5 {
		strong = strong[:5]
	}
	return weak, strong
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// TestHistoryEntry 一次测验会话的汇总
type TestHistoryEntry struct {
	TestSessionID   string    `json:"testSessionId"`
	SubjectCategory string    `json:"subjectCategory"`
	QuestionCount   int       `json:"questionCount"`
	CorrectCount    int       `json:"correctCount"`
	Accuracy        float64   `json:"accuracy"` // 0-100
	TakenAt         time.Time `json:"takenAt"`
}

// TestHistory 按测验会话分组返回最近的作答汇总，最新在前
func (m *MetricsService) TestHistory(ctx context.Context, userID uint, limit int) ([]TestHistoryEntry, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}
	if limit <= 0 {
		limit = 20
	}

	results, err := m.results.FindRecentByUser(ctx, userID, limit*20)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0)
	grouped := make(map[string][]model.TestResult)
	for _, r := range results {
		id := r.TestSessionID
		if id == "" {
			id = r.CreatedAt.Format("2006-01-02") // 散题按天归并
		}
		if _, ok := grouped[id]; !ok {
			order = append(order, id)
		}
		grouped[id] = append(grouped[id], r)
	}

	entries := make([]TestHistoryEntry, 0, len(order))
	for _, id := range order {
		rs := grouped[id]
		entry := TestHistoryEntry{
			TestSessionID:   id,
			SubjectCategory: rs[0].SubjectCategory,
			QuestionCount:   len(rs),
			TakenAt:         rs[0].CreatedAt,
		}
		for _, r := range rs {
			if r.IsCorrect {
				entry.CorrectCount++
			}
		}
		entry.Accuracy = round2(float64(entry.CorrectCount) / float64(len(rs)) * 100)
		entries = append(entries, entry)
		if len(entries) >= limit {
			break
		}
	}
	return entries, nil
}
