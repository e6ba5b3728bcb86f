package service

import (
	"context"
	"flightprep_backend/internal/model"
	"flightprep_backend/internal/util"
	"flightprep_backend/pkg/logger"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"
)

// WeakAreaService 消费测验答题批次，按 (科目, 子类) 维度重算弱点画像
type WeakAreaService struct {
	results  TestResultStore
	areas    WeakAreaStore
	contents ContentStore
	tuning   *Tuning
	now      func() time.Time
}

func NewWeakAreaService(results TestResultStore, areas WeakAreaStore, contents ContentStore, tuning *Tuning) *WeakAreaService {
	return &WeakAreaService{
		results:  results,
		areas:    areas,
		contents: contents,
		tuning:   tuning,
		now:      time.Now,
	}
}

// SubmittedAnswer 客户端提交的单题作答
type SubmittedAnswer struct {
	TestSessionID       string   `json:"testSessionId"`
	LearningContentID   string   `json:"learningContentId"`
	QuestionID          string   `json:"questionId" binding:"required"`
	UserAnswer          int      `json:"userAnswer"`
	CorrectAnswer       int      `json:"correctAnswer"`
	IsCorrect           bool     `json:"isCorrect"`
	ResponseTimeSeconds *float64 `json:"responseTimeSeconds"`
	SubjectCategory     string   `json:"subjectCategory" binding:"required"`
	SubCategory         string   `json:"subCategory"`
	DifficultyLevel     int      `json:"difficultyLevel"`
}

type answerGroup struct {
	subject     string
	subCategory string
}

// RecordBatch 落库答题记录并重算涉及到的弱点分组。
// userID 为 0 时视为前置条件不满足，直接返回空结果不落库。
func (s *WeakAreaService) RecordBatch(ctx context.Context, userID uint, answers []SubmittedAnswer) ([]model.WeakArea, error) {
	if userID == 0 || len(answers) == 0 {
		return []model.WeakArea{}, nil
	}

	results := make([]model.TestResult, 0, len(answers))
	groups := make(map[answerGroup]struct{})
	for _, a := range answers {
		sub := a.SubCategory
		if sub == "" {
			sub = "general"
		}
		results = append(results, model.TestResult{
			UserID:              userID,
			TestSessionID:       a.TestSessionID,
			LearningContentID:   a.LearningContentID,
			QuestionID:          a.QuestionID,
			UserAnswer:          a.UserAnswer,
			CorrectAnswer:       a.CorrectAnswer,
			IsCorrect:           a.IsCorrect,
			ResponseTimeSeconds: a.ResponseTimeSeconds,
			SubjectCategory:     a.SubjectCategory,
			SubCategory:         sub,
			DifficultyLevel:     a.DifficultyLevel,
		})
		groups[answerGroup{subject: a.SubjectCategory, subCategory: sub}] = struct{}{}
	}

	if err := s.results.InsertBatch(ctx, results); err != nil {
		return nil, fmt.Errorf("insert test results: %w", err)
	}

	updated := make([]model.WeakArea, 0, len(groups))
	for g := range groups {
		area, err := s.recalcGroup(ctx, userID, g)
		if err != nil {
			// 单组重算失败不影响其他分组，记录后继续
			logger.Log.Error("failed to recalc weak area",
				zap.Uint("userID", userID),
				zap.String("subject", g.subject),
				zap.String("subCategory", g.subCategory),
				zap.Error(err),
			)
			continue
		}
		updated = append(updated, *area)
	}

	return updated, nil
}

// Recalculate 对指定分组做一次全量重算，供批量导入历史数据后回填使用
func (s *WeakAreaService) Recalculate(ctx context.Context, userID uint, subject, subCategory string) (*model.WeakArea, error) {
	if subCategory == "" {
		subCategory = "general"
	}
	return s.recalcGroup(ctx, userID, answerGroup{subject: subject, subCategory: subCategory})
}

// recalcGroup 基于该分组的全部历史重算并 upsert 一条弱点记录
func (s *WeakAreaService) recalcGroup(ctx context.Context, userID uint, g answerGroup) (*model.WeakArea, error) {
	history, err := s.results.FindByUserAndGroup(ctx, userID, g.subject, g.subCategory)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, util.ErrContentNotFound
	}

	cfg := s.tuning.Load()
	outcomes := make([]bool, len(history))
	for i, r := range history {
		outcomes[i] = r.IsCorrect
	}

	accuracy := ClampUnit(AccuracyOf(outcomes))
	area := &model.WeakArea{
		UserID:           userID,
		SubjectCategory:  g.subject,
		SubCategory:      g.subCategory,
		AccuracyRate:     accuracy,
		AttemptCount:     len(history),
		ImprovementTrend: ClassifyTrend(outcomes, cfg.TrendWindow, cfg.TrendBand, cfg.MinSampleSize),
		PriorityLevel:    PriorityFromAccuracy(accuracy),
		LastAttemptAt:    s.now(),
	}

	if accuracy*100 < cfg.MasteryThreshold {
		contents, err := s.contents.FindBySubject(ctx, g.subject, 3)
		if err != nil {
			logger.Log.Warn("failed to look up recommended content for weak area",
				zap.String("subject", g.subject), zap.Error(err))
		} else {
			ids := make([]string, 0, len(contents))
			for _, c := range contents {
				ids = append(ids, c.ID)
			}
			area.RecommendedContentIDs = ids
		}
	}

	if err := s.areas.Upsert(ctx, area); err != nil {
		return nil, err
	}
	return area, nil
}

// WeakAreaView 弱点记录加复习紧迫度
type WeakAreaView struct {
	model.WeakArea
	ReviewUrgency string `json:"reviewUrgency"` // urgent / soon / none
}

// WeakAreas 按优先级降序返回用户全部弱点记录
func (s *WeakAreaService) WeakAreas(ctx context.Context, userID uint) ([]WeakAreaView, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}
	areas, err := s.areas.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	views := make([]WeakAreaView, 0, len(areas))
	for _, area := range areas {
		views = append(views, WeakAreaView{WeakArea: area, ReviewUrgency: reviewUrgency(area.AccuracyRate)})
	}
	return views, nil
}

func reviewUrgency(accuracy float64) string {
	switch {
	case accuracy*100 < 50:
		return "urgent"
	case accuracy*100 < 70:
		return "soon"
	default:
		return "none"
	}
}

// SubjectProgressReport 单科目的整体正确率与近期进步幅度
type SubjectProgressReport struct {
	SubjectCategory  string  `json:"subjectCategory"`
	AttemptCount     int     `json:"attemptCount"`
	OverallAccuracy  float64 `json:"overallAccuracy"`  // 0-100
	RecentAccuracy   float64 `json:"recentAccuracy"`   // 0-100
	ImprovementDelta float64 `json:"improvementDelta"` // 百分点
}

// SubjectProgress 对比最早 10 题与最近 10 题的正确率
func (s *WeakAreaService) SubjectProgress(ctx context.Context, userID uint, subject string) (*SubjectProgressReport, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}

	history, err := s.results.FindByUserAndSubject(ctx, userID, subject)
	if err != nil {
		return nil, err
	}

	report := &SubjectProgressReport{SubjectCategory: subject, AttemptCount: len(history)}
	if len(history) == 0 {
		return report, nil
	}

	outcomes := make([]bool, len(history))
	for i, r := range history {
		outcomes[i] = r.IsCorrect
	}

	cfg := s.tuning.Load()
	window := cfg.TrendWindow
	if window > len(outcomes) {
		window = len(outcomes)
	}
	early := AccuracyOf(outcomes[:window]) * 100
	recent := AccuracyOf(outcomes[len(outcomes)-window:]) * 100

	report.OverallAccuracy = math.Round(AccuracyOf(outcomes)*10000) / 100
	report.RecentAccuracy = math.Round(recent*100) / 100
	report.ImprovementDelta = math.Round((recent-early)*100) / 100
	return report, nil
}
