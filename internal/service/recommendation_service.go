package service

import (
	"context"
	"flightprep_backend/internal/model"
	"flightprep_backend/internal/util"
	"flightprep_backend/pkg/logger"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"
)

// RecommendationService 根据弱点画像生成学习内容推荐
type RecommendationService struct {
	areas    WeakAreaStore
	results  TestResultStore
	contents ContentStore
	tuning   *Tuning
	now      func() time.Time
}

func NewRecommendationService(areas WeakAreaStore, results TestResultStore, contents ContentStore, tuning *Tuning) *RecommendationService {
	return &RecommendationService{
		areas:    areas,
		results:  results,
		contents: contents,
		tuning:   tuning,
		now:      time.Now,
	}
}

type Recommendation struct {
	ContentID            string  `json:"contentId"`
	Title                string  `json:"title"`
	SubjectCategory      string  `json:"subjectCategory"`
	Reason               string  `json:"reason"`
	PriorityScore        float64 `json:"priorityScore"`
	EstimatedImpact      float64 `json:"estimatedImpact"` // 预期提升后正确率, 0-100
	EstimatedTimeMinutes int     `json:"estimatedTimeMinutes"`
}

// Recommendations 为未达标（正确率低于掌握线）的科目生成推荐。
// 没有弱点记录或全部科目达标时返回空列表，这是合法结果而非错误。
func (s *RecommendationService) Recommendations(ctx context.Context, userID uint) ([]Recommendation, error) {
	if userID == 0 {
		return nil, util.ErrNotAuthenticated
	}

	cfg := s.tuning.Load()

	areas, err := s.areas.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	overall, err := s.overallAccuracy(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := make([]Recommendation, 0)
	for _, area := range areas {
		if area.AccuracyRate*100 >= cfg.MasteryThreshold {
			continue
		}

		contents, err := s.contentsForArea(ctx, area)
		if err != nil {
			logger.Log.Warn("failed to resolve contents for weak area",
				zap.String("subject", area.SubjectCategory), zap.Error(err))
			continue
		}

		// 整体正确率越低优先级越高，达标用户退回弱点记录自身的优先级
		priority := float64(area.PriorityLevel)
		if overall < cfg.MasteryThreshold {
			priority = math.Max(8.0, (100-overall)/10)
		}
		impact := math.Min(90, overall+30)
		for _, c := range contents {
			candidates = append(candidates, Recommendation{
				ContentID:            c.ID,
				Title:                c.Title,
				SubjectCategory:      area.SubjectCategory,
				Reason:               reasonFor(area),
				PriorityScore:        math.Round(priority*100) / 100,
				EstimatedImpact:      math.Round(impact*100) / 100,
				EstimatedTimeMinutes: c.EstimatedTimeMinutes,
			})
		}
	}

	return RankCandidates(candidates, cfg.MaxRecommendations), nil
}

// overallAccuracy 最近 90 天全科目正确率，0-100
func (s *RecommendationService) overallAccuracy(ctx context.Context, userID uint) (float64, error) {
	since := s.now().AddDate(0, 0, -90)
	results, err := s.results.FindByUserSince(ctx, userID, since)
	if err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	correct := 0
	for _, r := range results {
		if r.IsCorrect {
			correct++
		}
	}
	return float64(correct) / float64(len(results)) * 100, nil
}

// contentsForArea 优先用弱点记录里预存的内容 ID，没有再按科目兜底查三条
func (s *RecommendationService) contentsForArea(ctx context.Context, area model.WeakArea) ([]model.LearningContent, error) {
	if len(area.RecommendedContentIDs) > 0 {
		contents, err := s.contents.FindByIDs(ctx, area.RecommendedContentIDs)
		if err == nil && len(contents) > 0 {
			return contents, nil
		}
	}
	return s.contents.FindBySubject(ctx, area.SubjectCategory, 3)
}

func reasonFor(area model.WeakArea) string {
	accuracy := int(math.Round(area.AccuracyRate * 100))
	switch area.ImprovementTrend {
	case model.TrendDeclining:
		return fmt.Sprintf("该科目近期正确率下滑，当前 %d%%，建议重点复习", accuracy)
	case model.TrendImproving:
		return fmt.Sprintf("该科目正在进步，当前 %d%%，继续巩固", accuracy)
	default:
		return fmt.Sprintf("该科目正确率 %d%%，低于掌握线", accuracy)
	}
}

// RankCandidates 去重后按优先级降序、预期收益降序、耗时升序排序并截断
func RankCandidates(candidates []Recommendation, limit int) []Recommendation {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].PriorityScore != candidates[j].PriorityScore {
			return candidates[i].PriorityScore > candidates[j].PriorityScore
		}
		if candidates[i].EstimatedImpact != candidates[j].EstimatedImpact {
			return candidates[i].EstimatedImpact > candidates[j].EstimatedImpact
		}
		return candidates[i].EstimatedTimeMinutes < candidates[j].EstimatedTimeMinutes
	})

	seen := make(map[string]struct{}, len(candidates))
	ranked := make([]Recommendation, 0, limit)
	for _, c := range candidates {
		if _, dup := seen[c.ContentID]; dup {
			continue
		}
		seen[c.ContentID] = struct{}{}
		ranked = append(ranked, c)
		if limit > 0 && len(ranked) >= limit {
			break
		}
	}
	return ranked
}
