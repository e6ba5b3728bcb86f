package service

import (
	"context"
	"flightprep_backend/internal/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRecommendationService() (*RecommendationService, *memWeakAreaStore, *memResultStore, *memContentStore) {
	areas := newMemWeakAreaStore()
	results := &memResultStore{}
	contents := &memContentStore{contents: []model.LearningContent{
		{UUIDBase: model.UUIDBase{ID: "met-1"}, Title: "航空气象基础", SubjectCategory: "Meteorology", IsPublished: true, EstimatedTimeMinutes: 30},
		{UUIDBase: model.UUIDBase{ID: "met-2"}, Title: "锋面与气团", SubjectCategory: "Meteorology", IsPublished: true, EstimatedTimeMinutes: 45},
		{UUIDBase: model.UUIDBase{ID: "nav-1"}, Title: "推测航法", SubjectCategory: "Navigation", IsPublished: true, EstimatedTimeMinutes: 40},
	}}
	svc := NewRecommendationService(areas, results, contents, NewTuning(testAnalyticsConfig()))
	svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, areas, results, contents
}

func seedResults(t *testing.T, results *memResultStore, userID uint, subject string, correct, wrong int) {
	t.Helper()
	batch := make([]model.TestResult, 0, correct+wrong)
	for i := 0; i < correct+wrong; i++ {
		r := model.TestResult{UserID: userID, QuestionID: "q", SubjectCategory: subject, SubCategory: "general", IsCorrect: i < correct}
		r.CreatedAt = time.Date(2024, 2, 20, 0, i, 0, 0, time.UTC)
		batch = append(batch, r)
	}
	require.NoError(t, results.InsertBatch(context.Background(), batch))
}

func TestRecommendationsOnlyForWeakSubjects(t *testing.T) {
	svc, areas, results, _ := newTestRecommendationService()

	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Meteorology", SubCategory: "general",
		AccuracyRate: 0.4, PriorityLevel: 6,
		RecommendedContentIDs: []string{"met-1", "met-2"},
	}))
	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Navigation", SubCategory: "general",
		AccuracyRate: 0.85, PriorityLevel: 2,
	}))
	seedResults(t, results, 1, "Meteorology", 4, 6)

	recs, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	for _, r := range recs {
		assert.Equal(t, "Meteorology", r.SubjectCategory, "mastered subjects must never be recommended")
	}
}

func TestRecommendationsPriorityAndImpact(t *testing.T) {
	svc, areas, results, _ := newTestRecommendationService()

	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Meteorology", SubCategory: "general",
		AccuracyRate:          0.4,
		RecommendedContentIDs: []string{"met-1"},
	}))
	// 整体正确率 40%
	seedResults(t, results, 1, "Meteorology", 4, 6)

	recs, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)

	// (100-40)/10 = 6 但不低于 8
	assert.Equal(t, 8.0, recs[0].PriorityScore)
	// min(90, 40+30)
	assert.Equal(t, 70.0, recs[0].EstimatedImpact)
	assert.Equal(t, "met-1", recs[0].ContentID)
	assert.NotEmpty(t, recs[0].Reason)
}

func TestRecommendationsImpactCapped(t *testing.T) {
	svc, areas, results, _ := newTestRecommendationService()

	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Meteorology", SubCategory: "general",
		AccuracyRate:          0.65,
		RecommendedContentIDs: []string{"met-1"},
	}))
	// 整体 69%：priority = max(8, 3.1) = 8，impact = min(90, 99) = 90
	seedResults(t, results, 1, "Meteorology", 69, 31)

	recs, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, 8.0, recs[0].PriorityScore)
	assert.Equal(t, 90.0, recs[0].EstimatedImpact)
}

func TestRecommendationsFallBackToSubjectLookup(t *testing.T) {
	svc, areas, _, _ := newTestRecommendationService()

	// 弱点记录没存内容 ID，按科目兜底
	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Meteorology", SubCategory: "general",
		AccuracyRate: 0.5, PriorityLevel: 6,
	}))

	recs, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	ids := []string{recs[0].ContentID, recs[1].ContentID}
	assert.ElementsMatch(t, []string{"met-1", "met-2"}, ids)
}

func TestRecommendationsRespectLimit(t *testing.T) {
	svc, areas, results, contents := newTestRecommendationService()

	for i := 0; i < 8; i++ {
		contents.contents = append(contents.contents, model.LearningContent{
			UUIDBase: model.UUIDBase{ID: "law-" + string(rune('a'+i))}, Title: "航空法规",
			SubjectCategory: "Air Law", IsPublished: true, EstimatedTimeMinutes: 20 + i,
		})
	}
	ids := make([]string, 0, 8)
	for i := 0; i < 8; i++ {
		ids = append(ids, "law-"+string(rune('a'+i)))
	}
	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Air Law", SubCategory: "general",
		AccuracyRate: 0.3, RecommendedContentIDs: ids,
	}))
	seedResults(t, results, 1, "Air Law", 3, 7)

	recs, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, recs, 5)
	// 同优先级同收益时耗时短的在前
	assert.Equal(t, 20, recs[0].EstimatedTimeMinutes)
}

func TestRecommendationsEmptyIsValid(t *testing.T) {
	svc, areas, _, _ := newTestRecommendationService()

	recs, err := svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, recs)

	// 全部达标同样返回空
	require.NoError(t, areas.Upsert(context.Background(), &model.WeakArea{
		UserID: 1, SubjectCategory: "Navigation", SubCategory: "general", AccuracyRate: 0.95,
	}))
	recs, err = svc.Recommendations(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
