package service

import (
	"flightprep_backend/internal/model"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampUnit(t *testing.T) {
	assert.Equal(t, 0.0, ClampUnit(-0.2))
	assert.Equal(t, 1.0, ClampUnit(1.3))
	assert.Equal(t, 0.42, ClampUnit(0.42))
}

func TestClampRange(t *testing.T) {
	assert.Equal(t, 1, ClampRange(0, 1, 5))
	assert.Equal(t, 5, ClampRange(9, 1, 5))
	assert.Equal(t, 3, ClampRange(3, 1, 5))
}

func TestPriorityFromAccuracy(t *testing.T) {
	assert.Equal(t, 10, PriorityFromAccuracy(0))
	assert.Equal(t, 1, PriorityFromAccuracy(1))
	assert.Equal(t, 6, PriorityFromAccuracy(0.5)) // round(0.5*9)+1 = 6
	// 越界输入先收敛
	assert.Equal(t, 10, PriorityFromAccuracy(-3))
	assert.Equal(t, 1, PriorityFromAccuracy(2))
}

func TestAccuracyOf(t *testing.T) {
	assert.Equal(t, 0.0, AccuracyOf(nil))
	assert.Equal(t, 1.0, AccuracyOf([]bool{true, true}))
	assert.InDelta(t, 0.3333, AccuracyOf([]bool{true, false, false}), 0.001)
}

func TestClassifyTrendMinSample(t *testing.T) {
	// 样本不足一律 stable
	assert.Equal(t, model.TrendStable, ClassifyTrend([]bool{true, false}, 10, 5, 3))
	assert.Equal(t, model.TrendStable, ClassifyTrend(nil, 10, 5, 3))
}

func TestClassifyTrendImproving(t *testing.T) {
	// 早期 10 题 2 对，近期 10 题 8 对
	history := make([]bool, 0, 20)
	history = append(history, true, true, false, false, false, false, false, false, false, false)
	history = append(history, true, true, true, true, true, true, true, true, false, false)
	assert.Equal(t, model.TrendImproving, ClassifyTrend(history, 10, 5, 3))
}

func TestClassifyTrendDeclining(t *testing.T) {
	history := make([]bool, 0, 20)
	history = append(history, true, true, true, true, true, true, true, true, true, false)
	history = append(history, false, false, false, true, true, false, false, false, false, false)
	assert.Equal(t, model.TrendDeclining, ClassifyTrend(history, 10, 5, 3))
}

func TestClassifyTrendWithinBandIsStable(t *testing.T) {
	// 前后各 10 题正确率相同，差值 0 落在 ±5 个百分点内
	history := make([]bool, 0, 20)
	for i := 0; i < 2; i++ {
		history = append(history, true, true, true, true, true, false, false, false, false, false)
	}
	assert.Equal(t, model.TrendStable, ClassifyTrend(history, 10, 5, 3))
}

func TestClassifyTrendShortHistoryOverlappingWindows(t *testing.T) {
	// 只有 5 题时窗口收缩到 5，前窗即后窗，必然 stable
	assert.Equal(t, model.TrendStable, ClassifyTrend([]bool{true, false, true, false, true}, 10, 5, 3))
}

func TestRankCandidates(t *testing.T) {
	candidates := []Recommendation{
		{ContentID: "a", PriorityScore: 8, EstimatedImpact: 60, EstimatedTimeMinutes: 30},
		{ContentID: "b", PriorityScore: 9, EstimatedImpact: 60, EstimatedTimeMinutes: 30},
		{ContentID: "c", PriorityScore: 9, EstimatedImpact: 70, EstimatedTimeMinutes: 30},
		{ContentID: "d", PriorityScore: 9, EstimatedImpact: 70, EstimatedTimeMinutes: 15},
		{ContentID: "d", PriorityScore: 9, EstimatedImpact: 70, EstimatedTimeMinutes: 15}, // 重复
	}

	ranked := RankCandidates(candidates, 3)
	assert.Len(t, ranked, 3)
	assert.Equal(t, "d", ranked[0].ContentID)
	assert.Equal(t, "c", ranked[1].ContentID)
	assert.Equal(t, "b", ranked[2].ContentID)
}

func TestRankCandidatesEmpty(t *testing.T) {
	assert.Empty(t, RankCandidates(nil, 5))
}
