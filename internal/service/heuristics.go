package service

import (
	"flightprep_backend/internal/model"
	"math"
)

// 弱点分析用到的阈值全部来自 AnalyticsConfig，这里只放无 I/O 的纯函数。

// ClampUnit 将数值收敛到 [0,1]
func ClampUnit(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClampRange 将整数收敛到 [lo,hi]
func ClampRange(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PriorityFromAccuracy 正确率线性映射到优先级 1-10，正确率越低优先级越高
func PriorityFromAccuracy(accuracy float64) int {
	acc := ClampUnit(accuracy)
	p := int(math.Round((1-acc)*9)) + 1
	return ClampRange(p, 1, 10)
}

// AccuracyOf 正确数占比，空切片返回 0
func AccuracyOf(history []bool) float64 {
	if len(history) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range history {
		if ok {
			correct++
		}
	}
	return ClampUnit(float64(correct) / float64(len(history)))
}

// ClassifyTrend 比较近期窗口与早期窗口的正确率变化。
// 样本不足 minSample 时一律视为 stable；差值超过 ±band（百分点）才判定变化。
func ClassifyTrend(history []bool, window int, band float64, minSample int) model.Trend {
	if len(history) < minSample {
		return model.TrendStable
	}

	n := window
	if n > len(history) {
		n = len(history)
	}

	early := AccuracyOf(history[:n])
	recent := AccuracyOf(history[len(history)-n:])
	diff := (recent - early) * 100

	switch {
	case diff > band:
		return model.TrendImproving
	case diff < -band:
		return model.TrendDeclining
	default:
		return model.TrendStable
	}
}
