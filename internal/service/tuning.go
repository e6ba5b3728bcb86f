package service

import (
	"flightprep_backend/internal/config"
	"sync/atomic"
)

// Tuning 在各分析服务间共享的阈值参数，配置热更新时整体替换
type Tuning struct {
	v atomic.Value
}

func NewTuning(cfg config.AnalyticsConfig) *Tuning {
	t := &Tuning{}
	t.v.Store(cfg)
	return t
}

func (t *Tuning) Load() config.AnalyticsConfig {
	return t.v.Load().(config.AnalyticsConfig)
}

func (t *Tuning) Store(cfg config.AnalyticsConfig) {
	t.v.Store(cfg)
}
