package model

import "time"

type Trend string

const (
	TrendImproving Trend = "improving"
	TrendDeclining Trend = "declining"
	TrendStable    Trend = "stable"
)

// WeakArea 按 (用户, 科目, 子类) 维度聚合的弱点记录，测验批次到达时整体重算
type WeakArea struct {
	BaseModel
	UserID                uint      `gorm:"uniqueIndex:idx_user_subject_sub;type:bigint unsigned;not null" json:"userId"`
	SubjectCategory       string    `gorm:"uniqueIndex:idx_user_subject_sub;type:varchar(64);not null" json:"subjectCategory"`
	SubCategory           string    `gorm:"uniqueIndex:idx_user_subject_sub;type:varchar(64);not null;default:general" json:"subCategory"`
	AccuracyRate          float64   `gorm:"not null" json:"accuracyRate"` // 0-1
	AttemptCount          int       `gorm:"default:0" json:"attemptCount"`
	ImprovementTrend      Trend     `gorm:"type:varchar(16);default:stable" json:"improvementTrend"`
	PriorityLevel         int       `gorm:"default:1" json:"priorityLevel"` // 1-10
	RecommendedContentIDs []string  `gorm:"serializer:json" json:"recommendedContentIds"`
	LastAttemptAt         time.Time `json:"lastAttemptAt"`
}

func (WeakArea) TableName() string {
	return "user_weak_areas"
}
