package model

import "time"

// UserLearningProfile 每用户一条，会话结束时更新学习总时长与连续学习天数
type UserLearningProfile struct {
	BaseModel
	UserID                uint       `gorm:"uniqueIndex;type:bigint unsigned;not null" json:"userId"`
	TotalStudyTimeMinutes int        `gorm:"default:0" json:"totalStudyTimeMinutes"`
	CurrentStreakDays     int        `gorm:"default:0" json:"currentStreakDays"`
	LongestStreakDays     int        `gorm:"default:0" json:"longestStreakDays"`
	LastStudiedAt         *time.Time `json:"lastStudiedAt"`
}

func (UserLearningProfile) TableName() string {
	return "user_learning_profiles"
}
