package model

import (
	"time"
)

type SessionType string

const (
	SessionReading SessionType = "reading"
	SessionQuiz    SessionType = "quiz"
	SessionTest    SessionType = "test"
	SessionReview  SessionType = "review"
)

type ContentType string

const (
	ContentArticle  ContentType = "article"
	ContentQuiz     ContentType = "quiz"
	ContentTest     ContentType = "test"
	ContentExercise ContentType = "exercise"
)

// SessionMetadata 会话环境信息（userAgent、分辨率、时区等自由字段）
type SessionMetadata map[string]string

// LearningSession 记录一次学习会话，会话结束落库后不再修改
type LearningSession struct {
	UUIDBase
	UserID              uint            `gorm:"index;type:bigint unsigned;not null" json:"userId"`
	SessionType         SessionType     `gorm:"type:varchar(16);not null" json:"sessionType"`
	ContentID           string          `gorm:"type:varchar(36);index" json:"contentId"`
	ContentType         ContentType     `gorm:"type:varchar(16)" json:"contentType"`
	StartTime           time.Time       `gorm:"not null;index" json:"startTime"`
	EndTime             *time.Time      `json:"endTime"`
	DurationMinutes     int             `gorm:"default:0" json:"durationMinutes"`
	EngagementScore     float64         `gorm:"default:1" json:"engagementScore"`   // 0-1
	ComprehensionScore  *float64        `json:"comprehensionScore"`                 // 0-1
	DifficultyPerceived *int            `json:"difficultyPerceived"`                // 1-5
	SatisfactionRating  *int            `json:"satisfactionRating"`                 // 1-5
	Notes               string          `gorm:"type:text" json:"notes"`
	Metadata            SessionMetadata `gorm:"serializer:json" json:"metadata"`
}

func (LearningSession) TableName() string {
	return "learning_sessions"
}
