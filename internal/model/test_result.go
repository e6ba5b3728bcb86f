package model

// TestResult 存储一次测验中的单题作答记录，写入后不可变
type TestResult struct {
	BaseModel
	UserID              uint     `gorm:"index:idx_user_subject;type:bigint unsigned;not null" json:"userId"`
	TestSessionID       string   `gorm:"type:varchar(36);index" json:"testSessionId"`
	LearningContentID   string   `gorm:"type:varchar(36)" json:"learningContentId"`
	QuestionID          string   `gorm:"type:varchar(64);not null" json:"questionId"`
	UserAnswer          int      `json:"userAnswer"`
	CorrectAnswer       int      `json:"correctAnswer"`
	IsCorrect           bool     `gorm:"index" json:"isCorrect"`
	ResponseTimeSeconds *float64 `json:"responseTimeSeconds"`
	SubjectCategory     string   `gorm:"type:varchar(64);index:idx_user_subject" json:"subjectCategory"`
	SubCategory         string   `gorm:"type:varchar(64);default:general" json:"subCategory"`
	DifficultyLevel     int      `gorm:"default:1" json:"difficultyLevel"`
}

func (TestResult) TableName() string {
	return "user_test_results"
}
