package model

// LearningContent 学习内容目录（CPL 科目的文章、练习、测验），推荐引擎只读
type LearningContent struct {
	UUIDBase
	Title                string      `gorm:"type:varchar(255);not null" json:"title"`
	SubjectCategory      string      `gorm:"type:varchar(64);index" json:"subjectCategory"`
	SubCategory          string      `gorm:"type:varchar(64);default:general" json:"subCategory"`
	ContentType          ContentType `gorm:"type:varchar(16)" json:"contentType"`
	Difficulty           int         `gorm:"default:1" json:"difficulty"` // 1-5
	EstimatedTimeMinutes int         `gorm:"default:30" json:"estimatedTimeMinutes"`
	OrderIndex           int         `gorm:"default:0" json:"orderIndex"`
	IsPublished          bool        `gorm:"default:true;index" json:"isPublished"`
}

func (LearningContent) TableName() string {
	return "learning_contents"
}
