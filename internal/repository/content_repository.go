package repository

import (
	"context"
	"flightprep_backend/internal/model"

	"gorm.io/gorm"
)

type ContentRepository struct {
	DB *gorm.DB
}

func NewContentRepository(db *gorm.DB) *ContentRepository {
	return &ContentRepository{DB: db}
}

// FindBySubject 按科目读取已发布的内容条目
func (r *ContentRepository) FindBySubject(ctx context.Context, subject string, limit int) ([]model.LearningContent, error) {
	var contents []model.LearningContent
	q := r.DB.WithContext(ctx).
		Where("subject_category = ? AND is_published = ?", subject, true).
		Order("order_index ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}

func (r *ContentRepository) FindByIDs(ctx context.Context, ids []string) ([]model.LearningContent, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var contents []model.LearningContent
	err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&contents).Error
	if err != nil {
		return nil, err
	}
	return contents, nil
}
