package repository

import (
	"context"
	"flightprep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type WeakAreaRepository struct {
	DB *gorm.DB
}

func NewWeakAreaRepository(db *gorm.DB) *WeakAreaRepository {
	return &WeakAreaRepository{DB: db}
}

// Upsert 按 (user_id, subject_category, sub_category) 幂等写入
func (r *WeakAreaRepository) Upsert(ctx context.Context, area *model.WeakArea) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "user_id"},
			{Name: "subject_category"},
			{Name: "sub_category"},
		},
		DoUpdates: clause.AssignmentColumns([]string{
			"accuracy_rate",
			"attempt_count",
			"improvement_trend",
			"priority_level",
			"recommended_content_ids",
			"last_attempt_at",
			"updated_at",
		}),
	}).Create(area).Error
}

// FindByUser 按优先级降序读取用户全部弱点记录
func (r *WeakAreaRepository) FindByUser(ctx context.Context, userID uint) ([]model.WeakArea, error) {
	var areas []model.WeakArea
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("priority_level DESC, accuracy_rate ASC").
		Find(&areas).Error
	if err != nil {
		return nil, err
	}
	return areas, nil
}
