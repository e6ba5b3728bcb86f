package repository

import (
	"context"
	"errors"
	"flightprep_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository struct {
	DB *gorm.DB
}

func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{DB: db}
}

// Get 读取用户画像，不存在时返回零值画像而非错误
func (r *ProfileRepository) Get(ctx context.Context, userID uint) (*model.UserLearningProfile, error) {
	var profile model.UserLearningProfile
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &model.UserLearningProfile{UserID: userID}, nil
		}
		return nil, err
	}
	return &profile, nil
}

// Upsert 按 user_id 幂等写入画像
func (r *ProfileRepository) Upsert(ctx context.Context, profile *model.UserLearningProfile) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"total_study_time_minutes",
			"current_streak_days",
			"longest_streak_days",
			"last_studied_at",
			"updated_at",
		}),
	}).Create(profile).Error
}
