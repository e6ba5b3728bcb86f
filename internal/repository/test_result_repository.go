package repository

import (
	"context"
	"flightprep_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type TestResultRepository struct {
	DB *gorm.DB
}

func NewTestResultRepository(db *gorm.DB) *TestResultRepository {
	return &TestResultRepository{DB: db}
}

// InsertBatch 批量写入一次测验的作答记录
func (r *TestResultRepository) InsertBatch(ctx context.Context, results []model.TestResult) error {
	if len(results) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).Create(&results).Error
}

// FindByUserSince 按时间窗口读取作答记录
func (r *TestResultRepository) FindByUserSince(ctx context.Context, userID uint, since time.Time) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND created_at >= ?", userID, since).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindByUserAndGroup 按 (科目, 子类) 读取全部作答历史，时间升序（趋势窗口用）
func (r *TestResultRepository) FindByUserAndGroup(ctx context.Context, userID uint, subject, subCategory string) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND subject_category = ? AND sub_category = ?", userID, subject, subCategory).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindByUserAndSubject 按科目读取全部作答历史，不区分子类（科目进度用）
func (r *TestResultRepository) FindByUserAndSubject(ctx context.Context, userID uint, subject string) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND subject_category = ?", userID, subject).
		Order("created_at ASC").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindRecentByUser 读取最近的作答记录（测验历史分组用）
func (r *TestResultRepository) FindRecentByUser(ctx context.Context, userID uint, limit int) ([]model.TestResult, error) {
	var results []model.TestResult
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
