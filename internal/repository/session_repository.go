package repository

import (
	"context"
	"flightprep_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type SessionRepository struct {
	DB *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{DB: db}
}

// Insert 追加写入一条已结束的会话记录
func (r *SessionRepository) Insert(ctx context.Context, session *model.LearningSession) error {
	return r.DB.WithContext(ctx).Create(session).Error
}

// FindByUserSince 按时间窗口读取用户会话
func (r *SessionRepository) FindByUserSince(ctx context.Context, userID uint, since time.Time) ([]model.LearningSession, error) {
	var sessions []model.LearningSession
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND start_time >= ?", userID, since).
		Order("start_time ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
