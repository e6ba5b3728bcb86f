package service

import (
	"context"
	"flightprep_backend/internal/model"
	"time"
)

// 持久层契约。由 repository 包的 GORM 实现满足，测试中用内存实现替换。

type SessionStore interface {
	Insert(ctx context.Context, session *model.LearningSession) error
	FindByUserSince(ctx context.Context, userID uint, since time.Time) ([]model.LearningSession, error)
}

type TestResultStore interface {
	InsertBatch(ctx context.Context, results []model.TestResult) error
	FindByUserSince(ctx context.Context, userID uint, since time.Time) ([]model.TestResult, error)
	FindByUserAndGroup(ctx context.Context, userID uint, subject, subCategory string) ([]model.TestResult, error)
	FindByUserAndSubject(ctx context.Context, userID uint, subject string) ([]model.TestResult, error)
	FindRecentByUser(ctx context.Context, userID uint, limit int) ([]model.TestResult, error)
}

type WeakAreaStore interface {
	Upsert(ctx context.Context, area *model.WeakArea) error
	FindByUser(ctx context.Context, userID uint) ([]model.WeakArea, error)
}

type ProfileStore interface {
	Get(ctx context.Context, userID uint) (*model.UserLearningProfile, error)
	Upsert(ctx context.Context, profile *model.UserLearningProfile) error
}

type ContentStore interface {
	FindBySubject(ctx context.Context, subject string, limit int) ([]model.LearningContent, error)
	FindByIDs(ctx context.Context, ids []string) ([]model.LearningContent, error)
}
