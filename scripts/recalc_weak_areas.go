// 手动触发弱点画像全量重算脚本
//
// 弱点记录平时随测验提交增量更新。批量导入历史答题数据或调整分析阈值后，
// 用此脚本对库内所有 (用户, 科目, 子类) 分组做一次全量回填。
//
// 用法: go run scripts/recalc_weak_areas.go

package main

import (
	"context"
	"flightprep_backend/internal/config"
	"flightprep_backend/internal/repository"
	"flightprep_backend/internal/service"
	"flightprep_backend/pkg/database"
	"flightprep_backend/pkg/logger"
	"log"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	logger.InitLogger(cfg)
	defer logger.Log.Sync()

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	results := repository.NewTestResultRepository(db)
	areas := repository.NewWeakAreaRepository(db)
	contents := repository.NewContentRepository(db)
	svc := service.NewWeakAreaService(results, areas, contents, service.NewTuning(cfg.Analytics))

	// 扫描答题表里出现过的全部分组
	var groups []struct {
		UserID          uint
		SubjectCategory string
		SubCategory     string
	}
	if err := db.Table("user_test_results").
		Select("DISTINCT user_id, subject_category, sub_category").
		Scan(&groups).Error; err != nil {
		log.Fatalf("扫描答题分组失败: %v", err)
	}

	ctx := context.Background()
	recalced, failed := 0, 0
	for _, g := range groups {
		if _, err := svc.Recalculate(ctx, g.UserID, g.SubjectCategory, g.SubCategory); err != nil {
			failed++
			logger.Log.Error("weak area recalc failed",
				zap.Uint("userID", g.UserID),
				zap.String("subject", g.SubjectCategory),
				zap.Error(err),
			)
			continue
		}
		recalced++
	}

	logger.Log.Info("weak area backfill finished",
		zap.Int("recalculated", recalced),
		zap.Int("failed", failed),
	)
}
