package database

import (
	"flightprep_backend/internal/config"
	"flightprep_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.LearningSession{},
		&model.TestResult{},
		&model.WeakArea{},
		&model.UserLearningProfile{},
		&model.LearningContent{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 内容目录为空时写入基础的 CPL 科目条目，方便本地联调
	var count int64
	db.Model(&model.LearningContent{}).Count(&count)
	if count == 0 {
		seed := []model.LearningContent{
			{Title: "大气结构与气团", SubjectCategory: "Meteorology", ContentType: model.ContentArticle, Difficulty: 2, EstimatedTimeMinutes: 30, OrderIndex: 1, IsPublished: true},
			{Title: "锋面与恶劣天气判读", SubjectCategory: "Meteorology", ContentType: model.ContentArticle, Difficulty: 3, EstimatedTimeMinutes: 45, OrderIndex: 2, IsPublished: true},
			{Title: "METAR/TAF 报文解读练习", SubjectCategory: "Meteorology", ContentType: model.ContentExercise, Difficulty: 3, EstimatedTimeMinutes: 20, OrderIndex: 3, IsPublished: true},
			{Title: "航空法规基础", SubjectCategory: "Air Law", ContentType: model.ContentArticle, Difficulty: 1, EstimatedTimeMinutes: 40, OrderIndex: 1, IsPublished: true},
			{Title: "推测航法与地标航法", SubjectCategory: "Navigation", ContentType: model.ContentArticle, Difficulty: 3, EstimatedTimeMinutes: 50, OrderIndex: 1, IsPublished: true},
			{Title: "航法计算练习题", SubjectCategory: "Navigation", ContentType: model.ContentQuiz, Difficulty: 4, EstimatedTimeMinutes: 25, OrderIndex: 2, IsPublished: true},
		}
		for _, c := range seed {
			db.Create(&c)
		}
	}

	return db, nil
}
