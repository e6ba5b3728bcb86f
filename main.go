// @title FlightPrep 学习分析 API
// @version 1.0
// @description 飞行理论备考平台的学习行为分析服务。

// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"flightprep_backend/internal/app"
	"flightprep_backend/internal/config"
	"flightprep_backend/pkg/logger"
	"log"
)

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	application := app.NewApp(cfg)
	defer logger.Log.Sync()

	application.Run()
}
