package app

import (
	"context"
	"flightprep_backend/internal/config"
	"flightprep_backend/internal/controller"
	"flightprep_backend/internal/repository"
	"flightprep_backend/internal/service"
	"flightprep_backend/pkg/configwatcher"
	"flightprep_backend/pkg/database"
	"flightprep_backend/pkg/logger"
	"flightprep_backend/pkg/monitoring"
	"flightprep_backend/pkg/scheduler"
	"flightprep_backend/pkg/security"
	"flightprep_backend/pkg/tracing"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config   *config.Config
	Router   *gin.Engine
	DB       *gorm.DB
	Redis    *redis.Client
	services *services
	tuning   *service.Tuning
}

type repositories struct {
	session  *repository.SessionRepository
	result   *repository.TestResultRepository
	weakArea *repository.WeakAreaRepository
	profile  *repository.ProfileRepository
	content  *repository.ContentRepository
}

type services struct {
	session        *service.SessionService
	weakArea       *service.WeakAreaService
	recommendation *service.RecommendationService
	metrics        *service.MetricsService
}

type controllers struct {
	session   *controller.SessionController
	analytics *controller.AnalyticsController
	health    *controller.HealthController
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		session:  repository.NewSessionRepository(db),
		result:   repository.NewTestResultRepository(db),
		weakArea: repository.NewWeakAreaRepository(db),
		profile:  repository.NewProfileRepository(db),
		content:  repository.NewContentRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	a.tuning = service.NewTuning(cfg.Analytics)
	sched := scheduler.NewTicker()

	s := &services{}
	s.session = service.NewSessionService(repos.session, repos.profile, sched, service.EngagementSettingsFromConfig(cfg.Engagement))
	s.weakArea = service.NewWeakAreaService(repos.result, repos.weakArea, repos.content, a.tuning)
	s.recommendation = service.NewRecommendationService(repos.weakArea, repos.result, repos.content, a.tuning)
	s.metrics = service.NewMetricsService(repos.session, repos.result, repos.profile, rdb, a.tuning)
	return s
}

func (a *App) initControllers(s *services, db *gorm.DB) *controllers {
	return &controllers{
		session:   controller.NewSessionController(s.session),
		analytics: controller.NewAnalyticsController(s.weakArea, s.recommendation, s.metrics, s.session),
		health:    controller.NewHealthController(db),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())
	router.Use(security.RateLimiter(cfg.RateLimit.MaxRequests, time.Duration(cfg.RateLimit.WindowMinutes)*time.Minute))

	// 分布式追踪中间件
	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

// watchAnalyticsConfig 配置文件变更后热更新分析阈值，不重启进程
func (a *App) watchAnalyticsConfig() {
	go configwatcher.WatchConfig("configs/config.yaml", func() {
		cfg, err := config.Reload()
		if err != nil {
			logger.Log.Error("Failed to reload config", zap.Error(err))
			return
		}
		a.tuning.Store(cfg.Analytics)
		logger.Log.Info("Analytics thresholds reloaded",
			zap.Float64("masteryThreshold", cfg.Analytics.MasteryThreshold),
			zap.Int("maxRecommendations", cfg.Analytics.MaxRecommendations),
		)
	})
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Redis 只承担仪表盘缓存，连不上时降级为直查
		logger.Log.Warn("Failed to initialize redis, dashboard cache disabled", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db)

	// 监控初始化
	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("flightprep-analytics", cfg.Tracing.CollectorEndpoint, cfg.Server.Mode); err != nil {
			logger.Log.Fatal("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, cfg)
	app.watchAnalyticsConfig()

	return app
}

func (a *App) Run() {
	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器（设置5秒的超时时间）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// 停掉所有活跃会话的专注度计时器
	if a.services != nil && a.services.session != nil {
		a.services.session.Shutdown()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
