package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	Tracing    TracingConfig    `mapstructure:"tracing"`
	CORS       CORSConfig       `mapstructure:"cors"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Engagement EngagementConfig `mapstructure:"engagement"`
	Analytics  AnalyticsConfig  `mapstructure:"analytics"`
}

type ServerConfig struct {
	Port string
	Mode string
}

type DatabaseConfig struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	Charset   string
	ParseTime bool
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string        `mapstructure:"secret"`
	ExpireTime time.Duration `mapstructure:"expire_hours"`
}

type TracingConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	CollectorEndpoint string `mapstructure:"collector_endpoint"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type RateLimitConfig struct {
	MaxRequests   int `mapstructure:"max_requests"`
	WindowMinutes int `mapstructure:"window_minutes"`
}

// EngagementConfig 专注度追踪参数（会话内的衰减/恢复步长）
type EngagementConfig struct {
	TickSeconds          int     `mapstructure:"tick_seconds"`
	IdleThresholdSeconds int     `mapstructure:"idle_threshold_seconds"`
	DecayStep            float64 `mapstructure:"decay_step"`
	RecoverStep          float64 `mapstructure:"recover_step"`
	MinScore             float64 `mapstructure:"min_score"`
}

// AnalyticsConfig 弱点分析与推荐的阈值参数，支持热更新
type AnalyticsConfig struct {
	MasteryThreshold      float64 `mapstructure:"mastery_threshold"`
	StrongThreshold       float64 `mapstructure:"strong_threshold"`
	TrendBand             float64 `mapstructure:"trend_band"`
	MinSampleSize         int     `mapstructure:"min_sample_size"`
	TrendWindow           int     `mapstructure:"trend_window"`
	MaxRecommendations    int     `mapstructure:"max_recommendations"`
	DashboardCacheSeconds int     `mapstructure:"dashboard_cache_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("FLIGHTPREP")
	viper.AutomaticEnv()

	// Database
	viper.BindEnv("database.host", "DATABASE_HOST")
	viper.BindEnv("database.port", "DATABASE_PORT")
	viper.BindEnv("database.user", "DATABASE_USER")
	viper.BindEnv("database.password", "DATABASE_PASSWORD")
	viper.BindEnv("database.dbname", "DATABASE_NAME")

	// Redis
	viper.BindEnv("redis.host", "REDIS_HOST")
	viper.BindEnv("redis.port", "REDIS_PORT")
	viper.BindEnv("redis.password", "REDIS_PASSWORD")

	// JWT
	viper.BindEnv("jwt.secret", "JWT_SECRET")

	// Server
	viper.BindEnv("server.mode", "SERVER_MODE")

	// Tracing
	viper.BindEnv("tracing.enabled", "TRACING_ENABLED")
	viper.BindEnv("tracing.collector_endpoint", "TRACING_COLLECTOR_ENDPOINT")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	cfg.JWT.ExpireTime = cfg.JWT.ExpireTime * time.Hour

	// 生产环境校验 JWT Secret 强度
	if cfg.Server.Mode == "release" && len(cfg.JWT.Secret) < 32 {
		return nil, fmt.Errorf("JWT secret is too short (%d chars), must be at least 32 characters in release mode", len(cfg.JWT.Secret))
	}

	applyAnalyticsDefaults(&cfg.Analytics)
	applyEngagementDefaults(&cfg.Engagement)

	return &cfg, nil
}

// Reload 重新读取配置文件（配置热更新用）
func Reload() (*Config, error) {
	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	applyAnalyticsDefaults(&cfg.Analytics)
	applyEngagementDefaults(&cfg.Engagement)
	return &cfg, nil
}

func applyAnalyticsDefaults(a *AnalyticsConfig) {
	if a.MasteryThreshold <= 0 {
		a.MasteryThreshold = 70
	}
	if a.StrongThreshold <= 0 {
		a.StrongThreshold = 80
	}
	if a.TrendBand <= 0 {
		a.TrendBand = 5
	}
	if a.MinSampleSize <= 0 {
		a.MinSampleSize = 3
	}
	if a.TrendWindow <= 0 {
		a.TrendWindow = 10
	}
	if a.MaxRecommendations <= 0 {
		a.MaxRecommendations = 5
	}
	if a.DashboardCacheSeconds <= 0 {
		a.DashboardCacheSeconds = 300
	}
}

func applyEngagementDefaults(e *EngagementConfig) {
	if e.TickSeconds <= 0 {
		e.TickSeconds = 10
	}
	if e.IdleThresholdSeconds <= 0 {
		e.IdleThresholdSeconds = 30
	}
	if e.DecayStep <= 0 {
		e.DecayStep = 0.1
	}
	if e.RecoverStep <= 0 {
		e.RecoverStep = 0.05
	}
	if e.MinScore <= 0 {
		e.MinScore = 0.1
	}
}
