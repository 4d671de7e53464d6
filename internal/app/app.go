package app

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/observability"
	"go-payroll/internal/shared/connection"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// BuildApp connects the infrastructure and mounts every module on router.
func BuildApp(router *gin.Engine, cfg Config) error {
	logger := zap.L().Named("app")

	// 1. Setup Infrastructure
	gormDB, err := connectDatabase(cfg)
	if err != nil {
		return err
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	logger.Info("database connection established")

	redisClient, err := connection.ConnectRedisWithRetry(cfg.RedisAddr, cfg.DBRetries)
	if err != nil {
		return err
	}
	logger.Info("redis connection established")

	metrics := observability.NewMetrics(nil)

	// 2. Global middleware
	router.Use(
		middleware.RequestID(),
		middleware.CORS(cfg.CORSOrigins),
		middleware.SecureHeaders(cfg.IsDevelopment()),
		metrics.HTTPMiddleware(),
	)

	// 3. Register Modules & Routes
	return registerModules(router, cfg, sqlDB, gormDB, redisClient, metrics, zap.L())
}

func connectDatabase(cfg Config) (*gorm.DB, error) {
	return connection.ConnectGORMWithRetry(
		cfg.DBHost,
		cfg.DBUser,
		cfg.DBPassword,
		cfg.DBName,
		cfg.DBPort,
		cfg.DBSSLMode,
		cfg.DBRetries,
	)
}
