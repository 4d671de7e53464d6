package app

import (
	"database/sql"
	"net/http"

	"go-payroll/internal/attendance"
	"go-payroll/internal/bootstrap"
	"go-payroll/internal/employee"
	"go-payroll/internal/employeerate"
	"go-payroll/internal/holiday"
	"go-payroll/internal/messaging/kafka"
	"go-payroll/internal/middleware"
	"go-payroll/internal/observability"
	"go-payroll/internal/payroll"
	"go-payroll/internal/rbac"
	"go-payroll/internal/rbac/infra"
	"go-payroll/internal/shared/counter"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func registerModules(
	router *gin.Engine,
	cfg Config,
	db *sql.DB,
	gormDB *gorm.DB,
	rdb *redis.Client,
	metrics *observability.Metrics,
	logger *zap.Logger,
) error {
	// --- Repositories ---
	attendanceRepo := attendance.NewRepository(gormDB)
	counterRepo := counter.NewRepository(gormDB)
	employeeRepo := employee.NewRepository(gormDB)
	employeeRateRepo := employeerate.NewRepository(gormDB)
	holidayRepo := holiday.NewRepository(gormDB)
	outboxRepo := kafka.NewOutboxRepository(db)
	payrollRepo := payroll.NewRepository(gormDB)

	// --- RBAC Core ---
	enforcer, err := infra.NewEnforcer(cfg.RBACModelPath, cfg.RBACPolicyPath)
	if err != nil {
		return err
	}
	rbacService := rbac.NewService(enforcer, logger)

	// --- Services ---
	holidayService := holiday.NewService(db, holidayRepo, logger)
	attendanceService := attendance.NewService(db, attendanceRepo, holidayService, logger)
	employeeService := employee.NewServiceWithOutbox(db, employeeRepo, counterRepo, outboxRepo, rdb, logger)
	employeeRateService := employeerate.NewService(db, employeeRateRepo, logger)
	payrollService := payroll.NewServiceWithOptions(db, payrollRepo, attendanceService, payroll.Options{
		Outbox:         outboxRepo,
		Counter:        counterRepo,
		Metrics:        metrics,
		Workers:        cfg.PayrollWorkers,
		PayslipDir:     cfg.PayslipDir,
		PayslipBaseURL: cfg.PayslipBaseURL,
		MaxPeriodDays:  cfg.MaxPeriodDays,
		Audit:          bootstrap.NewStdoutAuditLogger(logger.Named("audit")),
		Logger:         logger,
	})

	// --- Handlers ---
	attendanceHandler := attendance.NewHandlerWithRedis(attendanceService, rbacService, rdb, logger)
	employeeHandler := employee.NewHandler(employeeService, logger)
	employeeRateHandler := employeerate.NewHandler(employeeRateService, logger)
	holidayHandler := holiday.NewHandler(holidayService, logger)
	payrollHandler := payroll.NewHandlerWithRedis(payrollService, rbacService, rdb, logger)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	// Payslip PDF hasil generate disajikan langsung dari storage.
	router.Static(cfg.PayslipBaseURL, cfg.PayslipDir)

	// --- Routes Registration ---
	api := router.Group("/api/v1")
	api.Use(
		middleware.AuthMiddleware(cfg.JWTSecret),
		middleware.ContextLogger(logger),
		middleware.RateLimitByIP(20, 40),
	)
	{
		attendance.RegisterRoutes(api, attendanceHandler, rbacService, rdb)
		employee.RegisterRoutes(api, employeeHandler, rbacService)
		employeerate.RegisterRoutes(api, employeeRateHandler, rbacService)
		holiday.RegisterRoutes(api, holidayHandler, rbacService)
		payroll.RegisterRoutes(api, payrollHandler, rbacService, rdb)
	}

	return nil
}
