package payroll

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	// idempotent wraps POSTs that are expensive to repeat.
	idempotent := func(resource, action string, h gin.HandlerFunc) []gin.HandlerFunc {
		return middleware.GuardedWrite(rbacService, resource, action, redisClient, h)
	}

	periods := r.Group("/payroll-periods")
	{
		periods.GET("", middleware.RBACAuthorize(rbacService, "payroll_period", "read"), handler.GetPeriods)
		periods.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll_period", "read"), handler.GetPeriod)
		periods.POST("", idempotent("payroll_period", "create", handler.CreatePeriod)...)
		periods.PATCH("/:id/status", middleware.RBACAuthorize(rbacService, "payroll_period", "update"), handler.TransitionPeriod)
		periods.POST("/:id/generate",
			append([]gin.HandlerFunc{middleware.RateLimitByUser(1, 3)}, idempotent("payroll_period", "generate", handler.GeneratePeriod)...)...,
		)
		periods.POST("/:id/entries", middleware.RBACAuthorize(rbacService, "payroll", "create"), handler.GenerateEntry)
	}

	entries := r.Group("/payroll-entries")
	{
		entries.GET("", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetEntries)
		entries.GET("/:id", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetEntry)
		entries.GET("/:id/breakdown", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.GetBreakdown)
		entries.GET("/:id/payslip/download", middleware.RBACAuthorize(rbacService, "payroll", "read"), handler.DownloadPayslip)
		entries.PUT("/:id/deductions", middleware.RBACAuthorize(rbacService, "payroll", "update"), handler.UpdateDeductions)
		entries.POST("/:id/approve", middleware.RBACAuthorize(rbacService, "payroll", "approve"), handler.Approve)
		entries.POST("/:id/mark-paid", middleware.RBACAuthorize(rbacService, "payroll", "pay"), handler.MarkAsPaid)
		entries.POST("/:id/payslip", middleware.RBACAuthorize(rbacService, "payroll", "create"), handler.GeneratePayslip)
		entries.DELETE("/:id", middleware.RBACAuthorize(rbacService, "payroll", "delete"), handler.Delete)
	}
}
