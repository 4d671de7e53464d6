package attendance

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	h *Handler,
	rbacService rbac.Service,
	rdb ...*redis.Client,
) {
	var redisClient *redis.Client
	if len(rdb) > 0 {
		redisClient = rdb[0]
	}

	// POST chain: rate limit, rbac, optional idempotency, handler.
	write := func(action string, handler gin.HandlerFunc) []gin.HandlerFunc {
		return append(
			[]gin.HandlerFunc{middleware.RateLimitByUser(2, 10)},
			middleware.GuardedWrite(rbacService, "attendance", action, redisClient, handler)...,
		)
	}

	attendances := r.Group("/attendances")
	{
		attendances.GET("", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetAll)
		attendances.GET("/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetById)
		attendances.POST("", write("create", h.Upsert)...)
		attendances.POST("/import", write("create", h.BulkImport)...)
		attendances.DELETE("/:id", middleware.RBACAuthorize(rbacService, "attendance", "delete"), h.Delete)
	}
}
