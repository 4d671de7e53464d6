package employeerate

import (
	"go-payroll/internal/middleware"
	"go-payroll/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	rbacService rbac.Service,
) {
	rates := r.Group("/employee-rates")
	{
		rates.GET("",
			middleware.RateLimitByUser(1, 5),
			middleware.RBACAuthorize(rbacService, "employee_rate", "read"),
			handler.GetAll,
		)
		rates.GET("/current",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "employee_rate", "read"),
			handler.GetCurrent,
		)
		rates.GET("/:id",
			middleware.RateLimitByUser(2, 5),
			middleware.RBACAuthorize(rbacService, "employee_rate", "read"),
			handler.GetById,
		)
		rates.POST("",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(rbacService, "employee_rate", "create"),
			handler.Create,
		)
		rates.DELETE("/:id",
			middleware.RateLimitByUser(0.05, 1),
			middleware.RBACAuthorize(rbacService, "employee_rate", "delete"),
			handler.Delete,
		)
	}
}
