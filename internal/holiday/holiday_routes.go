package holiday

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
	holidays := r.Group("/holidays")
	{
		holidays.GET("", middleware.RBACAuthorize(rbacService, "holiday", "read"), handler.GetAll)
		holidays.GET("/:id", middleware.RBACAuthorize(rbacService, "holiday", "read"), handler.GetById)
		holidays.POST("", middleware.RBACAuthorize(rbacService, "holiday", "create"), handler.Create)
		holidays.PUT("/:id", middleware.RBACAuthorize(rbacService, "holiday", "update"), handler.Update)
		holidays.DELETE("/:id", middleware.RBACAuthorize(rbacService, "holiday", "delete"), handler.Delete)
	}
}
