package shift

import (
	"go-attend/internal/middleware"
	"go-attend/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	periods := r.Group("/time-periods")
	periods.Use(middleware.AuthMiddleware())
	{
		periods.GET("", middleware.RBACAuthorize(rbacService, "shift", "read"), h.GetPeriods)
		periods.POST("", middleware.RBACAuthorize(rbacService, "shift", "create"), h.CreatePeriod)
		periods.PUT("/:id", middleware.RBACAuthorize(rbacService, "shift", "update"), h.UpdatePeriod)
	}

	shifts := r.Group("/shifts")
	shifts.Use(middleware.AuthMiddleware())
	{
		shifts.GET("", middleware.RBACAuthorize(rbacService, "shift", "read"), h.GetShifts)
		shifts.GET("/:id", middleware.RBACAuthorize(rbacService, "shift", "read"), h.GetShiftByID)
		shifts.POST("", middleware.RBACAuthorize(rbacService, "shift", "create"), h.CreateShift)
		shifts.PUT("/:id", middleware.RBACAuthorize(rbacService, "shift", "update"), h.UpdateShift)
		shifts.POST("/assignments", middleware.RBACAuthorize(rbacService, "shift", "update"), h.AssignShift)
	}
}
