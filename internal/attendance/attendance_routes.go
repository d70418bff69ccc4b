package attendance

import (
	"go-attend/internal/middleware"
	"go-attend/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, rbacService rbac.Service) {
	records := r.Group("/attendance")
	records.Use(middleware.AuthMiddleware())
	{
		records.GET("/records", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetRecords)
		records.GET("/records/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetRecordByID)
		records.POST("/records/:id/supplement-check-in", middleware.RBACAuthorize(rbacService, "attendance", "correct"), h.SupplementCheckIn)
		records.POST("/records/:id/supplement-check-out", middleware.RBACAuthorize(rbacService, "attendance", "correct"), h.SupplementCheckOut)
		records.POST("/punches", middleware.RBACAuthorize(rbacService, "attendance", "create"), h.IngestPunch)
	}
}
