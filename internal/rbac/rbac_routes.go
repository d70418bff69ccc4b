package rbac

import (
	"go-attend/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, service Service) {
	group := r.Group("/rbac")
	group.Use(middleware.AuthMiddleware())
	{
		group.POST("/enforce", handler.Enforce)
		group.GET("/roles", middleware.RBACAuthorize(service, "role", "read"), handler.ListRoles)
	}
}
