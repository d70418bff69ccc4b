package recalc

import (
	"go-attend/internal/middleware"
	"go-attend/internal/rbac"

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

	batches := r.Group("/attendance/recalculations")
	batches.Use(middleware.AuthMiddleware())
	{
		if redisClient != nil {
			batches.POST(
				"",
				middleware.Idempotency(redisClient),
				middleware.RBACAuthorize(rbacService, "attendance", "recalculate"),
				h.Trigger,
			)
		} else {
			batches.POST("", middleware.RBACAuthorize(rbacService, "attendance", "recalculate"), h.Trigger)
		}
		batches.GET("/:id", middleware.RBACAuthorize(rbacService, "attendance", "read"), h.GetStatus)
	}
}
