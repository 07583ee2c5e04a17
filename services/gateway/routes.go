package gateway

import (
	"eventreward/pkg/middleware"
	"eventreward/pkg/token"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

var Module = fx.Module("gateway",
	fx.Provide(
		NewHandler,
		middleware.NewEnforcer,
		func(i *token.Issuer) middleware.TokenVerifier { return i },
	),
	fx.Invoke(RegisterRoutes),
)

// RegisterRoutes mounts the public API. Role rules live in the casbin policy.
func RegisterRoutes(r *gin.Engine, h *Handler, verifier middleware.TokenVerifier, enforcer *casbin.Enforcer) {
	v1 := r.Group("/api/v1")

	auth := v1.Group("/auth")
	auth.POST("/register", h.Register)
	auth.POST("/login", h.Login)
	auth.GET("/refresh", h.Refresh)

	guarded := v1.Group("", middleware.Authenticate(verifier), middleware.Authorize(enforcer))
	guarded.PUT("/users/:userId/roles", h.UpdateUserRoles)

	guarded.POST("/events", h.CreateEvent)
	guarded.GET("/events", h.ListEvents)
	guarded.GET("/events/:id", h.GetEvent)
	guarded.POST("/events/:id/rewards", h.CreateReward)
	guarded.GET("/events/:id/rewards", h.ListRewards)

	guarded.POST("/reward-requests", h.SubmitRewardRequest)
	guarded.GET("/reward-requests/me", h.ListMyRewardRequests)
	guarded.GET("/reward-requests", h.ListAllRewardRequests)
}
