package users

import (
	"tally/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes mounts the profile surface. Authentication is enforced by
// the global gate; only the admin list needs an extra guard here.
func SetupUserRoutes(router *gin.RouterGroup, controller Controller) {
	userRoutes := router.Group("/user")
	{
		userRoutes.GET("/me", controller.Me)                           // GET /api/account/user/me - Current profile
		userRoutes.PUT("/me", controller.UpdateMe)                     // PUT /api/account/user/me - Update name/avatar
		userRoutes.POST("/change_password", controller.ChangePassword) // POST /api/account/user/change_password
	}

	adminRoutes := router.Group("/user")
	adminRoutes.Use(middleware.RequireAdmin())
	{
		adminRoutes.GET("/list", controller.ListUsers) // GET /api/account/user/list - All users (admin)
	}
}
