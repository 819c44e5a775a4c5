package categories

import (
	"tally/internal/shared/middleware"
	"tally/internal/users"

	"github.com/gin-gonic/gin"
)

// SetupCategoryRoutes mounts the bill-category surface. The global gate has
// already authenticated every request reaching here; per-group guards narrow
// the admin-only pieces.
func SetupCategoryRoutes(router *gin.RouterGroup, controller Controller) {
	categories := router.Group("/category")
	{
		categories.GET("/list", middleware.RequireAdmin(), controller.ListCategories) // GET /api/account/category/list - System + one user's categories (admin)
		categories.GET("/system/list", controller.ListSystemCategories)               // GET /api/account/category/system/list - System presets

		system := categories.Group("/system")
		system.Use(middleware.RequireAdmin())
		{
			system.POST("", controller.CreateSystemCategory)               // POST /api/account/category/system - Create system preset
			system.PUT("/:categoryID", controller.UpdateSystemCategory)    // PUT /api/account/category/system/:categoryID - Update system preset
			system.DELETE("/:categoryID", controller.DeleteSystemCategory) // DELETE /api/account/category/system/:categoryID - Remove system preset
		}

		user := categories.Group("/user")
		user.Use(middleware.RequireRoles(string(users.RoleAdmin), string(users.RoleLevel1)))
		{
			user.GET("/:userID/list", controller.ListUserCategories)           // GET /api/account/category/user/:userID/list - Merged list for one user
			user.POST("/:userID", controller.CreateUserCategory)               // POST /api/account/category/user/:userID - Create custom category
			user.PUT("/:userID/:categoryID", controller.UpdateUserCategory)    // PUT /api/account/category/user/:userID/:categoryID - Update custom category
			user.DELETE("/:userID/:categoryID", controller.DeleteUserCategory) // DELETE /api/account/category/user/:userID/:categoryID - Remove custom category
		}
	}
}
