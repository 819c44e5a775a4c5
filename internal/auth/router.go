package auth

import (
	"github.com/gin-gonic/gin"
)

// Router handles auth-related routes
type Router struct {
	controller *Controller
}

// NewRouter creates a new auth router
func NewRouter(controller *Controller) *Router {
	return &Router{
		controller: controller,
	}
}

// SetupRoutes registers the auth routes. Authentication is enforced by the
// engine-level gate, which lets these public paths through by allow-list;
// logout stays outside the list so it requires a live token.
func (authRouter *Router) SetupRoutes(rg *gin.RouterGroup) {
	user := rg.Group("/user")
	{
		user.POST("/register", authRouter.controller.Register)
		user.POST("/login", authRouter.controller.Login)
		user.POST("/refresh", authRouter.controller.RefreshToken)
		user.POST("/logout", authRouter.controller.Logout)

		user.GET("/register/verify_code", authRouter.controller.SendRegisterCode)
		user.GET("/login/verify_code", authRouter.controller.SendLoginCode)
	}
}
