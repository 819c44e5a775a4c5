package stocks

import (
	"github.com/gin-gonic/gin"
)

// SetupStockRoutes mounts the watchlist surface. Every route is personal, so
// ownership is enforced in the handlers rather than by a role guard.
func SetupStockRoutes(router *gin.RouterGroup, controller Controller) {
	user := router.Group("/user")
	{
		user.GET("/:userID/list", controller.ListUserStocks)            // GET /api/stock/user/:userID/list - Watchlist with quotes
		user.POST("/:userID/add", controller.AddStock)                  // POST /api/stock/user/:userID/add - Track a symbol
		user.PUT("/:userID/:stockID/update", controller.UpdateStock)    // PUT /api/stock/user/:userID/:stockID/update - Edit entry
		user.DELETE("/:userID/:stockID/delete", controller.DeleteStock) // DELETE /api/stock/user/:userID/:stockID/delete - Stop tracking
		user.GET("/:userID/:symbol/kline", controller.Kline)            // GET /api/stock/user/:userID/:symbol/kline - Stored daily prices
	}
}
