package analytics

import (
	"tally/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAnalyticsRoutes mounts the admin overview under the account surface.
func SetupAnalyticsRoutes(router *gin.RouterGroup, controller Controller) {
	analytics := router.Group("/analytics")
	analytics.Use(middleware.RequireAdmin())
	{
		analytics.GET("/overview", controller.GetOverview) // GET /api/account/analytics/overview - Totals snapshot
	}
}
