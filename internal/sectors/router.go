package sectors

import (
	"tally/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupSectorRoutes mounts the hot-sector surface. Reads are open to any
// authenticated user; the save endpoint is the research pipeline's ingestion
// hook and stays admin-only.
func SetupSectorRoutes(router *gin.RouterGroup, controller Controller) {
	sector := router.Group("/hot_sector")
	{
		sector.POST("/save", middleware.RequireAdmin(), controller.Save) // POST /api/stock/hot_sector/save - Ingest sector snapshot (admin)
		sector.GET("/today/list", controller.ListToday)                  // GET /api/stock/hot_sector/today/list - Today's sectors by heat
		sector.GET("/today/detail", controller.TodayDetail)              // GET /api/stock/hot_sector/today/detail - Today's sector with chain
		sector.GET("/detail/:sectorID", controller.DetailByID)           // GET /api/stock/hot_sector/detail/:sectorID - Sector by id
	}
}
