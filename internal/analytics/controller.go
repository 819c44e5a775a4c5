package analytics

import (
	"github.com/gin-gonic/gin"

	"tally/internal/shared/utils/response"
)

// Controller defines the analytics controller interface
type Controller interface {
	GetOverview(c *gin.Context)
}

// controller implements the Controller interface
type controller struct {
	service Service
}

// NewController creates a new analytics controller instance
func NewController(service Service) Controller {
	return &controller{service: service}
}

// GetOverview godoc
// @Summary      运营概览（管理员）
// @Description  用户、分类、自选、历史行情的总量统计
// @Tags         analytics
// @Security     BearerAuth
// @Success      200 {object} response.Result{data=OverviewAnalytics}
// @Router       /api/account/analytics/overview [get]
func (ctrl *controller) GetOverview(c *gin.Context) {
	overview, err := ctrl.service.GetOverview()
	if err != nil {
		response.InternalError(c, "获取统计数据失败")
		return
	}

	response.Success(c, overview)
}
