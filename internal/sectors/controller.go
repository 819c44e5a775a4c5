package sectors

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tally/internal/shared/utils/response"
)

type Controller interface {
	Save(c *gin.Context)
	ListToday(c *gin.Context)
	TodayDetail(c *gin.Context)
	DetailByID(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// Save godoc
// @Summary      保存热门板块数据
// @Description  同板块同日期的快照存在则覆盖更新
// @Tags         hot-sector
// @Security     BearerAuth
// @Param        record_date query string false "采集日期，格式: 2024-01-01，默认今天"
// @Param        request body SaveHotSectorRequest true "板块快照"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/stock/hot_sector/save [post]
func (ctrl *controller) Save(c *gin.Context) {
	var query SaveHotSectorQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	recordDate := time.Now().UTC()
	if query.RecordDate != "" {
		parsed, err := time.Parse("2006-01-02", query.RecordDate)
		if err != nil {
			response.BadRequest(c, "请求参数不正确")
			return
		}
		recordDate = parsed
	}

	var req SaveHotSectorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	if err := ctrl.service.Save(c.Request.Context(), req, recordDate); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}

// ListToday godoc
// @Summary      查询今日热门板块列表
// @Description  按热度指数降序
// @Tags         hot-sector
// @Security     BearerAuth
// @Success      200 {object} response.Result{data=[]HotSectorBriefResponse}
// @Router       /api/stock/hot_sector/today/list [get]
func (ctrl *controller) ListToday(c *gin.Context) {
	list, err := ctrl.service.ListTodayBrief(c.Request.Context())
	if err != nil {
		response.InternalError(c, "获取热门板块列表失败")
		return
	}

	response.Success(c, list)
}

// TodayDetail godoc
// @Summary      查询今日板块详细信息
// @Description  含上中下游产业链环节及代表性个股
// @Tags         hot-sector
// @Security     BearerAuth
// @Param        sector_name query string true "板块名称，如 AI半导体"
// @Success      200 {object} response.Result{data=HotSectorDetailResponse}
// @Router       /api/stock/hot_sector/today/detail [get]
func (ctrl *controller) TodayDetail(c *gin.Context) {
	var query TodayDetailQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	detail, err := ctrl.service.GetTodayDetail(c.Request.Context(), query.SectorName)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, detail)
}

// DetailByID godoc
// @Summary      根据板块ID查询详细信息
// @Tags         hot-sector
// @Security     BearerAuth
// @Param        sectorID path string true "板块ID"
// @Success      200 {object} response.Result{data=HotSectorDetailResponse}
// @Router       /api/stock/hot_sector/detail/{sectorID} [get]
func (ctrl *controller) DetailByID(c *gin.Context) {
	sectorID, err := uuid.Parse(c.Param("sectorID"))
	if err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	detail, err := ctrl.service.GetDetail(c.Request.Context(), sectorID)
	if err != nil {
		if errors.Is(err, ErrSectorMissing) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "获取板块详情失败")
		return
	}

	response.Success(c, detail)
}
