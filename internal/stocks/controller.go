package stocks

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tally/internal/shared/middleware"
	"tally/internal/shared/utils/response"
	"tally/internal/users"
)

type Controller interface {
	ListUserStocks(c *gin.Context)
	AddStock(c *gin.Context)
	UpdateStock(c *gin.Context)
	DeleteStock(c *gin.Context)
	Kline(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// watchlistOwnerUUID parses the :userID segment and enforces that non-admin
// callers only reach their own watchlist. forbidden is the 403 text, which
// differs between read and write routes.
func watchlistOwnerUUID(c *gin.Context, forbidden string) (uuid.UUID, bool) {
	pathID, err := uuid.Parse(c.Param("userID"))
	if err != nil {
		response.BadRequest(c, "请求参数不正确")
		return uuid.Nil, false
	}

	if role, ok := middleware.CurrentRole(c); ok && role == string(users.RoleAdmin) {
		return pathID, true
	}

	subject, ok := middleware.CurrentUserID(c)
	if !ok || subject != pathID.String() {
		response.Forbidden(c, forbidden)
		return uuid.Nil, false
	}

	return pathID, true
}

func stockIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("stockID"))
	if err != nil {
		response.BadRequest(c, "请求参数不正确")
		return uuid.Nil, false
	}
	return id, true
}

// ListUserStocks godoc
// @Summary      查询用户自选列表
// @Description  按 sort_order 排序，附带最近一次行情快照
// @Tags         stock
// @Security     BearerAuth
// @Param        userID path string true "用户ID"
// @Success      200 {object} response.Result{data=[]UserStockResponse}
// @Router       /api/stock/user/{userID}/list [get]
func (ctrl *controller) ListUserStocks(c *gin.Context) {
	userID, ok := watchlistOwnerUUID(c, "无权限查看其他用户的自选")
	if !ok {
		return
	}

	list, err := ctrl.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c, "获取自选列表失败")
		return
	}

	response.Success(c, list)
}

// AddStock godoc
// @Summary      添加自选股票
// @Description  添加后异步同步该股票的日线数据
// @Tags         stock
// @Security     BearerAuth
// @Param        userID  path string true "用户ID"
// @Param        request body AddStockRequest true "股票信息"
// @Success      200 {object} response.Result{data=UserStockResponse}
// @Router       /api/stock/user/{userID}/add [post]
func (ctrl *controller) AddStock(c *gin.Context) {
	userID, ok := watchlistOwnerUUID(c, "无权限操作其他用户的自选")
	if !ok {
		return
	}

	var req AddStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	added, err := ctrl.service.AddStock(c.Request.Context(), userID, req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, added)
}

// UpdateStock godoc
// @Summary      修改自选股票信息
// @Tags         stock
// @Security     BearerAuth
// @Param        userID  path string true "用户ID"
// @Param        stockID path string true "自选ID"
// @Param        request body UpdateStockRequest true "要更新的字段"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/stock/user/{userID}/{stockID}/update [put]
func (ctrl *controller) UpdateStock(c *gin.Context) {
	userID, ok := watchlistOwnerUUID(c, "无权限操作其他用户的自选")
	if !ok {
		return
	}

	stockID, ok := stockIDParam(c)
	if !ok {
		return
	}

	var req UpdateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	if err := ctrl.service.UpdateStock(c.Request.Context(), userID, stockID, req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}

// DeleteStock godoc
// @Summary      删除自选股票
// @Tags         stock
// @Security     BearerAuth
// @Param        userID  path string true "用户ID"
// @Param        stockID path string true "自选ID"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/stock/user/{userID}/{stockID}/delete [delete]
func (ctrl *controller) DeleteStock(c *gin.Context) {
	userID, ok := watchlistOwnerUUID(c, "无权限操作其他用户的自选")
	if !ok {
		return
	}

	stockID, ok := stockIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.service.RemoveStock(c.Request.Context(), userID, stockID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}

// Kline godoc
// @Summary      查询自选股票历史日线
// @Description  读取已入库的日线数据，按交易日升序
// @Tags         stock
// @Security     BearerAuth
// @Param        userID path  string true  "用户ID"
// @Param        symbol path  string true  "股票代码"
// @Param        period query string false "区间: 1d/5d/1mo/3mo/6mo/1y/2y/5y/max，默认 1mo"
// @Success      200 {object} response.Result{data=[]StockDailyPriceResponse}
// @Router       /api/stock/user/{userID}/{symbol}/kline [get]
func (ctrl *controller) Kline(c *gin.Context) {
	userID, ok := watchlistOwnerUUID(c, "无权限查看其他用户的自选")
	if !ok {
		return
	}

	var query KlineQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}
	if query.Period == "" {
		query.Period = "1mo"
	}

	prices, err := ctrl.service.Kline(c.Request.Context(), userID, c.Param("symbol"), query.Period)
	if err != nil {
		if errors.Is(err, ErrStockMissing) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "获取K线数据失败")
		return
	}

	response.Success(c, prices)
}
