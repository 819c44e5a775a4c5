package categories

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tally/internal/shared/middleware"
	"tally/internal/shared/utils/response"
	"tally/internal/users"
)

type Controller interface {
	ListCategories(c *gin.Context)
	ListSystemCategories(c *gin.Context)
	CreateSystemCategory(c *gin.Context)
	UpdateSystemCategory(c *gin.Context)
	DeleteSystemCategory(c *gin.Context)
	ListUserCategories(c *gin.Context)
	CreateUserCategory(c *gin.Context)
	UpdateUserCategory(c *gin.Context)
	DeleteUserCategory(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// pathOwnerUUID parses the :userID segment and enforces that non-admin
// callers only touch their own categories. Admins may operate on anyone's.
func pathOwnerUUID(c *gin.Context) (uuid.UUID, bool) {
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
		response.Forbidden(c, "无权限操作其他用户的分类")
		return uuid.Nil, false
	}

	return pathID, true
}

func categoryIDParam(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("categoryID"))
	if err != nil {
		response.BadRequest(c, "请求参数不正确")
		return uuid.Nil, false
	}
	return id, true
}

// ListCategories godoc
// @Summary      查询分类列表（管理员）
// @Description  不带 user_id 只返回系统分类；带 user_id 返回系统分类加该用户自定义分类
// @Tags         category
// @Security     BearerAuth
// @Param        user_id       query string false "用户ID"
// @Param        category_type query int    false "类型: 1-支出, 2-收入"
// @Success      200 {object} response.Result{data=[]CategoryResponse}
// @Router       /api/account/category/list [get]
func (ctrl *controller) ListCategories(c *gin.Context) {
	var query CategoryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	var userID *uuid.UUID
	if query.UserID != "" {
		id, err := uuid.Parse(query.UserID)
		if err != nil {
			response.BadRequest(c, "请求参数不正确")
			return
		}
		userID = &id
	}

	list, err := ctrl.service.ListCategories(c.Request.Context(), userID, query.CategoryType)
	if err != nil {
		response.InternalError(c, "获取分类列表失败")
		return
	}

	response.Success(c, list)
}

// ListSystemCategories godoc
// @Summary      查询系统默认分类
// @Tags         category
// @Security     BearerAuth
// @Success      200 {object} response.Result{data=[]CategoryResponse}
// @Router       /api/account/category/system/list [get]
func (ctrl *controller) ListSystemCategories(c *gin.Context) {
	list, err := ctrl.service.ListSystemCategories(c.Request.Context())
	if err != nil {
		response.InternalError(c, "获取分类列表失败")
		return
	}

	response.Success(c, list)
}

// CreateSystemCategory godoc
// @Summary      新增系统默认分类（管理员）
// @Tags         category
// @Security     BearerAuth
// @Param        request body CreateCategoryRequest true "分类信息"
// @Success      200 {object} response.Result{data=CategoryResponse}
// @Router       /api/account/category/system [post]
func (ctrl *controller) CreateSystemCategory(c *gin.Context) {
	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	created, err := ctrl.service.CreateSystemCategory(c.Request.Context(), req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, created)
}

// UpdateSystemCategory godoc
// @Summary      修改系统默认分类（管理员）
// @Tags         category
// @Security     BearerAuth
// @Param        categoryID path string true "分类ID"
// @Param        request body UpdateCategoryRequest true "要更新的字段"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/account/category/system/{categoryID} [put]
func (ctrl *controller) UpdateSystemCategory(c *gin.Context) {
	categoryID, ok := categoryIDParam(c)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	if err := ctrl.service.UpdateSystemCategory(c.Request.Context(), categoryID, req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}

// DeleteSystemCategory godoc
// @Summary      删除系统默认分类（管理员）
// @Tags         category
// @Security     BearerAuth
// @Param        categoryID path string true "分类ID"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/account/category/system/{categoryID} [delete]
func (ctrl *controller) DeleteSystemCategory(c *gin.Context) {
	categoryID, ok := categoryIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.service.DeleteSystemCategory(c.Request.Context(), categoryID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}

// ListUserCategories godoc
// @Summary      查询用户可见的分类
// @Description  系统分类在前，该用户自定义分类在后
// @Tags         category
// @Security     BearerAuth
// @Param        userID        path  string true  "用户ID"
// @Param        category_type query int    false "类型: 1-支出, 2-收入"
// @Success      200 {object} response.Result{data=[]CategoryResponse}
// @Router       /api/account/category/user/{userID}/list [get]
func (ctrl *controller) ListUserCategories(c *gin.Context) {
	userID, ok := pathOwnerUUID(c)
	if !ok {
		return
	}

	var query UserCategoryListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	list, err := ctrl.service.ListCategories(c.Request.Context(), &userID, query.CategoryType)
	if err != nil {
		response.InternalError(c, "获取分类列表失败")
		return
	}

	response.Success(c, list)
}

// CreateUserCategory godoc
// @Summary      新增自定义分类
// @Tags         category
// @Security     BearerAuth
// @Param        userID  path string true "用户ID"
// @Param        request body CreateCategoryRequest true "分类信息"
// @Success      200 {object} response.Result{data=CategoryResponse}
// @Router       /api/account/category/user/{userID} [post]
func (ctrl *controller) CreateUserCategory(c *gin.Context) {
	userID, ok := pathOwnerUUID(c)
	if !ok {
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	created, err := ctrl.service.CreateUserCategory(c.Request.Context(), userID, req)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, created)
}

// UpdateUserCategory godoc
// @Summary      修改自定义分类
// @Tags         category
// @Security     BearerAuth
// @Param        userID     path string true "用户ID"
// @Param        categoryID path string true "分类ID"
// @Param        request    body UpdateCategoryRequest true "要更新的字段"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/account/category/user/{userID}/{categoryID} [put]
func (ctrl *controller) UpdateUserCategory(c *gin.Context) {
	userID, ok := pathOwnerUUID(c)
	if !ok {
		return
	}

	categoryID, ok := categoryIDParam(c)
	if !ok {
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	if err := ctrl.service.UpdateUserCategory(c.Request.Context(), userID, categoryID, req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}

// DeleteUserCategory godoc
// @Summary      删除自定义分类
// @Tags         category
// @Security     BearerAuth
// @Param        userID     path string true "用户ID"
// @Param        categoryID path string true "分类ID"
// @Success      200 {object} response.Result{data=bool}
// @Router       /api/account/category/user/{userID}/{categoryID} [delete]
func (ctrl *controller) DeleteUserCategory(c *gin.Context) {
	userID, ok := pathOwnerUUID(c)
	if !ok {
		return
	}

	categoryID, ok := categoryIDParam(c)
	if !ok {
		return
	}

	if err := ctrl.service.DeleteUserCategory(c.Request.Context(), userID, categoryID); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, true)
}
