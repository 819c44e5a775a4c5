package users

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"tally/internal/shared/utils/response"
)

type Controller interface {
	Me(c *gin.Context)
	UpdateMe(c *gin.Context)
	ChangePassword(c *gin.Context)
	ListUsers(c *gin.Context)
}

type controller struct {
	service Service
}

func NewController(service Service) Controller {
	return &controller{service: service}
}

// currentUserUUID pulls the authenticated user out of the context. The gate
// guarantees it is present on every route this controller serves.
func currentUserUUID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, "缺少认证 Token")
		return uuid.Nil, false
	}

	id, err := uuid.Parse(userID.(string))
	if err != nil {
		response.Unauthorized(c, "Token 无效")
		return uuid.Nil, false
	}

	return id, true
}

// Me godoc
// @Summary      当前用户信息
// @Tags         user
// @Security     BearerAuth
// @Success      200 {object} response.Result{data=UserResponse}
// @Router       /api/account/user/me [get]
func (ctrl *controller) Me(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	profile, err := ctrl.service.GetProfile(userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "获取用户信息失败")
		return
	}

	response.Success(c, profile)
}

// UpdateMe godoc
// @Summary      更新当前用户资料
// @Tags         user
// @Security     BearerAuth
// @Param        request body UpdateProfileRequest true "昵称/头像"
// @Success      200 {object} response.Result{data=UserResponse}
// @Router       /api/account/user/me [put]
func (ctrl *controller) UpdateMe(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请求参数不正确")
		return
	}

	profile, err := ctrl.service.UpdateProfile(userID, req)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			response.NotFound(c, err.Error())
			return
		}
		response.InternalError(c, "更新用户信息失败")
		return
	}

	response.SuccessWithMessage(c, "更新成功", profile)
}

// ChangePassword godoc
// @Summary      修改密码
// @Tags         user
// @Security     BearerAuth
// @Param        request body ChangePasswordRequest true "原密码与新密码"
// @Success      200 {object} response.Result
// @Router       /api/account/user/change_password [post]
func (ctrl *controller) ChangePassword(c *gin.Context) {
	userID, ok := currentUserUUID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "密码长度至少6位")
		return
	}

	if err := ctrl.service.ChangePassword(userID, req); err != nil {
		switch {
		case errors.Is(err, ErrWrongOldPassword):
			response.BadRequest(c, err.Error())
		case errors.Is(err, ErrUserNotFound):
			response.NotFound(c, err.Error())
		default:
			response.InternalError(c, "密码修改失败")
		}
		return
	}

	response.SuccessWithMessage(c, "密码修改成功", nil)
}

// ListUsers godoc
// @Summary      获取用户列表
// @Tags         user
// @Security     BearerAuth
// @Success      200 {object} response.Result{data=[]UserResponse}
// @Router       /api/account/user/list [get]
func (ctrl *controller) ListUsers(c *gin.Context) {
	userList, err := ctrl.service.ListUsers()
	if err != nil {
		response.InternalError(c, "获取用户列表失败")
		return
	}

	response.SuccessWithTimestamp(c, userList)
}
