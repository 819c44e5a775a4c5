package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"tally/internal/shared/utils/response"
	"tally/pkg/logger"
	"tally/pkg/token"
)

type Controller struct {
	service  Service
	validate *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:  service,
		validate: validator.New(),
	}
}

// fail maps service errors onto the envelope: business failures keep their
// message with HTTP 400, anything else becomes a generic 500.
func (c *Controller) fail(ctx *gin.Context, err error) {
	if biz, ok := AsBizError(err); ok {
		response.BadRequest(ctx, biz.Msg)
		return
	}
	logger.GetDefault().LogHTTPError(ctx, err, http.StatusInternalServerError)
	response.InternalError(ctx, "")
}

// Register godoc
// @Summary      用户注册
// @Description  通过账号、邮箱或手机号三选一注册，邮箱和手机号注册需先获取验证码
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "注册信息"
// @Success      200 {object} response.Result{data=users.UserResponse}
// @Failure      400 {object} response.Result
// @Router       /api/account/user/register [post]
func (c *Controller) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "请求参数不正确")
		return
	}
	if err := c.validate.Struct(&req); err != nil {
		response.BadRequest(ctx, err.Error())
		return
	}

	user, method, err := c.service.Register(ctx.Request.Context(), &req)
	if err != nil {
		c.fail(ctx, err)
		return
	}

	response.SuccessWithMessage(ctx, fmt.Sprintf("注册成功，注册方式: %s", method), user)
}

// Login godoc
// @Summary      用户登录
// @Description  账号/邮箱/手机号登录；login_type 为 verify_code 时 password 字段携带验证码
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "登录信息"
// @Success      200 {object} response.Result{data=AuthResponse}
// @Failure      400 {object} response.Result
// @Router       /api/account/user/login [post]
func (c *Controller) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "请求参数不正确")
		return
	}
	if err := c.validate.Struct(&req); err != nil {
		response.BadRequest(ctx, err.Error())
		return
	}

	resp, method, err := c.service.Login(ctx.Request.Context(), &req)
	if err != nil {
		if biz, ok := AsBizError(err); ok {
			logger.GetDefault().LogAuthFailure(ctx.Request.Context(), biz.Msg, ctx.ClientIP())
		}
		c.fail(ctx, err)
		return
	}

	response.SuccessWithMessage(ctx, fmt.Sprintf("登录成功，登录方式: %s", method), resp)
}

// RefreshToken godoc
// @Summary      刷新 Token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RefreshTokenRequest true "刷新 Token"
// @Success      200 {object} response.Result{data=token.Pair}
// @Failure      401 {object} response.Result
// @Router       /api/account/user/refresh [post]
func (c *Controller) RefreshToken(ctx *gin.Context) {
	var req RefreshTokenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.BadRequest(ctx, "请求参数不正确")
		return
	}
	if err := c.validate.Struct(&req); err != nil {
		response.BadRequest(ctx, err.Error())
		return
	}

	pair, err := c.service.RefreshToken(ctx.Request.Context(), req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, token.ErrTokenExpired):
			response.Unauthorized(ctx, "Token 已过期")
		case errors.Is(err, token.ErrTokenInvalid):
			response.Unauthorized(ctx, "Token 无效")
		default:
			c.fail(ctx, err)
		}
		return
	}

	response.Success(ctx, pair)
}

// Logout godoc
// @Summary      退出登录
// @Description  Token 无服务端状态，登出即客户端丢弃本地 Token
// @Tags         auth
// @Security     BearerAuth
// @Success      200 {object} response.Result
// @Router       /api/account/user/logout [post]
func (c *Controller) Logout(ctx *gin.Context) {
	var req LogoutRequest
	_ = ctx.ShouldBindJSON(&req) // body optional

	response.SuccessWithMessage(ctx, "退出登录成功", nil)
}

// SendRegisterCode godoc
// @Summary      发送注册验证码
// @Tags         auth
// @Produce      json
// @Param        target query string true "邮箱或手机号"
// @Success      200 {object} response.Result
// @Failure      400 {object} response.Result
// @Router       /api/account/user/register/verify_code [get]
func (c *Controller) SendRegisterCode(ctx *gin.Context) {
	c.sendCode(ctx, c.service.SendRegisterCode)
}

// SendLoginCode godoc
// @Summary      发送登录验证码
// @Tags         auth
// @Produce      json
// @Param        target query string true "邮箱或手机号"
// @Success      200 {object} response.Result
// @Failure      400 {object} response.Result
// @Router       /api/account/user/login/verify_code [get]
func (c *Controller) SendLoginCode(ctx *gin.Context) {
	c.sendCode(ctx, c.service.SendLoginCode)
}

func (c *Controller) sendCode(ctx *gin.Context, send func(context.Context, string) error) {
	var req SendCodeRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		response.BadRequest(ctx, "请求参数不正确")
		return
	}
	if err := c.validate.Struct(&req); err != nil {
		response.BadRequest(ctx, err.Error())
		return
	}

	if err := send(ctx.Request.Context(), req.Target); err != nil {
		c.fail(ctx, err)
		return
	}

	response.SuccessWithMessage(ctx, "验证码已发送", nil)
}
