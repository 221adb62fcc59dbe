package handler

import (
	"github.com/gin-gonic/gin"

	appaccount "github.com/xiebiao/bookcase/internal/application/account"
	"github.com/xiebiao/bookcase/internal/interface/http/dto"
	"github.com/xiebiao/bookcase/internal/interface/http/middleware"
	"github.com/xiebiao/bookcase/pkg/response"
)

// AccountHandler 账号HTTP处理器
// 设计说明：
// 1. Handler只负责HTTP相关的事情：解析请求、调用应用层、返回响应
// 2. 不包含业务逻辑（业务逻辑在domain和application层）
// 3. 使用依赖注入，便于测试
type AccountHandler struct {
	registerUseCase *appaccount.RegisterUseCase
	loginUseCase    *appaccount.LoginUseCase
	logoutUseCase   *appaccount.LogoutUseCase
	refreshUseCase  *appaccount.RefreshUseCase
}

// NewAccountHandler 创建账号处理器
func NewAccountHandler(
	registerUseCase *appaccount.RegisterUseCase,
	loginUseCase *appaccount.LoginUseCase,
	logoutUseCase *appaccount.LogoutUseCase,
	refreshUseCase *appaccount.RefreshUseCase,
) *AccountHandler {
	return &AccountHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		logoutUseCase:   logoutUseCase,
		refreshUseCase:  refreshUseCase,
	}
}

// Register 注册账号
// @Summary      注册账号
// @Description  第一个注册的账号同时获得ROLE_ADMIN
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=dto.AccountResponse} "注册成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名已存在"
// @Router       /api/v1/accounts/register [post]
func (h *AccountHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	info, err := h.registerUseCase.Execute(c.Request.Context(), appaccount.RegisterRequest{
		Username:     req.Username,
		Password:     req.Password,
		CopyPassword: req.CopyPassword,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAccountResponse(info))
}

// Login 登录
// @Summary      登录
// @Description  验证用户名密码，返回JWT Token对
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse} "登录成功"
// @Failure      401 {object} response.Response "用户名或密码错误"
// @Router       /api/v1/accounts/login [post]
func (h *AccountHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appaccount.LoginRequest{
		Username: req.Username,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		Account:      *toAccountResponse(&result.Account),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout 登出
// @Summary      登出
// @Description  删除会话并使当前Access Token失效
// @Tags         账号
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/accounts/logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(), middleware.GetAccountID(c), middleware.GetToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Tags         账号
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.TokenResponse}
// @Failure      401 {object} response.Response "Token无效或已过期"
// @Router       /api/v1/accounts/refresh [post]
func (h *AccountHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.TokenResponse{AccessToken: result.AccessToken, ExpiresIn: result.ExpiresIn})
}

func toAccountResponse(info *appaccount.AccountInfo) *dto.AccountResponse {
	return &dto.AccountResponse{ID: info.ID, Username: info.Username, Roles: info.Roles}
}
