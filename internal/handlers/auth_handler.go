package handlers

import (
	"accessnav/internal/services"
	"accessnav/pkg/jwt"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
)

// LoginRequest 登录请求
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	Token string `json:"token" binding:"required"`
}

type AuthHandler struct {
	userService *services.UserService
	resolver    *services.ResolverService
	loginGuard  *services.LoginGuard
	jwtManager  *jwt.JWTManager
}

func NewAuthHandler(userService *services.UserService, resolver *services.ResolverService, loginGuard *services.LoginGuard, jwtManager *jwt.JWTManager) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		resolver:    resolver,
		loginGuard:  loginGuard,
		jwtManager:  jwtManager,
	}
}

// Login 用户登录
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if h.loginGuard != nil && h.loginGuard.IsLocked(req.Username) {
		response.Forbidden(c, "登录失败次数过多，请15分钟后重试")
		return
	}

	user, err := h.userService.GetByUsername(req.Username)
	if err != nil {
		// 不区分用户不存在与密码错误
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	if !user.CheckPassword(req.Password) {
		if h.loginGuard != nil {
			h.loginGuard.RecordFailure(req.Username)
		}
		response.Unauthorized(c, "用户名或密码错误")
		return
	}

	if !h.userService.IsActive(user) {
		response.Unauthorized(c, "用户已被禁用")
		return
	}

	token, err := h.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	if err != nil {
		response.ServerError(c, "生成令牌失败")
		return
	}

	if h.loginGuard != nil {
		h.loginGuard.Reset(req.Username)
	}
	_ = h.userService.UpdateLastLogin(user.ID)

	response.Success(c, gin.H{
		"token":      token,
		"expires_in": int(h.jwtManager.GetTokenDuration().Seconds()),
		"user":       user,
	})
}

// Logout 用户登出（无状态JWT，客户端丢弃令牌即可）
func (h *AuthHandler) Logout(c *gin.Context) {
	response.SuccessWithMessage(c, "登出成功", nil)
}

// RefreshToken 刷新令牌
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	token, err := h.jwtManager.RefreshToken(req.Token)
	if err != nil {
		response.Unauthorized(c, "Token无效或已过期")
		return
	}

	response.Success(c, gin.H{
		"token":      token,
		"expires_in": int(h.jwtManager.GetTokenDuration().Seconds()),
	})
}

// Me 获取当前用户信息（含有效权限集与角色）
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetUint("user_id")

	user, err := h.userService.GetByID(userID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	// 权限集由LoadPermissions中间件预加载到上下文
	permissions := c.GetStringSlice("permissions")

	roleCodes, err := h.resolver.GetRoleCodes(userID)
	if err != nil {
		response.ServerError(c, "角色加载失败")
		return
	}

	response.Success(c, gin.H{
		"user":        user,
		"roles":       roleCodes,
		"permissions": permissions,
	})
}
