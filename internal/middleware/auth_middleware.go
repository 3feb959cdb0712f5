package middleware

import (
	"accessnav/internal/models"
	"accessnav/internal/services"
	apperrors "accessnav/pkg/errors"
	"accessnav/pkg/jwt"
	"accessnav/pkg/logger"
	"accessnav/pkg/response"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

// OwnerLookup 资源归属查询函数，返回资源属主的用户ID
type OwnerLookup func(resourceID uint) (uint, error)

// AuthMiddleware 授权检查中间件
// 每个门做出的是一次性决定：放行或终止请求，下次请求从头评估。
// 任何检查过程中的存储错误一律按拒绝处理（fail closed），
// 绝不默认放行。
type AuthMiddleware struct {
	userService *services.UserService
	resolver    *services.ResolverService
	jwtManager  *jwt.JWTManager
}

func NewAuthMiddleware(userService *services.UserService, resolver *services.ResolverService, jwtManager *jwt.JWTManager) *AuthMiddleware {
	return &AuthMiddleware{
		userService: userService,
		resolver:    resolver,
		jwtManager:  jwtManager,
	}
}

// RequireLogin 要求已认证用户
func (m *AuthMiddleware) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 从Authorization头获取JWT token
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.HandleError(c, apperrors.NewAuthenticationError("请先登录"))
			c.Abort()
			return
		}

		// 检查Bearer格式
		if !strings.HasPrefix(authHeader, "Bearer ") {
			response.HandleError(c, apperrors.NewAuthenticationError("认证头格式错误"))
			c.Abort()
			return
		}

		tokenString := authHeader[7:] // 去掉 "Bearer "

		claims, err := m.jwtManager.VerifyToken(tokenString)
		if err != nil {
			response.HandleError(c, apperrors.NewAuthenticationError("Token无效或已过期"))
			c.Abort()
			return
		}

		user, err := m.userService.GetByID(claims.UserID)
		if err != nil {
			response.HandleError(c, apperrors.NewAuthenticationError("用户不存在"))
			c.Abort()
			return
		}

		if !m.userService.IsActive(user) {
			response.HandleError(c, apperrors.NewAuthenticationError("用户已被禁用"))
			c.Abort()
			return
		}

		// 将用户信息保存到上下文
		c.Set("user", user)
		c.Set("user_id", user.ID)
		c.Set("username", user.Username)
		c.Set("legacy_role", user.Role)
		c.Set("claims", claims)

		c.Next()
	}
}

// RequirePermission 要求特定权限
func (m *AuthMiddleware) RequirePermission(permissionCode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		hasPermission, err := m.resolver.HasPermission(userID, permissionCode)
		if err != nil {
			logger.GetLogger().Errorf("Permission check failed for user %d: %v", userID, err)
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}

		if !hasPermission {
			response.HandleError(c, apperrors.NewPermissionDenied(permissionCode))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequirePermissionOrOwner 权限检查，资源属主可豁免
// 缺少权限时退而检查URL中id对应资源的归属，属主放行。
func (m *AuthMiddleware) RequirePermissionOrOwner(permissionCode string, lookup OwnerLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		hasPermission, err := m.resolver.HasPermission(userID, permissionCode)
		if err != nil {
			logger.GetLogger().Errorf("Permission check failed for user %d: %v", userID, err)
			response.ServerError(c, "权限检查失败")
			c.Abort()
			return
		}
		if hasPermission {
			c.Next()
			return
		}

		resourceID, ok := m.resourceID(c)
		if !ok {
			return
		}

		ownerID, err := lookup(resourceID)
		if err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}

		if ownerID != userID {
			response.HandleError(c, apperrors.NewPermissionDenied(permissionCode))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireRole 要求特定角色之一
// 旧版单角色字段与RBAC分配两套机制取或：任一命中即放行。
func (m *AuthMiddleware) RequireRole(roleCodes ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		// 先查旧版单角色
		legacyRole := c.GetString("legacy_role")
		for _, code := range roleCodes {
			if legacyRole == code {
				c.Next()
				return
			}
		}

		// 再查RBAC分配
		hasRole, err := m.resolver.HasRole(userID, roleCodes...)
		if err != nil {
			logger.GetLogger().Errorf("Role check failed for user %d: %v", userID, err)
			response.ServerError(c, "角色检查失败")
			c.Abort()
			return
		}

		if !hasRole {
			response.HandleError(c, apperrors.NewRoleDenied(roleCodes))
			c.Abort()
			return
		}

		c.Next()
	}
}

// RequireOwnership 要求是资源属主
// allowAdmin时管理员（旧版admin/super_admin角色，或持有
// system.manage兜底权限）跳过归属比较。资源不存在返回404。
func (m *AuthMiddleware) RequireOwnership(lookup OwnerLookup, allowAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		if allowAdmin && m.isAdmin(c, userID) {
			c.Next()
			return
		}

		resourceID, ok := m.resourceID(c)
		if !ok {
			return
		}

		ownerID, err := lookup(resourceID)
		if err != nil {
			response.HandleError(c, err)
			c.Abort()
			return
		}

		if ownerID != userID {
			response.HandleError(c, apperrors.NewAuthorizationError("只能操作自己的资源"))
			c.Abort()
			return
		}

		c.Next()
	}
}

// LoadPermissions 把用户的完整权限集加载到请求上下文
func (m *AuthMiddleware) LoadPermissions() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := m.currentUserID(c)
		if !ok {
			return
		}

		permissions, err := m.resolver.GetEffectivePermissions(userID)
		if err != nil {
			logger.GetLogger().Errorf("Failed to load permissions for user %d: %v", userID, err)
			response.ServerError(c, "权限加载失败")
			c.Abort()
			return
		}

		c.Set("permissions", permissions)
		c.Next()
	}
}

// CombineMiddleware 组合中间件（登录 + 权限）
func (m *AuthMiddleware) CombineMiddleware(permissionCode string) []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.RequireLogin(),
		m.RequirePermission(permissionCode),
	}
}

// currentUserID 读取上下文中的用户ID，缺失时终止请求
func (m *AuthMiddleware) currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		response.HandleError(c, apperrors.NewAuthenticationError("请先登录"))
		c.Abort()
		return 0, false
	}
	return userID.(uint), true
}

// resourceID 解析URL中的资源ID
func (m *AuthMiddleware) resourceID(c *gin.Context) (uint, bool) {
	idStr := c.Param("id")
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		c.Abort()
		return 0, false
	}
	return uint(id), true
}

// isAdmin 管理员判定：旧版角色或兜底权限任一命中
func (m *AuthMiddleware) isAdmin(c *gin.Context, userID uint) bool {
	if user, exists := c.Get("user"); exists {
		if u, ok := user.(*models.User); ok && u.IsLegacyAdmin() {
			return true
		}
	}

	hasPermission, err := m.resolver.HasPermission(userID, models.PermissionSystemManage)
	if err != nil {
		// fail closed：查询失败按非管理员处理
		logger.GetLogger().Errorf("Admin check failed for user %d: %v", userID, err)
		return false
	}
	return hasPermission
}
