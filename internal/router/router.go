package router

import (
	"regexp"
	"time"

	"accessnav/internal/database"
	"accessnav/internal/handlers"
	"accessnav/internal/middleware"
	"accessnav/internal/models"
	"accessnav/internal/services"
	"accessnav/pkg/config"
	"accessnav/pkg/jwt"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var permCodePattern = regexp.MustCompile(`^[a-z][a-z_]*\.[a-z][a-z_]*$`)

// SetupRouter 设置路由
func SetupRouter() *gin.Engine {
	router := gin.New()

	// 中间件
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.SetupCORS())

	registerValidators()

	// 注册路由
	registerRoutes(router)
	return router
}

// 注册自定义校验规则
func registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("permcode", func(fl validator.FieldLevel) bool {
			return permCodePattern.MatchString(fl.Field().String())
		})
	}
}

// 注册所有路由
func registerRoutes(router *gin.Engine) {

	db := database.GetDB()
	permCache := database.GetPermissionCache()

	userService := services.NewUserService(db)
	permissionService := services.NewPermissionService(db, permCache)
	roleService := services.NewRoleService(db, permCache)
	assignmentService := services.NewAssignmentService(db, permCache)
	resolver := services.NewResolverService(db, permCache)
	loginGuard := services.NewLoginGuard(database.GetRedisClient(), config.GetConfig().Redis.Prefix)

	hub := services.NewMessageHub()
	routeService := services.NewRouteService(db)
	messageService := services.NewMessageService(db, hub)
	registrationService := services.NewTouristRegistrationService(db)
	voiceGuideService := services.NewVoiceGuideService(db)

	auth := middleware.NewAuthMiddleware(userService, resolver, jwt.GetJWTManager())

	// API路由组
	api := router.Group("/api/v1")
	{
		// 健康检查接口
		api.GET("/health", healthCheck)
		api.GET("/ping", ping)

		// JWT认证路由（无需认证）
		authHandler := handlers.NewAuthHandler(userService, resolver, loginGuard, jwt.GetJWTManager())
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/login", authHandler.Login)          // 用户登录
			authGroup.POST("/logout", authHandler.Logout)        // 用户登出
			authGroup.POST("/refresh", authHandler.RefreshToken) // 刷新Token

			// 获取当前用户完整信息（含角色和有效权限）
			authGroup.GET("/me", auth.RequireLogin(), auth.LoadPermissions(), authHandler.Me)
		}

		// 用户路由（添加权限保护）
		userHandler := handlers.NewUserHandler(userService, assignmentService, resolver)
		users := api.Group("/users")
		{
			// 基础CRUD（添加权限保护）
			users.POST("", auth.RequireLogin(), auth.RequirePermission("user.create"), userHandler.Create)
			users.GET("", auth.RequireLogin(), auth.RequirePermission("user.list"), userHandler.GetAll)
			users.GET("/:id", auth.RequireLogin(), auth.RequirePermissionOrOwner("user.read", selfLookup), userHandler.GetByID)
			users.PUT("/:id", auth.RequireLogin(), auth.RequirePermissionOrOwner("user.update", selfLookup), userHandler.Update)
			users.DELETE("/:id", auth.RequireLogin(), auth.RequirePermission("user.delete"), userHandler.Delete)

			// 快捷操作（需要用户管理权限）
			users.POST("/:id/activate", auth.RequireLogin(), auth.RequirePermission("user.update"), userHandler.Activate)
			users.POST("/:id/deactivate", auth.RequireLogin(), auth.RequirePermission("user.update"), userHandler.Deactivate)
			users.POST("/:id/reset-password", auth.RequireLogin(), auth.RequirePermissionOrOwner("user.update", selfLookup), userHandler.ResetPassword)

			// 用户角色管理（需要角色分配权限）
			users.POST("/:id/roles", auth.RequireLogin(), auth.RequirePermission("role.assign"), userHandler.AssignRole)
			users.DELETE("/:id/roles/:role_code", auth.RequireLogin(), auth.RequirePermission("role.assign"), userHandler.RemoveRole)
			users.GET("/:id/roles", auth.RequireLogin(), auth.RequirePermissionOrOwner("role.assign", selfLookup), userHandler.GetRoles)
			users.GET("/:id/permissions", auth.RequireLogin(), auth.RequirePermissionOrOwner("role.assign", selfLookup), userHandler.GetPermissions)
			users.GET("/:id/check-permission", auth.RequireLogin(), auth.RequirePermissionOrOwner("role.assign", selfLookup), userHandler.CheckPermission)
		}

		// 角色路由（添加权限保护）
		roleHandler := handlers.NewRoleHandler(roleService)
		roles := api.Group("/roles")
		{
			// 基础CRUD（需要角色管理权限）
			roles.POST("", auth.RequireLogin(), auth.RequirePermission("role.create"), roleHandler.Create)
			roles.GET("", auth.RequireLogin(), auth.RequirePermission("role.list"), roleHandler.GetAll)
			roles.GET("/:id", auth.RequireLogin(), auth.RequirePermission("role.read"), roleHandler.GetByID)
			roles.PUT("/:id", auth.RequireLogin(), auth.RequirePermission("role.update"), roleHandler.Update)
			roles.DELETE("/:id", auth.RequireLogin(), auth.RequirePermission("role.delete"), roleHandler.Delete)

			// 权限授予（整组替换）
			roles.PUT("/:id/permissions", auth.RequireLogin(), auth.RequirePermission("role.update"), roleHandler.SetPermissions)
			roles.GET("/:id/permissions", auth.RequireLogin(), auth.RequirePermission("role.read"), roleHandler.GetPermissions)
		}

		// 权限路由（部分保护）
		permissionHandler := handlers.NewPermissionHandler(permissionService)
		permissions := api.Group("/permissions")
		{
			// 公开查看（任何人都可以查看有哪些权限）
			permissions.GET("", permissionHandler.GetAll)
			permissions.GET("/module/:module", permissionHandler.GetByModule)

			// 目录管理（需要系统管理权限）
			permissions.GET("/paged", auth.RequireLogin(), auth.RequirePermission(models.PermissionSystemManage), permissionHandler.GetAllPaged)
			permissions.POST("", auth.RequireLogin(), auth.RequirePermission(models.PermissionSystemManage), permissionHandler.Create)
			permissions.POST("/:id/deactivate", auth.RequireLogin(), auth.RequirePermission(models.PermissionSystemManage), permissionHandler.Deactivate)
			permissions.POST("/:id/activate", auth.RequireLogin(), auth.RequirePermission(models.PermissionSystemManage), permissionHandler.Activate)
		}

		// 线路路由（添加权限保护）
		routeHandler := handlers.NewRouteHandler(routeService)
		routes := api.Group("/routes")
		{
			// 公开查看
			routes.GET("", routeHandler.GetAll)
			routes.GET("/:id", routeHandler.GetByID)

			// 管理操作（需要线路管理权限，或资源属主）
			routes.POST("", auth.RequireLogin(), auth.RequirePermission("route.create"), routeHandler.Create)
			routes.PUT("/:id", auth.RequireLogin(), auth.RequirePermissionOrOwner("route.update", routeService.GetOwnerID), routeHandler.Update)
			routes.POST("/:id/publish", auth.RequireLogin(), auth.RequirePermission("route.manage"), routeHandler.Publish)
			routes.DELETE("/:id", auth.RequireLogin(), auth.RequirePermission("route.delete"), routeHandler.Delete)
		}

		// 消息路由（登录 + 属主保护）
		messageHandler := handlers.NewMessageHandler(messageService)
		messages := api.Group("/messages")
		{
			messages.POST("", auth.RequireLogin(), auth.RequirePermission("message.create"), messageHandler.Create)
			messages.GET("", auth.RequireLogin(), messageHandler.GetMine)
			messages.GET("/:id", auth.RequireLogin(), auth.RequireOwnership(messageService.GetOwnerID, true), messageHandler.GetByID)
			messages.POST("/:id/read", auth.RequireLogin(), auth.RequireOwnership(messageService.GetOwnerID, false), messageHandler.MarkRead)
			messages.DELETE("/:id", auth.RequireLogin(), auth.RequireOwnership(messageService.GetOwnerID, true), messageHandler.Delete)
		}

		// 游客报名路由（登录 + 属主保护）
		registrationHandler := handlers.NewTouristRegistrationHandler(registrationService)
		registrations := api.Group("/tourist-registrations")
		{
			registrations.POST("", auth.RequireLogin(), registrationHandler.Create)
			registrations.GET("", auth.RequireLogin(), registrationHandler.GetMine)
			registrations.GET("/:id", auth.RequireLogin(), auth.RequirePermissionOrOwner("tourist_registration.read", registrationService.GetOwnerID), registrationHandler.GetByID)
			registrations.POST("/:id/cancel", auth.RequireLogin(), auth.RequireOwnership(registrationService.GetOwnerID, true), registrationHandler.Cancel)
			registrations.PUT("/:id/status", auth.RequireLogin(), auth.RequirePermission("tourist_registration.update"), registrationHandler.UpdateStatus)
			registrations.DELETE("/:id", auth.RequireLogin(), auth.RequirePermission("tourist_registration.delete"), registrationHandler.Delete)
		}

		// 语音导览路由
		voiceGuideHandler := handlers.NewVoiceGuideHandler(voiceGuideService)
		voiceGuides := api.Group("/voice-guides")
		{
			// 公开查看
			voiceGuides.GET("", voiceGuideHandler.GetByRoute)
			voiceGuides.GET("/:id", voiceGuideHandler.GetByID)
			voiceGuides.GET("/external/:external_id", voiceGuideHandler.GetByExternalID)

			// 管理操作（需要导游及以上角色）
			voiceGuides.POST("", auth.RequireLogin(), auth.RequireRole(models.RoleGuide, models.RoleModerator, models.RoleAdmin, models.RoleSuperAdmin), voiceGuideHandler.Create)
			voiceGuides.PUT("/:id", auth.RequireLogin(), auth.RequirePermissionOrOwner("voice_guide.update", voiceGuideService.GetOwnerID), voiceGuideHandler.Update)
			voiceGuides.DELETE("/:id", auth.RequireLogin(), auth.RequirePermission("voice_guide.delete"), voiceGuideHandler.Delete)
		}

		// WebSocket路由（消息实时推送）
		wsHandler := handlers.NewWebSocketHandler(hub, userService)
		ws := api.Group("/ws")
		{
			// WebSocket连接不能使用常规的中间件，认证通过query参数处理
			ws.GET("/messages", wsHandler.MessageStream)
		}
	}
}

// 资源ID即用户ID（用户类接口的属主判断）
func selfLookup(resourceID uint) (uint, error) {
	return resourceID, nil
}

func healthCheck(c *gin.Context) {
	data := map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
		"service":   "AccessNav",
		"version":   "1.0.0",
	}
	response.Success(c, data)
}

func ping(c *gin.Context) {
	response.SuccessWithMessage(c, "pong", nil)
}
