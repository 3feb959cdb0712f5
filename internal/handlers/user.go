package handlers

import (
	"accessnav/internal/services"
	"accessnav/pkg/pagination"
	"accessnav/pkg/response"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type CreateUserRequest struct {
	Username string  `json:"username" binding:"required"`
	Email    string  `json:"email" binding:"required,email"`
	Password string  `json:"password" binding:"required"`
	Name     string  `json:"name" binding:"required"`
	Phone    *string `json:"phone"`
	Role     string  `json:"role"` // 旧版单角色，缺省user
}

type UpdateUserRequest struct {
	Name  string  `json:"name" binding:"required"`
	Email string  `json:"email" binding:"required,email"`
	Phone *string `json:"phone"`
}

type ResetPasswordRequest struct {
	Password string `json:"password" binding:"required"`
}

type AssignRoleRequest struct {
	RoleCode  string     `json:"role_code" binding:"required"`
	ExpiresAt *time.Time `json:"expires_at"`
}

type UserHandler struct {
	userService       *services.UserService
	assignmentService *services.AssignmentService
	resolver          *services.ResolverService
}

func NewUserHandler(userService *services.UserService, assignmentService *services.AssignmentService, resolver *services.ResolverService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		assignmentService: assignmentService,
		resolver:          resolver,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.Create(req.Username, req.Email, req.Password, req.Name, req.Phone, req.Role)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, user)
}

// GetAll 分页获取用户列表
func (h *UserHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")
	keyword := c.Query("keyword")

	users, total, err := h.userService.GetWithPage(status, keyword, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, users, pageInfo)
}

// GetByID 获取用户详情
func (h *UserHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, user)
}

// Update 更新用户
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	user, err := h.userService.Update(id, req.Name, req.Email, req.Phone)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, user)
}

// Delete 删除用户
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.userService.Delete(id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// Activate 启用用户
func (h *UserHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Activate(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// Deactivate 停用用户
func (h *UserHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	user, err := h.userService.Deactivate(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, user)
}

// ResetPassword 重置密码
func (h *UserHandler) ResetPassword(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	if err := h.userService.ResetPassword(id, req.Password); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "密码重置成功", nil)
}

// ========== 角色分配管理 ==========

// AssignRole 为用户分配角色
func (h *UserHandler) AssignRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req AssignRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	// 确认目标用户存在
	if _, err := h.userService.GetByID(id); err != nil {
		response.HandleError(c, err)
		return
	}

	operatorID := c.GetUint("user_id")
	assignment, err := h.assignmentService.AssignRole(id, req.RoleCode, &operatorID, req.ExpiresAt)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, assignment)
}

// RemoveRole 移除用户的角色
func (h *UserHandler) RemoveRole(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roleCode := c.Param("role_code")
	if err := h.assignmentService.RemoveRole(id, roleCode); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "角色已移除", nil)
}

// GetRoles 获取用户的有效角色
func (h *UserHandler) GetRoles(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	roleCodes, err := h.resolver.GetRoleCodes(id)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, roleCodes)
}

// GetPermissions 获取用户的有效权限集
func (h *UserHandler) GetPermissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	permissions, err := h.resolver.GetEffectivePermissions(id)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}

// CheckPermission 检查用户是否持有指定权限
func (h *UserHandler) CheckPermission(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	code := c.Query("permission")
	if code == "" {
		response.BadRequest(c, "缺少permission参数")
		return
	}

	hasPermission, err := h.resolver.HasPermission(id, code)
	if err != nil {
		response.ServerError(c, "权限检查失败")
		return
	}

	response.Success(c, gin.H{
		"permission":     code,
		"has_permission": hasPermission,
	})
}

// parseIDParam 解析URL中的id参数
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "ID格式错误")
		return 0, false
	}
	return uint(id), true
}
