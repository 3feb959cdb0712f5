package handlers

import (
	"accessnav/internal/services"
	"accessnav/pkg/pagination"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateRoleRequest struct {
	Code            string   `json:"code" binding:"required"`
	Name            string   `json:"name" binding:"required"`
	Description     string   `json:"description"`
	PermissionCodes []string `json:"permission_codes"`
}

type UpdateRoleRequest struct {
	Name            *string   `json:"name"`
	Description     *string   `json:"description"`
	PermissionCodes *[]string `json:"permission_codes"` // 非nil时整体替换
}

type SetPermissionsRequest struct {
	PermissionCodes []string `json:"permission_codes" binding:"required"`
}

type RoleHandler struct {
	service *services.RoleService
}

func NewRoleHandler(service *services.RoleService) *RoleHandler {
	return &RoleHandler{
		service: service,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建角色
func (h *RoleHandler) Create(c *gin.Context) {
	var req CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	operatorID := c.GetUint("user_id")
	role, err := h.service.Create(req.Code, req.Name, req.Description, req.PermissionCodes, &operatorID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, role)
}

// GetAll 分页获取角色列表，支持关键字与启用状态筛选
func (h *RoleHandler) GetAll(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	keyword := c.Query("keyword")

	var isActive *bool
	if s := c.Query("is_active"); s != "" {
		active := s == "true"
		isActive = &active
	}

	roles, total, err := h.service.GetWithPage(keyword, isActive, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, roles, pageInfo)
}

// GetByID 获取角色详情
func (h *RoleHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	role, err := h.service.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, role)
}

// Update 更新角色
func (h *RoleHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	operatorID := c.GetUint("user_id")
	role, err := h.service.Update(id, services.UpdateRoleParams{
		Name:            req.Name,
		Description:     req.Description,
		PermissionCodes: req.PermissionCodes,
	}, &operatorID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, role)
}

// Delete 删除角色
func (h *RoleHandler) Delete(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		response.HandleError(c, err)
		return
	}

	response.SuccessWithMessage(c, "删除成功", nil)
}

// ========== 权限管理方法 ==========

// SetPermissions 整体替换角色的权限集
func (h *RoleHandler) SetPermissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req SetPermissionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	operatorID := c.GetUint("user_id")
	if err := h.service.SetPermissions(id, req.PermissionCodes, &operatorID); err != nil {
		response.HandleError(c, err)
		return
	}

	role, err := h.service.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}
	response.Success(c, role)
}

// GetPermissions 获取角色的权限列表
func (h *RoleHandler) GetPermissions(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	permissions, err := h.service.GetPermissions(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, permissions)
}
