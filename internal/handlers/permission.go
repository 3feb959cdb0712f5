package handlers

import (
	"accessnav/internal/services"
	"accessnav/pkg/pagination"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreatePermissionRequest struct {
	Code        string `json:"code" binding:"required,permcode"`
	Name        string `json:"name" binding:"required"`
	Module      string `json:"module" binding:"required"`
	Action      string `json:"action" binding:"required"`
	Description string `json:"description"`
}

type PermissionHandler struct {
	service *services.PermissionService
}

func NewPermissionHandler(service *services.PermissionService) *PermissionHandler {
	return &PermissionHandler{
		service: service,
	}
}

// GetAll 获取启用中的权限，支持module/action筛选
func (h *PermissionHandler) GetAll(c *gin.Context) {
	module := c.Query("module")
	action := c.Query("action")

	permissions, err := h.service.GetAll(module, action)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}

// GetByModule 按模块获取权限
func (h *PermissionHandler) GetByModule(c *gin.Context) {
	module := c.Param("module")

	permissions, err := h.service.GetAll(module, "")
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, permissions)
}

// GetAllPaged 管理端分页列表（含停用权限）
func (h *PermissionHandler) GetAllPaged(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	module := c.Query("module")

	permissions, total, err := h.service.GetWithPage(module, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, permissions, pageInfo)
}

// Create 创建权限（幂等）
func (h *PermissionHandler) Create(c *gin.Context) {
	var req CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误：权限code须为 resource.action 格式")
		return
	}

	permission, err := h.service.Create(req.Code, req.Name, req.Module, req.Action, req.Description)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, permission)
}

// Deactivate 下线权限
func (h *PermissionHandler) Deactivate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	permission, err := h.service.Deactivate(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, permission)
}

// Activate 重新启用权限
func (h *PermissionHandler) Activate(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	permission, err := h.service.Activate(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, permission)
}
