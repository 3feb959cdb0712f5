package handlers

import (
	"time"

	"accessnav/internal/services"
	"accessnav/pkg/pagination"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type CreateRegistrationRequest struct {
	RouteID   uint           `json:"route_id" binding:"required"`
	VisitDate time.Time      `json:"visit_date" binding:"required"`
	PartySize int            `json:"party_size" binding:"required,min=1"`
	Details   datatypes.JSON `json:"details"`
}

type UpdateRegistrationStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type TouristRegistrationHandler struct {
	service *services.TouristRegistrationService
}

func NewTouristRegistrationHandler(service *services.TouristRegistrationService) *TouristRegistrationHandler {
	return &TouristRegistrationHandler{service: service}
}

// Create 创建报名登记
func (h *TouristRegistrationHandler) Create(c *gin.Context) {
	var req CreateRegistrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	reg, err := h.service.Create(c.GetUint("user_id"), req.RouteID, req.VisitDate, req.PartySize, req.Details)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, reg)
}

// GetMine 分页获取本人的报名记录
func (h *TouristRegistrationHandler) GetMine(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	status := c.Query("status")

	regs, total, err := h.service.GetByUserWithPage(c.GetUint("user_id"), status, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, regs, pageInfo)
}

// GetByID 获取报名详情
func (h *TouristRegistrationHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	reg, err := h.service.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, reg)
}

// UpdateStatus 更新报名状态（管理端）
func (h *TouristRegistrationHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req UpdateRegistrationStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	reg, err := h.service.UpdateStatus(id, req.Status)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, reg)
}

// Cancel 取消报名
func (h *TouristRegistrationHandler) Cancel(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	reg, err := h.service.Cancel(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, reg)
}

// Delete 删除报名记录
func (h *TouristRegistrationHandler) Delete(c *gin.Context) {
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
