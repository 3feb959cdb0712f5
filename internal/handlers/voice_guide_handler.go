package handlers

import (
	"strconv"

	"accessnav/internal/services"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
)

type VoiceGuideRequest struct {
	RouteID    uint           `json:"route_id" binding:"required"`
	Locale     string         `json:"locale"`
	Title      string         `json:"title" binding:"required"`
	Transcript string         `json:"transcript"`
	Media      datatypes.JSON `json:"media"`
}

type VoiceGuideHandler struct {
	service *services.VoiceGuideService
}

func NewVoiceGuideHandler(service *services.VoiceGuideService) *VoiceGuideHandler {
	return &VoiceGuideHandler{service: service}
}

// Create 创建语音导览
func (h *VoiceGuideHandler) Create(c *gin.Context) {
	var req VoiceGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	guide, err := h.service.Create(services.CreateVoiceGuideParams{
		RouteID:    req.RouteID,
		Locale:     req.Locale,
		Title:      req.Title,
		Transcript: req.Transcript,
		Media:      req.Media,
	}, c.GetUint("user_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, guide)
}

// GetByRoute 获取线路下的语音导览列表
func (h *VoiceGuideHandler) GetByRoute(c *gin.Context) {
	routeID, err := strconv.ParseUint(c.Query("route_id"), 10, 32)
	if err != nil {
		response.BadRequest(c, "无效的线路ID")
		return
	}

	guides, err := h.service.GetByRoute(uint(routeID), c.Query("locale"))
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	response.Success(c, guides)
}

// GetByID 获取语音导览详情
func (h *VoiceGuideHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	guide, err := h.service.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, guide)
}

// GetByExternalID 根据外部标识获取语音导览
func (h *VoiceGuideHandler) GetByExternalID(c *gin.Context) {
	guide, err := h.service.GetByExternalID(c.Param("external_id"))
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, guide)
}

// Update 更新语音导览
func (h *VoiceGuideHandler) Update(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req VoiceGuideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	guide, err := h.service.Update(id, services.CreateVoiceGuideParams{
		RouteID:    req.RouteID,
		Locale:     req.Locale,
		Title:      req.Title,
		Transcript: req.Transcript,
		Media:      req.Media,
	})
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, guide)
}

// Delete 删除语音导览
func (h *VoiceGuideHandler) Delete(c *gin.Context) {
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
