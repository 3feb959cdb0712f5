package handlers

import (
	"accessnav/internal/services"
	"accessnav/pkg/pagination"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
)

type CreateMessageRequest struct {
	UserID  uint   `json:"user_id" binding:"required"`
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Kind    string `json:"kind"`
}

type MessageHandler struct {
	service *services.MessageService
}

func NewMessageHandler(service *services.MessageService) *MessageHandler {
	return &MessageHandler{service: service}
}

// Create 发送消息
func (h *MessageHandler) Create(c *gin.Context) {
	var req CreateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	senderID := c.GetUint("user_id")
	message, err := h.service.Create(req.UserID, req.Title, req.Content, req.Kind, &senderID)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, message)
}

// GetMine 分页获取本人消息
func (h *MessageHandler) GetMine(c *gin.Context) {
	pageParams := pagination.ParsePageParams(c)
	unreadOnly := c.Query("unread") == "true"

	userID := c.GetUint("user_id")
	messages, total, err := h.service.GetByUserWithPage(userID, unreadOnly, pageParams.Page, pageParams.PageSize)
	if err != nil {
		response.ServerError(c, "查询失败")
		return
	}

	pageInfo := pagination.NewPageInfo(pageParams.Page, pageParams.PageSize, total)
	response.SuccessWithPage(c, messages, pageInfo)
}

// GetByID 获取消息详情
func (h *MessageHandler) GetByID(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	message, err := h.service.GetByID(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, message)
}

// MarkRead 标记消息已读
func (h *MessageHandler) MarkRead(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	message, err := h.service.MarkRead(id)
	if err != nil {
		response.HandleError(c, err)
		return
	}

	response.Success(c, message)
}

// Delete 删除消息
func (h *MessageHandler) Delete(c *gin.Context) {
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
