package services

import (
	"accessnav/internal/models"
	"accessnav/pkg/logger"
	"sync"

	"github.com/gorilla/websocket"
)

// MessageHub 消息推送中心
// 按用户维护websocket连接，新消息落库后立即推送给在线接收者。
// 写失败即断开该连接，下一次请求由客户端重连。
type MessageHub struct {
	mu      sync.RWMutex
	clients map[uint]map[*websocket.Conn]bool
}

func NewMessageHub() *MessageHub {
	return &MessageHub{
		clients: make(map[uint]map[*websocket.Conn]bool),
	}
}

// Register 注册用户连接
func (h *MessageHub) Register(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*websocket.Conn]bool)
	}
	h.clients[userID][conn] = true
}

// Unregister 注销用户连接
func (h *MessageHub) Unregister(userID uint, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[userID]; ok {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(h.clients, userID)
		}
	}
}

// Push 向接收者的所有在线连接推送消息
func (h *MessageHub) Push(message *models.Message) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0)
	for conn := range h.clients[message.UserID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		if err := conn.WriteJSON(message); err != nil {
			logger.GetLogger().Warnf("Failed to push message to user %d: %v", message.UserID, err)
			conn.Close()
			h.Unregister(message.UserID, conn)
		}
	}
}

// OnlineCount 在线连接数（监控用）
func (h *MessageHub) OnlineCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}
