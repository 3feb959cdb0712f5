package models

// Message 个性化消息模型
type Message struct {
	BaseModel
	UserID  uint   `json:"user_id" gorm:"not null;index"` // 接收者，归属检查的owner字段
	Title   string `json:"title" gorm:"not null;size:200"`
	Content string `json:"content" gorm:"not null;size:2000"`
	Kind    string `json:"kind" gorm:"size:20;default:'notice'"` // notice, route_update, system
	IsRead  bool   `json:"is_read" gorm:"default:false"`
	SentBy  *uint  `json:"sent_by"` // 发送者，系统消息为空
}

// 消息类型常量
const (
	MessageKindNotice      = "notice"
	MessageKindRouteUpdate = "route_update"
	MessageKindSystem      = "system"
)
