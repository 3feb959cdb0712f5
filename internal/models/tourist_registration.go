package models

import (
	"time"

	"gorm.io/datatypes"
)

// TouristRegistration 游客登记模型
type TouristRegistration struct {
	BaseModel
	UserID           uint           `json:"user_id" gorm:"not null;index"` // 登记人，归属检查的owner字段
	RouteID          uint           `json:"route_id" gorm:"not null;index"`
	ConfirmationCode string         `json:"confirmation_code" gorm:"uniqueIndex;size:36;not null"` // UUID确认码
	VisitDate        time.Time      `json:"visit_date" gorm:"not null"`
	PartySize        int            `json:"party_size" gorm:"default:1"`
	Status           string         `json:"status" gorm:"size:20;default:'pending'"` // pending, confirmed, cancelled
	Details          datatypes.JSON `json:"details" gorm:"type:jsonb"`               // 特殊需求等自由结构信息

	Route *Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`
}

// 登记状态常量
const (
	RegistrationStatusPending   = "pending"
	RegistrationStatusConfirmed = "confirmed"
	RegistrationStatusCancelled = "cancelled"
)
