package models

import "gorm.io/datatypes"

// VoiceGuide 语音导览模型
// 只保存元数据记录，音频文件的存储与转码不在本系统内
type VoiceGuide struct {
	BaseModel
	ExternalID string         `json:"external_id" gorm:"uniqueIndex;size:36;not null"` // UUID外部标识
	RouteID    uint           `json:"route_id" gorm:"not null;index"`
	Locale     string         `json:"locale" gorm:"size:10;not null;default:'zh-CN'"`
	Title      string         `json:"title" gorm:"not null;size:200"`
	Transcript string         `json:"transcript" gorm:"type:text"`
	Media      datatypes.JSON `json:"media" gorm:"type:jsonb"` // 音频地址、时长、格式等元数据
	CreatedBy  uint           `json:"created_by" gorm:"not null;index"`
	IsActive   bool           `json:"is_active" gorm:"default:true"`

	Route *Route `gorm:"foreignKey:RouteID" json:"route,omitempty"`
}
