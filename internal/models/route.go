package models

import "gorm.io/datatypes"

// Route 无障碍线路模型
// 途经点与无障碍属性为结构不固定的数据，存JSONB列
type Route struct {
	BaseModel
	Name          string         `json:"name" gorm:"not null;size:200"`
	Description   string         `json:"description" gorm:"size:1000"`
	City          string         `json:"city" gorm:"size:100;index"`
	Difficulty    string         `json:"difficulty" gorm:"size:20;default:'easy'"` // easy, medium, hard
	Wheelchair    bool           `json:"wheelchair" gorm:"default:false"`          // 是否轮椅可达
	DistanceM     int            `json:"distance_m"`                               // 线路长度（米）
	Waypoints     datatypes.JSON `json:"waypoints" gorm:"type:jsonb"`              // 途经点列表
	Accessibility datatypes.JSON `json:"accessibility" gorm:"type:jsonb"`          // 无障碍属性
	CreatedBy     uint           `json:"created_by" gorm:"not null;index"`         // 归属检查的owner字段
	IsPublished   bool           `json:"is_published" gorm:"default:false"`
}

// 线路难度常量
const (
	RouteDifficultyEasy   = "easy"
	RouteDifficultyMedium = "medium"
	RouteDifficultyHard   = "hard"
)
