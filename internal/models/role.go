package models

import "time"

// Role 角色模型
type Role struct {
	BaseModel
	Code        string `gorm:"uniqueIndex;size:100;not null" json:"code"` // 角色代码，如 "guide"
	Name        string `gorm:"size:100;not null" json:"name"`             // 角色名称，如 "无障碍向导"
	Description string `gorm:"size:255" json:"description"`               // 角色描述
	IsSystem    bool   `gorm:"default:false" json:"is_system"`            // 系统角色不可删除、不可改名
	IsActive    bool   `gorm:"default:true" json:"is_active"`             // 停用后其权限不再参与解析

	// 关联关系
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

// 系统预定义角色常量（与旧版用户单角色字段共用同一套取值）
const (
	RoleSuperAdmin = "super_admin" // 超级管理员
	RoleAdmin      = "admin"       // 平台管理员
	RoleModerator  = "moderator"   // 内容审核员
	RoleGuide      = "guide"       // 无障碍向导
	RoleUser       = "user"        // 普通用户
)

// RolePermission 角色权限授权表
// 角色的权限集编辑采用整体替换语义：同一事务内删除旧授权行、
// 批量插入新授权行，不提供增量增删。
type RolePermission struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	RoleID       uint      `gorm:"not null;uniqueIndex:idx_role_permission" json:"role_id"`
	PermissionID uint      `gorm:"not null;uniqueIndex:idx_role_permission" json:"permission_id"`
	GrantedBy    *uint     `json:"granted_by"` // 谁授予的权限
	CreatedAt    time.Time `json:"created_at"`
}

// UserRole 用户角色分配表
// (user_id, role_id) 由复合唯一索引保证唯一，并发分配竞态由
// 存储层约束兜底。移除角色仅翻转 is_active，保留审计痕迹。
type UserRole struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     uint       `gorm:"not null;uniqueIndex:idx_user_role" json:"user_id"`
	RoleID     uint       `gorm:"not null;uniqueIndex:idx_user_role" json:"role_id"`
	IsActive   bool       `gorm:"default:true;index" json:"is_active"`
	AssignedBy *uint      `json:"assigned_by"` // 谁分配的角色
	AssignedAt time.Time  `json:"assigned_at"`
	ExpiresAt  *time.Time `json:"expires_at"` // 过期后即便is_active仍为true也视为无效
}
