package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User 用户模型
// Role 为RBAC上线前遗留的单角色字段，与多角色分配并行存在：
// 角色门检查时两套机制取或，任一命中即放行，永不合并。
type User struct {
	BaseModel
	Username     string     `json:"username" gorm:"unique;not null;size:50;index"`
	Email        string     `json:"email" gorm:"unique;not null;size:100;index"`
	PasswordHash string     `json:"-" gorm:"not null;size:255"`
	Name         string     `json:"name" gorm:"not null;size:100"`
	Phone        *string    `json:"phone" gorm:"size:20"`
	Role         string     `json:"role" gorm:"size:20;default:'user'"` // 旧版单角色
	Status       string     `json:"status" gorm:"default:'active';size:20"`
	LastLoginAt  *time.Time `json:"last_login_at"`

	// 多对多关联（RBAC）
	Roles []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// TableName 表名
func (u *User) TableName() string {
	return "users"
}

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
	UserStatusLocked   = "locked"
)

// 旧版角色取值（小而固定的枚举）
var LegacyRoles = []string{RoleUser, RoleGuide, RoleModerator, RoleAdmin, RoleSuperAdmin}

// IsLegacyAdmin 旧版角色是否为管理员
func (u *User) IsLegacyAdmin() bool {
	return u.Role == RoleAdmin || u.Role == RoleSuperAdmin
}

// SetPassword 设置密码 - 数据操作方法
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword 验证密码 - 数据操作方法
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}
