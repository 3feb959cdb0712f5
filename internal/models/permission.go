package models

// Permission 权限模型
type Permission struct {
	BaseModel
	Code        string `gorm:"uniqueIndex;size:100;not null" json:"code"` // 权限代码，如 "route.create"
	Name        string `gorm:"size:100;not null" json:"name"`             // 权限名称，如 "创建线路"
	Description string `gorm:"size:255" json:"description"`               // 权限描述
	Module      string `gorm:"size:50;not null" json:"module"`            // 所属资源，如 "route", "message"
	Action      string `gorm:"size:50;not null" json:"action"`            // 操作类型，如 "create", "read"
	IsActive    bool   `gorm:"default:true" json:"is_active"`             // 停用后立即退出权限解析，不做物理删除
}

// 权限模块常量
const (
	ModuleUser         = "user"                 // 用户管理
	ModuleRole         = "role"                 // 角色管理
	ModulePermission   = "permission"           // 权限管理
	ModuleRoute        = "route"                // 无障碍线路
	ModuleMessage      = "message"              // 个性化消息
	ModuleRegistration = "tourist_registration" // 游客登记
	ModuleVoiceGuide   = "voice_guide"          // 语音导览
	ModuleSystem       = "system"               // 系统管理
)

// 权限操作常量
const (
	ActionCreate = "create" // 创建
	ActionRead   = "read"   // 读取
	ActionUpdate = "update" // 更新
	ActionDelete = "delete" // 删除
	ActionList   = "list"   // 列表
	ActionAssign = "assign" // 分配
	ActionManage = "manage" // 管理
)

// PermissionSystemManage 管理员兜底权限，持有者可跳过资源归属检查
const PermissionSystemManage = "system.manage"
