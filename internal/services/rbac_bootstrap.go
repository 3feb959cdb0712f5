package services

import (
	"accessnav/internal/models"
	"accessnav/pkg/logger"
	"fmt"
)

// RBACBootstrap 默认授权策略引导
// 三个幂等步骤：建系统角色 → 建权限目录 → 替换系统角色的权限集。
// 可任意次重跑，不产生重复数据，不触碰自定义角色与既有分配。
type RBACBootstrap struct {
	roleService       *RoleService
	permissionService *PermissionService
}

func NewRBACBootstrap(roleService *RoleService, permissionService *PermissionService) *RBACBootstrap {
	return &RBACBootstrap{
		roleService:       roleService,
		permissionService: permissionService,
	}
}

// systemRoleDef 系统角色定义
type systemRoleDef struct {
	Code        string
	Name        string
	Description string
}

// permissionDef 权限定义
type permissionDef struct {
	Code        string
	Name        string
	Module      string
	Action      string
	Description string
}

// 系统角色表
var systemRoles = []systemRoleDef{
	{models.RoleSuperAdmin, "超级管理员", "系统最高权限管理员"},
	{models.RoleAdmin, "平台管理员", "平台日常运营管理员"},
	{models.RoleModerator, "内容审核员", "负责消息与登记内容审核"},
	{models.RoleGuide, "无障碍向导", "维护线路与语音导览"},
	{models.RoleUser, "普通用户", "平台注册用户"},
}

// 默认权限目录
var defaultPermissions = []permissionDef{
	// 用户管理
	{"user.create", "创建用户", "user", "create", "创建新用户"},
	{"user.read", "查看用户", "user", "read", "查看用户信息"},
	{"user.update", "更新用户", "user", "update", "更新用户信息"},
	{"user.delete", "删除用户", "user", "delete", "删除用户"},
	{"user.list", "用户列表", "user", "list", "查看用户列表"},

	// 角色管理
	{"role.create", "创建角色", "role", "create", "创建新角色"},
	{"role.read", "查看角色", "role", "read", "查看角色信息"},
	{"role.update", "更新角色", "role", "update", "更新角色信息"},
	{"role.delete", "删除角色", "role", "delete", "删除角色"},
	{"role.list", "角色列表", "role", "list", "查看角色列表"},
	{"role.assign", "分配角色", "role", "assign", "给用户分配或移除角色"},

	// 权限管理
	{"permission.read", "查看权限", "permission", "read", "查看权限信息"},
	{"permission.list", "权限列表", "permission", "list", "查看权限列表"},
	{"permission.assign", "分配权限", "permission", "assign", "给角色分配权限"},

	// 无障碍线路
	{"route.create", "创建线路", "route", "create", "创建无障碍线路"},
	{"route.read", "查看线路", "route", "read", "查看线路详情"},
	{"route.update", "更新线路", "route", "update", "更新线路信息"},
	{"route.delete", "删除线路", "route", "delete", "删除线路"},
	{"route.list", "线路列表", "route", "list", "查看线路列表"},
	{"route.manage", "管理线路", "route", "manage", "管理全部线路（含他人创建）"},

	// 个性化消息
	{"message.create", "发送消息", "message", "create", "发送个性化消息"},
	{"message.read", "查看消息", "message", "read", "查看消息详情"},
	{"message.update", "更新消息", "message", "update", "更新消息"},
	{"message.delete", "删除消息", "message", "delete", "删除消息"},
	{"message.list", "消息列表", "message", "list", "查看消息列表"},

	// 游客登记
	{"tourist_registration.create", "创建登记", "tourist_registration", "create", "创建游客登记"},
	{"tourist_registration.read", "查看登记", "tourist_registration", "read", "查看登记详情"},
	{"tourist_registration.update", "更新登记", "tourist_registration", "update", "更新登记状态"},
	{"tourist_registration.delete", "删除登记", "tourist_registration", "delete", "删除登记"},
	{"tourist_registration.list", "登记列表", "tourist_registration", "list", "查看登记列表"},

	// 语音导览
	{"voice_guide.create", "创建导览", "voice_guide", "create", "创建语音导览"},
	{"voice_guide.read", "查看导览", "voice_guide", "read", "查看导览详情"},
	{"voice_guide.update", "更新导览", "voice_guide", "update", "更新导览信息"},
	{"voice_guide.delete", "删除导览", "voice_guide", "delete", "删除导览"},
	{"voice_guide.list", "导览列表", "voice_guide", "list", "查看导览列表"},

	// 系统管理
	{models.PermissionSystemManage, "系统管理", "system", "manage", "管理员兜底权限，可跳过资源归属检查"},
}

// defaultRolePolicy 系统角色的默认权限矩阵（角色code → 权限code列表）。
// super_admin不在表内，引导时直接获得全部启用权限。
// 策略调整改这张表即可，不碰执行路径代码。
var defaultRolePolicy = map[string][]string{
	models.RoleAdmin: {
		models.PermissionSystemManage,
		"user.create", "user.read", "user.update", "user.delete", "user.list",
		"role.read", "role.list", "role.assign",
		"permission.read", "permission.list",
		"route.create", "route.read", "route.update", "route.delete", "route.list", "route.manage",
		"message.create", "message.read", "message.update", "message.delete", "message.list",
		"tourist_registration.create", "tourist_registration.read", "tourist_registration.update",
		"tourist_registration.delete", "tourist_registration.list",
		"voice_guide.create", "voice_guide.read", "voice_guide.update", "voice_guide.delete", "voice_guide.list",
	},
	models.RoleModerator: {
		"message.create", "message.read", "message.update", "message.delete", "message.list",
		"route.read", "route.list",
		"tourist_registration.read", "tourist_registration.update", "tourist_registration.list",
	},
	models.RoleGuide: {
		"route.create", "route.read", "route.update", "route.delete", "route.list",
		"voice_guide.create", "voice_guide.read", "voice_guide.update", "voice_guide.delete", "voice_guide.list",
	},
	models.RoleUser: {
		"route.read", "route.list",
		"message.read", "message.list",
		"voice_guide.read", "voice_guide.list",
		"tourist_registration.create", "tourist_registration.read",
	},
}

// InitializeRBAC 执行引导流程
func (b *RBACBootstrap) InitializeRBAC() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Initializing RBAC defaults...")

	// 1. 系统角色
	for _, def := range systemRoles {
		if _, err := b.roleService.FindOrCreate(def.Code, def.Name, def.Description, true); err != nil {
			return fmt.Errorf("创建系统角色 %s 失败: %v", def.Code, err)
		}
	}

	// 2. 权限目录
	for _, def := range defaultPermissions {
		if _, err := b.permissionService.Create(def.Code, def.Name, def.Module, def.Action, def.Description); err != nil {
			return fmt.Errorf("创建权限 %s 失败: %v", def.Code, err)
		}
	}

	// 3. 替换系统角色的权限集
	allActive, err := b.permissionService.GetAll("", "")
	if err != nil {
		return fmt.Errorf("加载权限目录失败: %v", err)
	}
	fullCatalog := make([]string, 0, len(allActive))
	for _, perm := range allActive {
		fullCatalog = append(fullCatalog, perm.Code)
	}

	for _, def := range systemRoles {
		role, err := b.roleService.GetByCode(def.Code)
		if err != nil {
			return fmt.Errorf("加载系统角色 %s 失败: %v", def.Code, err)
		}

		codes, ok := defaultRolePolicy[def.Code]
		if !ok {
			// 表外角色（super_admin）获得全部启用权限
			codes = fullCatalog
		}
		if err := b.roleService.SetPermissions(role.ID, codes, nil); err != nil {
			return fmt.Errorf("设置角色 %s 权限失败: %v", def.Code, err)
		}
	}

	appLogger.Info("RBAC defaults initialized")
	return nil
}
