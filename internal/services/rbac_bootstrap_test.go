package services

import (
	"testing"

	"accessnav/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBootstrap_InitializeRBAC(t *testing.T) {
	db := setupTestDB(t)
	roleSvc := NewRoleService(db, nil)
	permSvc := NewPermissionService(db, nil)

	bootstrap := NewRBACBootstrap(roleSvc, permSvc)
	require.NoError(t, bootstrap.InitializeRBAC())

	// 系统角色齐备
	for _, code := range []string{models.RoleSuperAdmin, models.RoleAdmin, models.RoleModerator, models.RoleGuide, models.RoleUser} {
		role, err := roleSvc.GetByCode(code)
		require.NoError(t, err)
		assert.True(t, role.IsSystem)
		assert.True(t, role.IsActive)
	}

	// super_admin获得全部启用权限
	allActive, err := permSvc.GetAll("", "")
	require.NoError(t, err)
	superAdmin, err := roleSvc.GetByCode(models.RoleSuperAdmin)
	require.NoError(t, err)
	assert.Len(t, superAdmin.Permissions, len(allActive))

	// 普通用户只有自助权限，没有管理权限
	user, err := roleSvc.GetByCode(models.RoleUser)
	require.NoError(t, err)
	userCodes := make(map[string]bool)
	for _, perm := range user.Permissions {
		userCodes[perm.Code] = true
	}
	assert.True(t, userCodes["route.read"])
	assert.True(t, userCodes["tourist_registration.create"])
	assert.False(t, userCodes["user.delete"])
	assert.False(t, userCodes[models.PermissionSystemManage])
}

func TestBootstrap_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	roleSvc := NewRoleService(db, nil)
	permSvc := NewPermissionService(db, nil)
	bootstrap := NewRBACBootstrap(roleSvc, permSvc)

	require.NoError(t, bootstrap.InitializeRBAC())

	var roleCount, permCount, grantCount int64
	db.Model(&models.Role{}).Count(&roleCount)
	db.Model(&models.Permission{}).Count(&permCount)
	db.Model(&models.RolePermission{}).Count(&grantCount)

	// 重跑不产生重复数据
	require.NoError(t, bootstrap.InitializeRBAC())

	var roleCount2, permCount2, grantCount2 int64
	db.Model(&models.Role{}).Count(&roleCount2)
	db.Model(&models.Permission{}).Count(&permCount2)
	db.Model(&models.RolePermission{}).Count(&grantCount2)

	assert.Equal(t, roleCount, roleCount2)
	assert.Equal(t, permCount, permCount2)
	assert.Equal(t, grantCount, grantCount2)
}

func TestBootstrap_PreservesCustomRoles(t *testing.T) {
	db := setupTestDB(t)
	roleSvc := NewRoleService(db, nil)
	permSvc := NewPermissionService(db, nil)
	bootstrap := NewRBACBootstrap(roleSvc, permSvc)

	require.NoError(t, bootstrap.InitializeRBAC())

	// 两次引导之间创建的自定义角色与授权不受影响
	custom, err := roleSvc.Create("volunteer", "志愿者", "", []string{"route.read", "route.list"}, nil)
	require.NoError(t, err)

	require.NoError(t, bootstrap.InitializeRBAC())

	reloaded, err := roleSvc.GetByID(custom.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsSystem)
	assert.Len(t, reloaded.Permissions, 2)
}

func TestBootstrap_PreservesAssignments(t *testing.T) {
	db := setupTestDB(t)
	roleSvc := NewRoleService(db, nil)
	permSvc := NewPermissionService(db, nil)
	bootstrap := NewRBACBootstrap(roleSvc, permSvc)
	require.NoError(t, bootstrap.InitializeRBAC())

	user := createTestUser(t, db, "alice")
	assignSvc := NewAssignmentService(db, nil)
	_, err := assignSvc.AssignRole(user.ID, models.RoleGuide, nil, nil)
	require.NoError(t, err)

	require.NoError(t, bootstrap.InitializeRBAC())

	active, err := assignSvc.ListActive(user.ID)
	require.NoError(t, err)
	assert.Len(t, active, 1)
}
