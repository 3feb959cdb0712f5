package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupResolverTest(t *testing.T) (*gorm.DB, *ResolverService, uint) {
	t.Helper()

	db := setupTestDB(t)
	createTestPermissions(t, db, "route.read", "route.list", "message.read")

	roleSvc := NewRoleService(db, nil)
	_, err := roleSvc.Create("reader", "读者", "", []string{"route.read", "route.list"}, nil)
	require.NoError(t, err)
	_, err = roleSvc.Create("messenger", "信使", "", []string{"message.read", "route.read"}, nil)
	require.NoError(t, err)

	user := createTestUser(t, db, "alice")
	assignSvc := NewAssignmentService(db, nil)
	_, err = assignSvc.AssignRole(user.ID, "reader", nil, nil)
	require.NoError(t, err)
	_, err = assignSvc.AssignRole(user.ID, "messenger", nil, nil)
	require.NoError(t, err)

	return db, NewResolverService(db, nil), user.ID
}

func TestResolver_EffectivePermissions_Union(t *testing.T) {
	_, resolver, userID := setupResolverTest(t)

	// 两个角色的权限取并集，route.read只出现一次，按code排序
	codes, err := resolver.GetEffectivePermissions(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"message.read", "route.list", "route.read"}, codes)
}

func TestResolver_EffectivePermissions_UnknownUser(t *testing.T) {
	_, resolver, _ := setupResolverTest(t)

	codes, err := resolver.GetEffectivePermissions(424242)
	require.NoError(t, err)
	assert.NotNil(t, codes)
	assert.Empty(t, codes)
}

func TestResolver_HasPermission(t *testing.T) {
	_, resolver, userID := setupResolverTest(t)

	has, err := resolver.HasPermission(userID, "message.read")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = resolver.HasPermission(userID, "user.delete")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestResolver_InactiveRoleExcluded(t *testing.T) {
	db, resolver, userID := setupResolverTest(t)

	// 直接停用角色，解析结果立即收缩
	require.NoError(t, db.Table("roles").Where("code = ?", "messenger").
		Update("is_active", false).Error)

	codes, err := resolver.GetEffectivePermissions(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"route.list", "route.read"}, codes)
}

func TestResolver_DeactivatedPermissionExcluded(t *testing.T) {
	db, resolver, userID := setupResolverTest(t)

	permSvc := NewPermissionService(db, nil)
	perm, err := permSvc.GetByCode("route.read")
	require.NoError(t, err)
	_, err = permSvc.Deactivate(perm.ID)
	require.NoError(t, err)

	codes, err := resolver.GetEffectivePermissions(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"message.read", "route.list"}, codes)

	has, err := resolver.HasPermission(userID, "route.read")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestResolver_ExpiredAssignmentExcluded(t *testing.T) {
	db, resolver, userID := setupResolverTest(t)

	// 把messenger的分配改为已过期，不等后台清扫
	expired := time.Now().Add(-time.Minute)
	require.NoError(t, db.Table("user_roles").
		Where("user_id = ?", userID).
		Where("role_id IN (?)", db.Table("roles").Select("id").Where("code = ?", "messenger")).
		Update("expires_at", expired).Error)

	codes, err := resolver.GetEffectivePermissions(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"route.list", "route.read"}, codes)
}

func TestResolver_GetRoleCodes(t *testing.T) {
	_, resolver, userID := setupResolverTest(t)

	codes, err := resolver.GetRoleCodes(userID)
	require.NoError(t, err)
	assert.Equal(t, []string{"messenger", "reader"}, codes)
}

func TestResolver_HasRole(t *testing.T) {
	_, resolver, userID := setupResolverTest(t)

	has, err := resolver.HasRole(userID, "reader", "admin")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = resolver.HasRole(userID, "admin")
	require.NoError(t, err)
	assert.False(t, has)

	has, err = resolver.HasRole(userID)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestResolver_CacheInvalidation(t *testing.T) {
	db := setupTestDB(t)
	permCache := setupTestCache(t)
	createTestPermissions(t, db, "route.read", "message.read")

	roleSvc := NewRoleService(db, permCache)
	_, err := roleSvc.Create("reader", "读者", "", []string{"route.read"}, nil)
	require.NoError(t, err)

	user := createTestUser(t, db, "bob")
	assignSvc := NewAssignmentService(db, permCache)
	_, err = assignSvc.AssignRole(user.ID, "reader", nil, nil)
	require.NoError(t, err)

	resolver := NewResolverService(db, permCache)

	// 第一次解析落入缓存
	codes, err := resolver.GetEffectivePermissions(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"route.read"}, codes)

	// 授权变更同步失效缓存，下一次解析立即看到新集合
	role, err := roleSvc.GetByCode("reader")
	require.NoError(t, err)
	require.NoError(t, roleSvc.SetPermissions(role.ID, []string{"message.read"}, nil))

	codes, err = resolver.GetEffectivePermissions(user.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"message.read"}, codes)

	// 移除分配后立即退化为空集
	require.NoError(t, assignSvc.RemoveRole(user.ID, "reader"))
	codes, err = resolver.GetEffectivePermissions(user.ID)
	require.NoError(t, err)
	assert.Empty(t, codes)
}
