package services

import (
	"testing"

	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoleService_Create(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)
	createTestPermissions(t, db, "route.read", "route.list")

	role, err := svc.Create("volunteer", "志愿者", "协助出行的志愿者", []string{"route.read", "route.list"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "volunteer", role.Code)
	assert.False(t, role.IsSystem)
	assert.True(t, role.IsActive)
	assert.Len(t, role.Permissions, 2)
}

func TestRoleService_Create_DuplicateCode(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)

	_, err := svc.Create("volunteer", "志愿者", "", nil, nil)
	require.NoError(t, err)

	_, err = svc.Create("volunteer", "志愿者二号", "", nil, nil)
	var conflictErr *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestRoleService_Create_UnknownPermission(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)
	createTestPermissions(t, db, "route.read")

	_, err := svc.Create("volunteer", "志愿者", "", []string{"route.read", "no.such"}, nil)
	var notFoundErr *apperrors.NotFoundError
	require.ErrorAs(t, err, &notFoundErr)

	// 事务回滚，角色不应残留
	_, err = svc.GetByCode("volunteer")
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestRoleService_Update_SystemRoleRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)

	role, err := svc.FindOrCreate(models.RoleAdmin, "平台管理员", "", true)
	require.NoError(t, err)

	name := "改名"
	_, err = svc.Update(role.ID, UpdateRoleParams{Name: &name}, nil)
	var invalidErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestRoleService_Delete_SystemRoleRejected(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)

	role, err := svc.FindOrCreate(models.RoleAdmin, "平台管理员", "", true)
	require.NoError(t, err)

	err = svc.Delete(role.ID)
	var invalidErr *apperrors.InvalidOperationError
	assert.ErrorAs(t, err, &invalidErr)
}

func TestRoleService_Delete_WithActiveAssignments(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)
	assignSvc := NewAssignmentService(db, nil)
	user := createTestUser(t, db, "alice")

	role, err := svc.Create("volunteer", "志愿者", "", nil, nil)
	require.NoError(t, err)

	_, err = assignSvc.AssignRole(user.ID, "volunteer", nil, nil)
	require.NoError(t, err)

	// 仍有活跃分配，拒绝删除
	err = svc.Delete(role.ID)
	var conflictErr *apperrors.ConflictError
	require.ErrorAs(t, err, &conflictErr)

	// 移除分配后可删（历史记录不阻止）
	require.NoError(t, assignSvc.RemoveRole(user.ID, "volunteer"))
	require.NoError(t, svc.Delete(role.ID))

	_, err = svc.GetByID(role.ID)
	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestRoleService_SetPermissions_FullReplacement(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)
	createTestPermissions(t, db, "route.read", "route.list", "message.read")

	role, err := svc.Create("volunteer", "志愿者", "", []string{"route.read", "route.list"}, nil)
	require.NoError(t, err)

	// 整体替换：旧授权全部移除
	require.NoError(t, svc.SetPermissions(role.ID, []string{"message.read"}, nil))

	perms, err := svc.GetPermissions(role.ID)
	require.NoError(t, err)
	require.Len(t, perms, 1)
	assert.Equal(t, "message.read", perms[0].Code)
}

func TestRoleService_SetPermissions_Empty(t *testing.T) {
	db := setupTestDB(t)
	svc := NewRoleService(db, nil)
	createTestPermissions(t, db, "route.read")

	role, err := svc.Create("volunteer", "志愿者", "", []string{"route.read"}, nil)
	require.NoError(t, err)

	require.NoError(t, svc.SetPermissions(role.ID, nil, nil))

	perms, err := svc.GetPermissions(role.ID)
	require.NoError(t, err)
	assert.Empty(t, perms)
}

func TestRoleService_ValidateCode(t *testing.T) {
	svc := NewRoleService(nil, nil)

	assert.True(t, svc.ValidateCode("volunteer_2"))
	assert.False(t, svc.ValidateCode("v"))
	assert.False(t, svc.ValidateCode("bad-code"))
	assert.False(t, svc.ValidateCode("带中文"))
}
