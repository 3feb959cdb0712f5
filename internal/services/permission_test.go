package services

import (
	"testing"

	apperrors "accessnav/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionService_Create_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db, nil)

	first, err := svc.Create("route.read", "查看线路", "route", "read", "")
	require.NoError(t, err)

	// 同code重复创建直接返回已有记录
	second, err := svc.Create("route.read", "查看线路（改名）", "route", "read", "")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "查看线路", second.Name)
}

func TestPermissionService_DeactivateActivate(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db, nil)

	perm, err := svc.Create("route.read", "查看线路", "route", "read", "")
	require.NoError(t, err)

	// 下线后不出现在启用列表，但记录仍在
	_, err = svc.Deactivate(perm.ID)
	require.NoError(t, err)

	active, err := svc.GetAll("", "")
	require.NoError(t, err)
	assert.Empty(t, active)

	got, err := svc.GetByCode("route.read")
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	// 重新启用
	_, err = svc.Activate(perm.ID)
	require.NoError(t, err)
	active, err = svc.GetAll("", "")
	require.NoError(t, err)
	assert.Len(t, active, 1)
}

func TestPermissionService_GetByCode_NotFound(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db, nil)

	_, err := svc.GetByCode("no.such")
	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestPermissionService_GetAll_Filters(t *testing.T) {
	db := setupTestDB(t)
	svc := NewPermissionService(db, nil)
	createTestPermissions(t, db, "route.read", "route.list", "message.read")

	routePerms, err := svc.GetAll("route", "")
	require.NoError(t, err)
	assert.Len(t, routePerms, 2)

	readPerms, err := svc.GetAll("", "read")
	require.NoError(t, err)
	assert.Len(t, readPerms, 2)
}
