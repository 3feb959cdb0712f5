package services

import (
	"testing"
	"time"

	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAssignmentTest(t *testing.T) (*AssignmentService, *RoleService, *models.User) {
	t.Helper()

	db := setupTestDB(t)
	roleSvc := NewRoleService(db, nil)
	_, err := roleSvc.Create("volunteer", "志愿者", "", nil, nil)
	require.NoError(t, err)

	return NewAssignmentService(db, nil), roleSvc, createTestUser(t, db, "alice")
}

func TestAssignmentService_AssignRole(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	operator := uint(99)
	assignment, err := svc.AssignRole(user.ID, "volunteer", &operator, nil)
	require.NoError(t, err)
	assert.True(t, assignment.IsActive)
	assert.Equal(t, operator, *assignment.AssignedBy)
	assert.Nil(t, assignment.ExpiresAt)
}

func TestAssignmentService_AssignRole_Duplicate(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	_, err := svc.AssignRole(user.ID, "volunteer", nil, nil)
	require.NoError(t, err)

	_, err = svc.AssignRole(user.ID, "volunteer", nil, nil)
	var conflictErr *apperrors.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestAssignmentService_AssignRole_UnknownRole(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	_, err := svc.AssignRole(user.ID, "no_such_role", nil, nil)
	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestAssignmentService_RemoveRole_NotAssigned(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	err := svc.RemoveRole(user.ID, "volunteer")
	var notFoundErr *apperrors.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestAssignmentService_ReassignReusesRecord(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	first, err := svc.AssignRole(user.ID, "volunteer", nil, nil)
	require.NoError(t, err)

	require.NoError(t, svc.RemoveRole(user.ID, "volunteer"))

	// 移除后记录保留，重新分配复活同一条
	operator := uint(7)
	second, err := svc.AssignRole(user.ID, "volunteer", &operator, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.True(t, second.IsActive)
	assert.Equal(t, operator, *second.AssignedBy)
}

func TestAssignmentService_ReassignExpiredBeforeSweep(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	expired := time.Now().Add(-time.Hour)
	first, err := svc.AssignRole(user.ID, "volunteer", nil, &expired)
	require.NoError(t, err)

	// 清理任务尚未翻转is_active，分配已过期即视为非活跃
	active, err := svc.ListActive(user.ID)
	require.NoError(t, err)
	assert.Empty(t, active)

	// 重新分配必须复活记录而不是报冲突
	operator := uint(7)
	future := time.Now().Add(time.Hour)
	second, err := svc.AssignRole(user.ID, "volunteer", &operator, &future)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, operator, *second.AssignedBy)

	active, err = svc.ListActive(user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, future.Unix(), active[0].ExpiresAt.Unix())
}

func TestAssignmentService_ListActive_InlineExpiry(t *testing.T) {
	svc, roleSvc, user := setupAssignmentTest(t)

	_, err := roleSvc.Create("helper", "帮手", "", nil, nil)
	require.NoError(t, err)

	expired := time.Now().Add(-time.Hour)
	_, err = svc.AssignRole(user.ID, "volunteer", nil, &expired)
	require.NoError(t, err)

	future := time.Now().Add(time.Hour)
	_, err = svc.AssignRole(user.ID, "helper", nil, &future)
	require.NoError(t, err)

	// 过期分配即便is_active仍为true也不返回
	active, err := svc.ListActive(user.ID)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, future.Unix(), active[0].ExpiresAt.Unix())
}

func TestAssignmentService_DeactivateExpired(t *testing.T) {
	svc, _, user := setupAssignmentTest(t)

	expired := time.Now().Add(-time.Hour)
	_, err := svc.AssignRole(user.ID, "volunteer", nil, &expired)
	require.NoError(t, err)

	swept, err := svc.DeactivateExpired()
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	// 再跑一次应无事可做
	swept, err = svc.DeactivateExpired()
	require.NoError(t, err)
	assert.Zero(t, swept)
}
