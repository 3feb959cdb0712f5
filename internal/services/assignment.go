package services

import (
	"accessnav/internal/models"
	"accessnav/pkg/cache"
	apperrors "accessnav/pkg/errors"
	"errors"
	"time"

	"gorm.io/gorm"
)

// AssignmentService 用户角色分配
// 同一（用户，角色）只允许一条记录，移除只翻转is_active，
// 重新分配复用原记录，保证审计链路连续。
type AssignmentService struct {
	db    *gorm.DB
	cache *cache.PermissionCache
}

func NewAssignmentService(db *gorm.DB, permCache *cache.PermissionCache) *AssignmentService {
	return &AssignmentService{
		db:    db,
		cache: permCache,
	}
}

// AssignRole 为用户分配角色
// 处理顺序：按code查启用角色 → 查既有分配记录 →
// 非活跃或已过期则复活并刷新审计字段 → 活跃则冲突 → 否则新建。
func (s *AssignmentService) AssignRole(userID uint, roleCode string, assignedBy *uint, expiresAt *time.Time) (*models.UserRole, error) {
	var role models.Role
	err := s.db.Where("code = ? AND is_active = ?", roleCode, true).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("角色不存在")
		}
		return nil, err
	}

	var assignment models.UserRole
	err = s.db.Where("user_id = ? AND role_id = ?", userID, role.ID).First(&assignment).Error
	if err == nil {
		// 已过期的记录即便清理任务尚未翻转is_active也按非活跃处理
		expired := assignment.ExpiresAt != nil && !assignment.ExpiresAt.After(time.Now())
		if assignment.IsActive && !expired {
			return nil, apperrors.NewConflictError("用户已拥有该角色")
		}
		// 复用历史记录，刷新分配人与分配时间。条件更新保证
		// 并发复活只有一方成功，落败方按冲突处理。
		now := time.Now()
		result := s.db.Model(&models.UserRole{}).
			Where("id = ? AND (is_active = ? OR (expires_at IS NOT NULL AND expires_at <= ?))",
				assignment.ID, false, now).
			Updates(map[string]interface{}{
				"is_active":   true,
				"assigned_by": assignedBy,
				"assigned_at": now,
				"expires_at":  expiresAt,
			})
		if result.Error != nil {
			return nil, result.Error
		}
		if result.RowsAffected == 0 {
			return nil, apperrors.NewConflictError("用户已拥有该角色")
		}

		assignment.IsActive = true
		assignment.AssignedBy = assignedBy
		assignment.AssignedAt = now
		assignment.ExpiresAt = expiresAt
		s.invalidate(userID)
		return &assignment, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	assignment = models.UserRole{
		UserID:     userID,
		RoleID:     role.ID,
		IsActive:   true,
		AssignedBy: assignedBy,
		AssignedAt: time.Now(),
		ExpiresAt:  expiresAt,
	}
	if err := s.db.Create(&assignment).Error; err != nil {
		// 并发分配竞态由(user_id, role_id)唯一索引兜底
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflictError("用户已拥有该角色")
		}
		return nil, err
	}

	s.invalidate(userID)
	return &assignment, nil
}

// RemoveRole 移除用户的角色（逻辑删除）
func (s *AssignmentService) RemoveRole(userID uint, roleCode string) error {
	var role models.Role
	err := s.db.Where("code = ?", roleCode).First(&role).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("角色不存在")
		}
		return err
	}

	var assignment models.UserRole
	err = s.db.Where("user_id = ? AND role_id = ? AND is_active = ?", userID, role.ID, true).
		First(&assignment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("用户没有该角色")
		}
		return err
	}

	assignment.IsActive = false
	if err := s.db.Save(&assignment).Error; err != nil {
		return err
	}

	s.invalidate(userID)
	return nil
}

// ListActive 获取用户当前有效的分配记录
// 过期判定在读取时内联完成：expires_at已过的记录即便
// is_active仍为true也不返回，不依赖后台清理任务。
func (s *AssignmentService) ListActive(userID uint) ([]models.UserRole, error) {
	var assignments []models.UserRole
	err := s.db.Where("user_id = ? AND is_active = ?", userID, true).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("assigned_at").
		Find(&assignments).Error
	return assignments, err
}

// CountActiveByRole 统计角色的活跃分配数量
func (s *AssignmentService) CountActiveByRole(roleID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.UserRole{}).
		Where("role_id = ? AND is_active = ?", roleID, true).
		Count(&count).Error
	return count, err
}

// DeactivateExpired 批量翻转已过期分配的is_active
// 仅用于审计数据对账，解析器的过期判定始终内联进行。
func (s *AssignmentService) DeactivateExpired() (int64, error) {
	result := s.db.Model(&models.UserRole{}).
		Where("is_active = ? AND expires_at IS NOT NULL AND expires_at <= ?", true, time.Now()).
		Update("is_active", false)
	if result.Error != nil {
		return 0, result.Error
	}

	if result.RowsAffected > 0 && s.cache != nil {
		s.cache.Invalidate()
	}
	return result.RowsAffected, nil
}

func (s *AssignmentService) invalidate(userID uint) {
	if s.cache != nil {
		s.cache.InvalidateUser(userID)
	}
}
