package services

import (
	"accessnav/internal/models"
	"accessnav/pkg/cache"
	"errors"
	"time"

	"gorm.io/gorm"
)

// ResolverService 权限解析器
// 用户的有效权限集 = 所有有效分配（is_active且未过期）指向的
// 启用角色的启用权限的并集。未知用户或无角色用户得到空集。
// 数据库状态不变时结果确定；缓存命中与否不影响结果，授权数据
// 的任何变更都会同步使缓存失效。
type ResolverService struct {
	db    *gorm.DB
	cache *cache.PermissionCache
}

func NewResolverService(db *gorm.DB, permCache *cache.PermissionCache) *ResolverService {
	return &ResolverService{
		db:    db,
		cache: permCache,
	}
}

// GetEffectivePermissions 计算用户的有效权限集（去重、按code排序）
func (s *ResolverService) GetEffectivePermissions(userID uint) ([]string, error) {
	var gen cache.Generation
	if s.cache != nil {
		cached, g, ok := s.cache.Get(userID)
		if ok {
			return cached, nil
		}
		gen = g
	}

	codes, err := s.queryEffectivePermissions(userID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		// 在未命中时读到的代数下回填，期间发生的失效使其不可见
		s.cache.Set(userID, codes, gen)
	}
	return codes, nil
}

// HasPermission 检查用户是否持有指定权限
// 调用方必须把错误按拒绝处理（fail closed），绝不默认放行。
func (s *ResolverService) HasPermission(userID uint, permissionCode string) (bool, error) {
	if s.cache != nil {
		if codes, _, ok := s.cache.Get(userID); ok {
			for _, code := range codes {
				if code == permissionCode {
					return true, nil
				}
			}
			return false, nil
		}
	}

	// 缓存未命中时直接做存在性查询，避免拉全集
	var count int64
	err := s.effectiveQuery(userID).
		Where("permissions.code = ?", permissionCode).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetRoleCodes 获取用户通过有效分配持有的角色code列表
func (s *ResolverService) GetRoleCodes(userID uint) ([]string, error) {
	var codes []string
	err := s.db.Model(&models.Role{}).
		Distinct().
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("roles.is_active = ?", true).
		Where("user_roles.user_id = ? AND user_roles.is_active = ?", userID, true).
		Where("user_roles.expires_at IS NULL OR user_roles.expires_at > ?", time.Now()).
		Order("roles.code").
		Pluck("roles.code", &codes).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	return codes, nil
}

// HasRole 检查用户是否通过RBAC分配持有指定角色之一
func (s *ResolverService) HasRole(userID uint, roleCodes ...string) (bool, error) {
	if len(roleCodes) == 0 {
		return false, nil
	}

	var count int64
	err := s.db.Model(&models.UserRole{}).
		Joins("JOIN roles ON roles.id = user_roles.role_id AND roles.is_active = ?", true).
		Where("user_roles.user_id = ? AND user_roles.is_active = ?", userID, true).
		Where("user_roles.expires_at IS NULL OR user_roles.expires_at > ?", time.Now()).
		Where("roles.code IN ?", roleCodes).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *ResolverService) queryEffectivePermissions(userID uint) ([]string, error) {
	var codes []string
	err := s.effectiveQuery(userID).
		Distinct().
		Order("permissions.code").
		Pluck("permissions.code", &codes).Error
	if err != nil {
		return nil, err
	}
	if codes == nil {
		codes = []string{}
	}
	return codes, nil
}

// effectiveQuery 有效权限的基础连接查询
func (s *ResolverService) effectiveQuery(userID uint) *gorm.DB {
	return s.db.Model(&models.Permission{}).
		Joins("JOIN role_permissions ON role_permissions.permission_id = permissions.id").
		Joins("JOIN roles ON roles.id = role_permissions.role_id AND roles.is_active = ?", true).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("permissions.is_active = ?", true).
		Where("user_roles.user_id = ? AND user_roles.is_active = ?", userID, true).
		Where("user_roles.expires_at IS NULL OR user_roles.expires_at > ?", time.Now())
}
