package services

import (
	"accessnav/internal/models"
	"accessnav/pkg/cache"
	apperrors "accessnav/pkg/errors"
	"errors"

	"gorm.io/gorm"
)

// PermissionService 权限目录
// 权限一经引用不再物理删除，只通过is_active下线，
// 保证历史授权记录的引用完整。
type PermissionService struct {
	db    *gorm.DB
	cache *cache.PermissionCache
}

func NewPermissionService(db *gorm.DB, permCache *cache.PermissionCache) *PermissionService {
	return &PermissionService{
		db:    db,
		cache: permCache,
	}
}

// ========== 基础CRUD方法 ==========

// Create 创建权限（按code幂等，已存在则直接返回）
func (s *PermissionService) Create(code, name, module, action, description string) (*models.Permission, error) {
	var existing models.Permission
	err := s.db.Where("code = ?", code).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	permission := &models.Permission{
		Code:        code,
		Name:        name,
		Description: description,
		Module:      module,
		Action:      action,
		IsActive:    true,
	}

	if err := s.db.Create(permission).Error; err != nil {
		// 并发创建同code权限时回查已有记录
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("code = ?", code).First(&existing).Error; err != nil {
				return nil, err
			}
			return &existing, nil
		}
		return nil, err
	}
	return permission, nil
}

// GetByID 根据ID获取权限
func (s *PermissionService) GetByID(id uint) (*models.Permission, error) {
	var permission models.Permission
	err := s.db.First(&permission, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("权限不存在")
	}
	return &permission, err
}

// GetByCode 根据code获取权限
func (s *PermissionService) GetByCode(code string) (*models.Permission, error) {
	var permission models.Permission
	err := s.db.Where("code = ?", code).First(&permission).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("权限不存在")
	}
	return &permission, err
}

// GetAll 获取启用中的权限，按（资源，操作）排序
func (s *PermissionService) GetAll(module, action string) ([]*models.Permission, error) {
	var permissions []*models.Permission

	query := s.db.Model(&models.Permission{}).Where("is_active = ?", true)
	if module != "" {
		query = query.Where("module = ?", module)
	}
	if action != "" {
		query = query.Where("action = ?", action)
	}

	err := query.Order("module, action").Find(&permissions).Error
	return permissions, err
}

// GetWithPage 分页获取权限（管理端，含停用权限）
func (s *PermissionService) GetWithPage(module string, page, pageSize int) ([]*models.Permission, int64, error) {
	var permissions []*models.Permission
	var total int64

	query := s.db.Model(&models.Permission{})
	if module != "" {
		query = query.Where("module = ?", module)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("module, action").Offset(offset).Limit(pageSize).Find(&permissions).Error
	if err != nil {
		return nil, 0, err
	}

	return permissions, total, nil
}

// Deactivate 下线权限，解析器立即不再返回该权限
func (s *PermissionService) Deactivate(id uint) (*models.Permission, error) {
	var permission models.Permission
	if err := s.db.First(&permission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("权限不存在")
		}
		return nil, err
	}

	permission.IsActive = false
	if err := s.db.Save(&permission).Error; err != nil {
		return nil, err
	}

	// 授权数据变更，同步失效全部权限缓存
	if s.cache != nil {
		s.cache.Invalidate()
	}
	return &permission, nil
}

// Activate 重新启用权限
func (s *PermissionService) Activate(id uint) (*models.Permission, error) {
	var permission models.Permission
	if err := s.db.First(&permission, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("权限不存在")
		}
		return nil, err
	}

	permission.IsActive = true
	if err := s.db.Save(&permission).Error; err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return &permission, nil
}
