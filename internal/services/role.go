package services

import (
	"accessnav/internal/models"
	"accessnav/pkg/cache"
	apperrors "accessnav/pkg/errors"
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"
)

// RoleService 角色注册表
type RoleService struct {
	db    *gorm.DB
	cache *cache.PermissionCache
}

func NewRoleService(db *gorm.DB, permCache *cache.PermissionCache) *RoleService {
	return &RoleService{
		db:    db,
		cache: permCache,
	}
}

// UpdateRoleParams 更新角色的可选字段，nil表示不修改
type UpdateRoleParams struct {
	Name            *string
	Description     *string
	PermissionCodes *[]string // 非nil时整体替换角色的权限集
}

// ========== 基础CRUD方法 ==========

// Create 创建自定义角色，code重复返回ConflictError
func (s *RoleService) Create(code, name, description string, permissionCodes []string, createdBy *uint) (*models.Role, error) {
	if err := s.ValidateCreateParams(code, name); err != nil {
		return nil, err
	}

	var count int64
	if err := s.db.Model(&models.Role{}).Where("code = ?", code).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewConflictError("角色代码已存在")
	}

	role := &models.Role{
		Code:        code,
		Name:        name,
		Description: description,
		IsActive:    true,
		IsSystem:    false,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(role).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.NewConflictError("角色代码已存在")
			}
			return err
		}
		if len(permissionCodes) > 0 {
			return s.replacePermissions(tx, role.ID, permissionCodes, createdBy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return s.GetByID(role.ID)
}

// FindOrCreate 按code查找角色，不存在则创建
func (s *RoleService) FindOrCreate(code, name, description string, isSystem bool) (*models.Role, error) {
	var role models.Role
	err := s.db.Where("code = ?", code).First(&role).Error
	if err == nil {
		return &role, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	role = models.Role{
		Code:        code,
		Name:        name,
		Description: description,
		IsActive:    true,
		IsSystem:    isSystem,
	}
	if err := s.db.Create(&role).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("code = ?", code).First(&role).Error; err != nil {
				return nil, err
			}
			return &role, nil
		}
		return nil, err
	}
	return &role, nil
}

// GetByID 根据ID获取角色（含权限）
func (s *RoleService) GetByID(id uint) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").First(&role, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("角色不存在")
	}
	return &role, err
}

// GetByCode 根据code获取角色
func (s *RoleService) GetByCode(code string) (*models.Role, error) {
	var role models.Role
	err := s.db.Preload("Permissions").Where("code = ?", code).First(&role).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("角色不存在")
	}
	return &role, err
}

// GetWithPage 分页获取角色，支持code/名称模糊搜索与启用状态筛选
func (s *RoleService) GetWithPage(keyword string, isActive *bool, page, pageSize int) ([]*models.Role, int64, error) {
	var roles []*models.Role
	var total int64

	query := s.db.Model(&models.Role{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	if isActive != nil {
		query = query.Where("is_active = ?", *isActive)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Permissions").Order("id").Offset(offset).Limit(pageSize).Find(&roles).Error
	if err != nil {
		return nil, 0, err
	}

	return roles, total, nil
}

// Update 更新自定义角色，系统角色拒绝任何修改
func (s *RoleService) Update(id uint, params UpdateRoleParams, updatedBy *uint) (*models.Role, error) {
	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFoundError("角色不存在")
		}
		return nil, err
	}

	if role.IsSystem {
		return nil, apperrors.NewInvalidOperationError("系统角色不允许修改")
	}

	if params.Name != nil {
		if !s.ValidateName(*params.Name) {
			return nil, apperrors.NewInvalidOperationError("角色名称长度必须在2-50个字符之间")
		}
		role.Name = *params.Name
	}
	if params.Description != nil {
		role.Description = *params.Description
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&role).Error; err != nil {
			return err
		}
		if params.PermissionCodes != nil {
			return s.replacePermissions(tx, role.ID, *params.PermissionCodes, updatedBy)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return s.GetByID(role.ID)
}

// Delete 删除自定义角色
// 系统角色拒绝删除；仍有活跃分配时返回ConflictError并报告数量。
// 历史（非活跃）分配保留审计痕迹，不阻止删除。
func (s *RoleService) Delete(id uint) error {
	var role models.Role
	if err := s.db.First(&role, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("角色不存在")
		}
		return err
	}

	if role.IsSystem {
		return apperrors.NewInvalidOperationError("系统角色不允许删除")
	}

	var activeCount int64
	if err := s.db.Model(&models.UserRole{}).
		Where("role_id = ? AND is_active = ?", role.ID, true).
		Count(&activeCount).Error; err != nil {
		return err
	}
	if activeCount > 0 {
		return apperrors.NewConflictError(fmt.Sprintf("角色仍被 %d 个用户使用，无法删除", activeCount))
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", role.ID).Delete(&models.RolePermission{}).Error; err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return nil
}

// ========== 权限管理方法 ==========

// SetPermissions 整体替换角色的权限集
// 同一事务内删除旧授权、批量插入新授权，对外不提供增量接口，
// 避免部分更新竞态。系统角色的权限集允许在此替换（引导流程依赖）。
func (s *RoleService) SetPermissions(roleID uint, permissionCodes []string, grantedBy *uint) error {
	var role models.Role
	if err := s.db.First(&role, roleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NewNotFoundError("角色不存在")
		}
		return err
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		return s.replacePermissions(tx, role.ID, permissionCodes, grantedBy)
	})
	if err != nil {
		return err
	}

	if s.cache != nil {
		s.cache.Invalidate()
	}
	return nil
}

// GetPermissions 获取角色的权限列表
func (s *RoleService) GetPermissions(roleID uint) ([]models.Permission, error) {
	role, err := s.GetByID(roleID)
	if err != nil {
		return nil, err
	}
	return role.Permissions, nil
}

// replacePermissions 在事务内执行授权整体替换
func (s *RoleService) replacePermissions(tx *gorm.DB, roleID uint, permissionCodes []string, grantedBy *uint) error {
	var permissions []models.Permission
	if len(permissionCodes) > 0 {
		if err := tx.Where("code IN ?", permissionCodes).Find(&permissions).Error; err != nil {
			return err
		}
		if len(permissions) != len(dedupe(permissionCodes)) {
			return apperrors.NewNotFoundError("部分权限不存在")
		}
	}

	if err := tx.Where("role_id = ?", roleID).Delete(&models.RolePermission{}).Error; err != nil {
		return err
	}

	if len(permissions) == 0 {
		return nil
	}

	grants := make([]models.RolePermission, 0, len(permissions))
	for _, perm := range permissions {
		grants = append(grants, models.RolePermission{
			RoleID:       roleID,
			PermissionID: perm.ID,
			GrantedBy:    grantedBy,
		})
	}
	return tx.Create(&grants).Error
}

func dedupe(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	result := make([]string, 0, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		result = append(result, code)
	}
	return result
}

// ========== 验证方法 ==========

// ValidateCode 验证角色代码
func (s *RoleService) ValidateCode(code string) bool {
	if len(code) < 2 || len(code) > 50 {
		return false
	}
	// 只允许字母、数字和下划线
	for _, r := range code {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '_') {
			return false
		}
	}
	return true
}

// ValidateName 验证角色名称
func (s *RoleService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// ValidateCreateParams 验证创建角色的参数
func (s *RoleService) ValidateCreateParams(code, name string) error {
	if !s.ValidateCode(code) {
		return apperrors.NewInvalidOperationError("角色代码长度必须在2-50个字符之间，且只能包含字母、数字和下划线")
	}
	if !s.ValidateName(name) {
		return apperrors.NewInvalidOperationError("角色名称长度必须在2-50个字符之间")
	}
	return nil
}
