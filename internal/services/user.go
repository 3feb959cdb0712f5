package services

import (
	"accessnav/internal/models"
	apperrors "accessnav/pkg/errors"
	"errors"
	"regexp"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// ========== 基础CRUD方法 ==========

// Create 创建用户，旧版角色字段缺省为user
func (s *UserService) Create(username, email, password, name string, phone *string, legacyRole string) (*models.User, error) {
	if err := s.ValidateCreateParams(username, email, password, name); err != nil {
		return nil, err
	}
	if legacyRole == "" {
		legacyRole = models.RoleUser
	}
	if !s.IsValidLegacyRole(legacyRole) {
		return nil, apperrors.NewInvalidOperationError("非法的角色取值")
	}

	var count int64
	if err := s.db.Model(&models.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, apperrors.NewConflictError("用户名或邮箱已存在")
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Name:     name,
		Phone:    phone,
		Role:     legacyRole,
		Status:   models.UserStatusActive,
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}

	if err := s.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflictError("用户名或邮箱已存在")
		}
		return nil, err
	}
	return user, nil
}

// GetByID 根据ID获取用户
func (s *UserService) GetByID(id uint) (*models.User, error) {
	var user models.User
	err := s.db.First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("用户不存在")
	}
	return &user, err
}

// GetByUsername 根据用户名获取用户
func (s *UserService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	err := s.db.Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewNotFoundError("用户不存在")
	}
	return &user, err
}

// GetWithPage 分页获取用户，支持状态筛选与关键字搜索
func (s *UserService) GetWithPage(status, keyword string, page, pageSize int) ([]*models.User, int64, error) {
	var users []*models.User
	var total int64

	query := s.db.Model(&models.User{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("username LIKE ? OR email LIKE ? OR name LIKE ?", like, like, like)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Order("id").Offset(offset).Limit(pageSize).Find(&users).Error
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

// Update 更新用户基础信息
func (s *UserService) Update(id uint, name, email string, phone *string) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}

	if !s.ValidateName(name) {
		return nil, apperrors.NewInvalidOperationError("姓名长度必须在2-50个字符之间")
	}
	if !s.ValidateEmail(email) {
		return nil, apperrors.NewInvalidOperationError("邮箱格式错误")
	}

	user.Name = name
	user.Email = email
	user.Phone = phone

	if err := s.db.Save(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.NewConflictError("邮箱已被占用")
		}
		return nil, err
	}
	return user, nil
}

// Delete 删除用户
func (s *UserService) Delete(id uint) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}
	return s.db.Delete(user).Error
}

// Activate 启用用户
func (s *UserService) Activate(id uint) (*models.User, error) {
	return s.setStatus(id, models.UserStatusActive)
}

// Deactivate 停用用户
func (s *UserService) Deactivate(id uint) (*models.User, error) {
	return s.setStatus(id, models.UserStatusInactive)
}

// Lock 锁定用户
func (s *UserService) Lock(id uint) (*models.User, error) {
	return s.setStatus(id, models.UserStatusLocked)
}

func (s *UserService) setStatus(id uint, status string) (*models.User, error) {
	user, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	user.Status = status
	if err := s.db.Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// ResetPassword 重置密码
func (s *UserService) ResetPassword(id uint, newPassword string) error {
	user, err := s.GetByID(id)
	if err != nil {
		return err
	}
	if err := s.ValidatePassword(newPassword); err != nil {
		return err
	}
	if err := user.SetPassword(newPassword); err != nil {
		return err
	}
	return s.db.Save(user).Error
}

// UpdateLastLogin 记录最近登录时间
func (s *UserService) UpdateLastLogin(id uint) error {
	now := time.Now()
	return s.db.Model(&models.User{}).Where("id = ?", id).
		Update("last_login_at", &now).Error
}

// IsActive 用户是否可用
func (s *UserService) IsActive(user *models.User) bool {
	return user.Status == models.UserStatusActive
}

// ========== 验证方法 ==========

var (
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,50}$`)
	emailPattern    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
)

// ValidateUsername 验证用户名
func (s *UserService) ValidateUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

// ValidateEmail 验证邮箱
func (s *UserService) ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePassword 验证密码强度
func (s *UserService) ValidatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.NewInvalidOperationError("密码长度不能少于8位")
	}
	return nil
}

// ValidateName 验证姓名
func (s *UserService) ValidateName(name string) bool {
	runeCount := utf8.RuneCountInString(name)
	return runeCount >= 2 && runeCount <= 50
}

// IsValidLegacyRole 验证旧版角色取值
func (s *UserService) IsValidLegacyRole(role string) bool {
	for _, r := range models.LegacyRoles {
		if r == role {
			return true
		}
	}
	return false
}

// ValidateCreateParams 验证创建用户的参数
func (s *UserService) ValidateCreateParams(username, email, password, name string) error {
	if !s.ValidateUsername(username) {
		return apperrors.NewInvalidOperationError("用户名长度必须在3-50个字符之间，且只能包含字母、数字和下划线")
	}
	if !s.ValidateEmail(email) {
		return apperrors.NewInvalidOperationError("邮箱格式错误")
	}
	if err := s.ValidatePassword(password); err != nil {
		return err
	}
	if !s.ValidateName(name) {
		return apperrors.NewInvalidOperationError("姓名长度必须在2-50个字符之间")
	}
	return nil
}
