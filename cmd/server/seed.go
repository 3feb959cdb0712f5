package main

import (
	"fmt"

	"accessnav/internal/database"
	"accessnav/internal/models"
	"accessnav/internal/services"
	"accessnav/pkg/logger"

	"gorm.io/gorm"
)

// seedData 初始化种子数据
func seedData() error {
	appLogger := logger.GetLogger()
	appLogger.Info("Starting seed data initialization...")

	db := database.GetDB()
	permCache := database.GetPermissionCache()

	// 1. 初始化RBAC默认策略（系统角色 + 权限目录 + 默认授权矩阵）
	bootstrap := services.NewRBACBootstrap(
		services.NewRoleService(db, permCache),
		services.NewPermissionService(db, permCache),
	)
	if err := bootstrap.InitializeRBAC(); err != nil {
		return fmt.Errorf("初始化RBAC策略失败: %v", err)
	}

	// 2. 创建默认管理员用户
	if err := createDefaultAdmin(db); err != nil {
		return fmt.Errorf("创建默认管理员失败: %v", err)
	}

	appLogger.Info("Seed data initialization completed successfully")
	return nil
}

// createDefaultAdmin 创建默认管理员用户
func createDefaultAdmin(db *gorm.DB) error {
	var count int64
	db.Model(&models.User{}).Where("username = ?", "admin").Count(&count)
	if count > 0 {
		logger.GetLogger().Info("管理员用户已存在，跳过创建")
		return nil
	}

	user := &models.User{
		Username: "admin",
		Email:    "admin@example.com",
		Name:     "系统管理员",
		Status:   models.UserStatusActive,
		Role:     models.RoleSuperAdmin,
	}

	if err := user.SetPassword("Admin@123"); err != nil {
		return fmt.Errorf("设置密码失败: %v", err)
	}

	if err := db.Create(user).Error; err != nil {
		return err
	}

	// 分配超级管理员角色
	var role models.Role
	if err := db.Where("code = ?", models.RoleSuperAdmin).First(&role).Error; err == nil {
		userRole := &models.UserRole{
			UserID:   user.ID,
			RoleID:   role.ID,
			IsActive: true,
		}
		db.Create(userRole)
	}

	logger.GetLogger().Infof("默认管理员创建成功 - 用户名: admin, 密码: Admin@123")
	return nil
}
