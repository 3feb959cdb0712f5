package services

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"accessnav/internal/models"
	"accessnav/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB 创建独立的SQLite测试库并完成迁移
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Permission{},
		&models.Role{},
		&models.RolePermission{},
		&models.UserRole{},
		&models.Route{},
		&models.Message{},
		&models.TouristRegistration{},
		&models.VoiceGuide{},
	)
	require.NoError(t, err)

	return db
}

// setupTestCache 基于miniredis创建权限缓存
func setupTestCache(t *testing.T) *cache.PermissionCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return cache.NewPermissionCache(client, &cache.Config{
		Prefix: "test",
		TTL:    time.Minute,
	})
}

// createTestUser 创建测试用户
func createTestUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     "测试用户" + username,
		Status:   models.UserStatusActive,
		Role:     models.RoleUser,
	}
	require.NoError(t, user.SetPassword("Test@123"))
	require.NoError(t, db.Create(user).Error)
	return user
}

// createTestPermissions 批量创建权限，返回code列表
func createTestPermissions(t *testing.T, db *gorm.DB, codes ...string) []string {
	t.Helper()

	svc := NewPermissionService(db, nil)
	for _, code := range codes {
		module, action := code, ""
		if idx := strings.Index(code, "."); idx > 0 {
			module, action = code[:idx], code[idx+1:]
		}
		_, err := svc.Create(code, "权限"+code, module, action, "")
		require.NoError(t, err)
	}
	return codes
}
