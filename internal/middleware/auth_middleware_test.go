package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"accessnav/internal/models"
	"accessnav/internal/services"
	apperrors "accessnav/pkg/errors"
	"accessnav/pkg/jwt"
	"accessnav/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type gateFixture struct {
	db         *gorm.DB
	auth       *AuthMiddleware
	jwtManager *jwt.JWTManager
	roleSvc    *services.RoleService
	assignSvc  *services.AssignmentService
}

func setupGateFixture(t *testing.T) *gateFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.Permission{}, &models.Role{},
		&models.RolePermission{}, &models.UserRole{},
	))

	jwtManager := jwt.NewJWTManager("test-secret", time.Hour)
	userSvc := services.NewUserService(db)
	resolver := services.NewResolverService(db, nil)

	return &gateFixture{
		db:         db,
		auth:       NewAuthMiddleware(userSvc, resolver, jwtManager),
		jwtManager: jwtManager,
		roleSvc:    services.NewRoleService(db, nil),
		assignSvc:  services.NewAssignmentService(db, nil),
	}
}

func (f *gateFixture) createUser(t *testing.T, username, legacyRole string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Name:     "用户" + username,
		Status:   models.UserStatusActive,
		Role:     legacyRole,
	}
	require.NoError(t, user.SetPassword("Test@123"))
	require.NoError(t, f.db.Create(user).Error)
	return user
}

func (f *gateFixture) token(t *testing.T, user *models.User) string {
	t.Helper()

	token, err := f.jwtManager.GenerateToken(user.ID, user.Username, user.Role)
	require.NoError(t, err)
	return token
}

func (f *gateFixture) grantPermission(t *testing.T, user *models.User, code string) {
	t.Helper()

	permSvc := services.NewPermissionService(f.db, nil)
	_, err := permSvc.Create(code, "权限"+code, "test", "test", "")
	require.NoError(t, err)

	role, err := f.roleSvc.FindOrCreate("granted_"+user.Username, "授权角色", "", false)
	require.NoError(t, err)
	require.NoError(t, f.roleSvc.SetPermissions(role.ID, []string{code}, nil))

	_, err = f.assignSvc.AssignRole(user.ID, role.Code, nil, nil)
	require.NoError(t, err)
}

func doRequest(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// bodyCode 读取统一响应体中的业务码
func bodyCode(t *testing.T, w *httptest.ResponseRecorder) int {
	t.Helper()

	var body struct {
		Code int `json:"code"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Code
}

func okHandler(c *gin.Context) {
	response.Success(c, gin.H{"reached": true})
}

func TestRequireLogin_MissingToken(t *testing.T) {
	f := setupGateFixture(t)
	router := gin.New()
	router.GET("/protected", f.auth.RequireLogin(), okHandler)

	w := doRequest(router, http.MethodGet, "/protected", "")
	assert.Equal(t, apperrors.CodeUnauthorized, bodyCode(t, w))
}

func TestRequireLogin_InvalidToken(t *testing.T) {
	f := setupGateFixture(t)
	router := gin.New()
	router.GET("/protected", f.auth.RequireLogin(), okHandler)

	w := doRequest(router, http.MethodGet, "/protected", "not-a-jwt")
	assert.Equal(t, apperrors.CodeUnauthorized, bodyCode(t, w))
}

func TestRequireLogin_InactiveUser(t *testing.T) {
	f := setupGateFixture(t)
	user := f.createUser(t, "alice", models.RoleUser)
	token := f.token(t, user)

	require.NoError(t, f.db.Model(user).Update("status", models.UserStatusLocked).Error)

	router := gin.New()
	router.GET("/protected", f.auth.RequireLogin(), okHandler)

	w := doRequest(router, http.MethodGet, "/protected", token)
	assert.Equal(t, apperrors.CodeUnauthorized, bodyCode(t, w))
}

func TestRequirePermission_Denied(t *testing.T) {
	f := setupGateFixture(t)
	user := f.createUser(t, "alice", models.RoleUser)

	router := gin.New()
	router.GET("/protected", f.auth.RequireLogin(), f.auth.RequirePermission("route.manage"), okHandler)

	w := doRequest(router, http.MethodGet, "/protected", f.token(t, user))
	// 拒绝响应携带所需权限便于排查
	var body struct {
		Code int `json:"code"`
		Data struct {
			Type               string `json:"type"`
			RequiredPermission string `json:"required_permission"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apperrors.CodeForbidden, body.Code)
	assert.Equal(t, "AuthorizationError", body.Data.Type)
	assert.Equal(t, "route.manage", body.Data.RequiredPermission)
}

func TestRequirePermission_Granted(t *testing.T) {
	f := setupGateFixture(t)
	user := f.createUser(t, "alice", models.RoleUser)
	f.grantPermission(t, user, "route.manage")

	router := gin.New()
	router.GET("/protected", f.auth.RequireLogin(), f.auth.RequirePermission("route.manage"), okHandler)

	w := doRequest(router, http.MethodGet, "/protected", f.token(t, user))
	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, w))
}

func TestRequireRole_LegacyOrRBAC(t *testing.T) {
	f := setupGateFixture(t)

	// 旧版单角色命中即放行，无需任何RBAC分配
	legacyAdmin := f.createUser(t, "legacy", models.RoleAdmin)

	// RBAC分配命中同样放行，旧版角色仍是user
	rbacAdmin := f.createUser(t, "rbac", models.RoleUser)
	_, err := f.roleSvc.FindOrCreate(models.RoleAdmin, "平台管理员", "", true)
	require.NoError(t, err)
	_, err = f.assignSvc.AssignRole(rbacAdmin.ID, models.RoleAdmin, nil, nil)
	require.NoError(t, err)

	// 两边都没有的用户被拒
	nobody := f.createUser(t, "nobody", models.RoleUser)

	router := gin.New()
	router.GET("/admin", f.auth.RequireLogin(), f.auth.RequireRole(models.RoleAdmin), okHandler)

	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, doRequest(router, http.MethodGet, "/admin", f.token(t, legacyAdmin))))
	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, doRequest(router, http.MethodGet, "/admin", f.token(t, rbacAdmin))))
	assert.Equal(t, apperrors.CodeForbidden, bodyCode(t, doRequest(router, http.MethodGet, "/admin", f.token(t, nobody))))
}

func TestRequireOwnership(t *testing.T) {
	f := setupGateFixture(t)
	owner := f.createUser(t, "owner", models.RoleUser)
	other := f.createUser(t, "other", models.RoleUser)
	admin := f.createUser(t, "boss", models.RoleAdmin)

	lookup := func(resourceID uint) (uint, error) {
		if resourceID == 42 {
			return owner.ID, nil
		}
		return 0, apperrors.NewNotFoundError("资源不存在")
	}

	router := gin.New()
	router.GET("/things/:id", f.auth.RequireLogin(), f.auth.RequireOwnership(lookup, true), okHandler)

	// 属主放行
	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, doRequest(router, http.MethodGet, "/things/42", f.token(t, owner))))
	// 非属主被拒
	assert.Equal(t, apperrors.CodeForbidden, bodyCode(t, doRequest(router, http.MethodGet, "/things/42", f.token(t, other))))
	// 管理员豁免
	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, doRequest(router, http.MethodGet, "/things/42", f.token(t, admin))))
	// 资源不存在返回404而非403
	assert.Equal(t, apperrors.CodeNotFound, bodyCode(t, doRequest(router, http.MethodGet, "/things/999", f.token(t, owner))))
	// ID格式错误
	assert.Equal(t, apperrors.CodeInvalidParam, bodyCode(t, doRequest(router, http.MethodGet, "/things/abc", f.token(t, owner))))
}

func TestRequirePermissionOrOwner(t *testing.T) {
	f := setupGateFixture(t)
	owner := f.createUser(t, "owner", models.RoleUser)
	manager := f.createUser(t, "manager", models.RoleUser)
	other := f.createUser(t, "other", models.RoleUser)
	f.grantPermission(t, manager, "route.update")

	lookup := func(resourceID uint) (uint, error) {
		return owner.ID, nil
	}

	router := gin.New()
	router.PUT("/routes/:id", f.auth.RequireLogin(), f.auth.RequirePermissionOrOwner("route.update", lookup), okHandler)

	// 持权者放行
	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, doRequest(router, http.MethodPut, "/routes/1", f.token(t, manager))))
	// 属主豁免
	assert.Equal(t, apperrors.CodeSuccess, bodyCode(t, doRequest(router, http.MethodPut, "/routes/1", f.token(t, owner))))
	// 两者都不是则被拒
	assert.Equal(t, apperrors.CodeForbidden, bodyCode(t, doRequest(router, http.MethodPut, "/routes/1", f.token(t, other))))
}
