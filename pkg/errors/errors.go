package errors

import "fmt"

// ========== 错误码常量定义 ==========

// CodeSuccess 成功码
const (
	CodeSuccess = 200
)

// HTTP层错误码 (400-599)
const (
	CodeInvalidParam = 400
	CodeUnauthorized = 401
	CodeForbidden    = 403
	CodeNotFound     = 404
	CodeConflict     = 409
	CodeServerError  = 500
)

// ========== 业务错误类型 ==========
// 五类可恢复错误，在请求边界统一转换为客户端响应，
// 服务层通过 errors.As 判断，不做字符串匹配。

// AuthenticationError 未认证（无有效身份）
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{Message: message}
}

// AuthorizationError 已认证但权限不足，携带所需权限或角色便于排查
type AuthorizationError struct {
	Message            string
	RequiredPermission string
	RequiredRoles      []string
}

func (e *AuthorizationError) Error() string {
	return e.Message
}

func NewAuthorizationError(message string) *AuthorizationError {
	return &AuthorizationError{Message: message}
}

// NewPermissionDenied 缺少指定权限
func NewPermissionDenied(permissionCode string) *AuthorizationError {
	return &AuthorizationError{
		Message:            fmt.Sprintf("权限不足：需要 %s 权限", permissionCode),
		RequiredPermission: permissionCode,
	}
}

// NewRoleDenied 缺少指定角色
func NewRoleDenied(roleCodes []string) *AuthorizationError {
	return &AuthorizationError{
		Message:       fmt.Sprintf("权限不足：需要 %v 角色", roleCodes),
		RequiredRoles: roleCodes,
	}
}

// NotFoundError 引用的角色、权限或资源不存在
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{Message: message}
}

// ConflictError 重复分配、角色代码重复、角色仍被引用等冲突
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// InvalidOperationError 非法操作（如修改、删除系统角色）
type InvalidOperationError struct {
	Message string
}

func (e *InvalidOperationError) Error() string {
	return e.Message
}

func NewInvalidOperationError(message string) *InvalidOperationError {
	return &InvalidOperationError{Message: message}
}
