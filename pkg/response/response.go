package response

import (
	stderrors "errors"
	"net/http"

	"accessnav/pkg/errors"
	"accessnav/pkg/pagination"

	"github.com/gin-gonic/gin"
)

// Response 统一返回格式
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageInfo 分页信息
type PageInfo struct {
	Page     int   `json:"page"`
	PageSize int   `json:"page_size"`
	Total    int64 `json:"total"`
}

// ========== 基础返回方法 ==========

// Success 成功返回
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// SuccessWithMessage 成功返回（自定义消息）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    errors.CodeSuccess,
		Message: message,
		Data:    data,
	})
}

// SuccessWithPage 分页成功返回
func SuccessWithPage(c *gin.Context, data interface{}, pageInfo *pagination.PageInfo) {
	c.JSON(http.StatusOK, gin.H{
		"code":      errors.CodeSuccess,
		"message":   "success",
		"data":      data,
		"page_info": pageInfo,
	})
}

// Error 通用错误返回
func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// ErrorWithData 错误返回（附加结构化信息，如所需权限）
func ErrorWithData(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

// ========== HTTP错误快捷方法 ==========

func BadRequest(c *gin.Context, message string) {
	Error(c, errors.CodeInvalidParam, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, errors.CodeUnauthorized, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, errors.CodeForbidden, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, errors.CodeNotFound, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, errors.CodeConflict, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, errors.CodeServerError, message)
}

// ========== 业务错误转换 ==========

// HandleError 将服务层的类型化错误转换为统一响应
func HandleError(c *gin.Context, err error) {
	var authnErr *errors.AuthenticationError
	var authzErr *errors.AuthorizationError
	var notFoundErr *errors.NotFoundError
	var conflictErr *errors.ConflictError
	var invalidOpErr *errors.InvalidOperationError

	switch {
	case stderrors.As(err, &authnErr):
		ErrorWithData(c, errors.CodeUnauthorized, authnErr.Message, gin.H{"type": "AuthenticationError"})
	case stderrors.As(err, &authzErr):
		detail := gin.H{"type": "AuthorizationError"}
		if authzErr.RequiredPermission != "" {
			detail["required_permission"] = authzErr.RequiredPermission
		}
		if len(authzErr.RequiredRoles) > 0 {
			detail["required_roles"] = authzErr.RequiredRoles
		}
		ErrorWithData(c, errors.CodeForbidden, authzErr.Message, detail)
	case stderrors.As(err, &notFoundErr):
		NotFound(c, notFoundErr.Message)
	case stderrors.As(err, &conflictErr):
		Conflict(c, conflictErr.Message)
	case stderrors.As(err, &invalidOpErr):
		BadRequest(c, invalidOpErr.Message)
	default:
		ServerError(c, "服务器内部错误")
	}
}
