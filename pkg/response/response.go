package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookcase/pkg/errors"
	"github.com/xiebiao/bookcase/pkg/result"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码（0表示成功），Message是用户友好的提示
// 2. 校验失败时Data是完整的result.Result（status + events），客户端按event key处理
// 3. HTTP状态码同时表达结果类别（200/201/400/401/404/422/500）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（200）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: 0, Message: "success", Data: data})
}

// Created 新增成功（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: 0, Message: "success", Data: data})
}

// Result 按校验结果响应
// 规则：
// 1. 校验通过 → okStatus，Data为业务数据（为nil时返回校验结果本身）
// 2. 任一event key包含NOT_EXIST → 404
// 3. 其它校验错误 → 422
func Result(c *gin.Context, okStatus int, r *result.Result, data interface{}) {
	if r.OK() {
		if data == nil {
			data = r
		}
		c.JSON(okStatus, Response{Code: 0, Message: "success", Data: data})
		return
	}

	status, code := http.StatusUnprocessableEntity, apperrors.ErrCodeValidation
	if r.ContainsKey("NOT_EXIST") {
		status, code = http.StatusNotFound, apperrors.ErrCodeNotFound
	}
	c.JSON(status, Response{Code: code, Message: firstError(r), Data: r})
}

// Error 错误响应（自动处理AppError）
// 内部错误通过c.Error交给日志中间件记录，不返回给客户端
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	if appErr.Err != nil || !apperrors.IsAppError(err) {
		_ = c.Error(err)
	}

	c.JSON(HTTPStatus(appErr.Code), Response{Code: appErr.Code, Message: appErr.Message})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	c.JSON(HTTPStatus(code), Response{Code: code, Message: message})
}

// HTTPStatus 业务错误码 → HTTP状态码
func HTTPStatus(code int) int {
	switch {
	case code == apperrors.ErrCodeForbidden:
		return http.StatusForbidden
	case code == apperrors.ErrCodeUsernameDuplicate, code == apperrors.ErrCodeDuplicateEntry:
		return http.StatusConflict
	case code == apperrors.ErrCodeValidation:
		return http.StatusUnprocessableEntity
	case code >= 40100 && code < 40200:
		return http.StatusUnauthorized
	case code >= 40400 && code < 40500:
		return http.StatusNotFound
	case code >= 42900 && code < 43000:
		return http.StatusTooManyRequests
	case code >= 40000 && code < 50000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func firstError(r *result.Result) string {
	for _, e := range r.Events {
		if e.Severity == result.SeverityError {
			return e.Message
		}
	}
	return "数据校验未通过"
}
